package contacts

import (
	"context"
	"reflect"
)

// Auther turns verified identities into session token pairs. Every failure
// in Login collapses into ErrBadCredentials so callers cannot distinguish
// unknown accounts from wrong passwords.
type Auther struct {
	provider       IdentityProvider
	logger         Logger
	tokenService   TokenService
	tokenValidator TokenValidator
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, opts Config) *Auther {
	tokenService := NewTokenService(
		[]byte(opts.GetSigningKey()),
		opts.GetAccessTokenTTL(),
		opts.GetRefreshTokenTTL(),
		opts.GetIssuer(),
		opts.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:       provider,
		logger:         defLogger{},
		tokenService:   tokenService,
		tokenValidator: AccessTokenValidator(tokenService),
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService sets a custom token service, used by tests to control the clock.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
		s.tokenValidator = AccessTokenValidator(ts)
	}
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials and issues a fresh access/refresh pair.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*TokenPair, error) {
	identity, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return nil, ErrBadCredentials
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		return nil, ErrBadCredentials
	}

	return s.issuePair(identity)
}

// Refresh exchanges a valid refresh token for a new pair. Access tokens are
// rejected here: only claims carrying the refresh use can mint new sessions.
func (s *Auther) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokenService.Validate(refreshToken, TokenUseRefresh)
	if err != nil {
		s.logger.Debug("Refresh token rejected", "error", err)
		return nil, err
	}

	identity, err := s.provider.FindIdentityByID(ctx, claims.UserID())
	if err != nil {
		s.logger.Error("Refresh identity lookup error", "error", err)
		return nil, ErrUnauthenticated
	}

	return s.issuePair(identity)
}

// IdentityFromToken resolves the account behind a bearer access token.
func (s *Auther) IdentityFromToken(ctx context.Context, tokenString string) (Identity, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = AccessTokenValidator(s.tokenService)
	}

	claims, err := validator.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	identity, err := s.provider.FindIdentityByID(ctx, claims.UserID())
	if err != nil {
		s.logger.Error("IdentityFromToken lookup error", "error", err)
		return nil, ErrUnauthenticated
	}

	return identity, nil
}

func (s *Auther) issuePair(identity Identity) (*TokenPair, error) {
	access, err := s.tokenService.IssueAccessToken(identity)
	if err != nil {
		s.logger.Error("failed to issue access token", "error", err)
		return nil, err
	}

	refresh, err := s.tokenService.IssueRefreshToken(identity)
	if err != nil {
		s.logger.Error("failed to issue refresh token", "error", err)
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

var _ Authenticator = (*Auther)(nil)
