package contacts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerificationCodec issues and redeems the signed tokens that prove control
// of an email inbox. Tokens are stateless: validity is signature plus the
// elapsed time since issuance, nothing is stored server side.
type VerificationCodec interface {
	Issue(email string) (string, error)
	Redeem(token string, maxAge time.Duration) (string, error)
}

// VerificationCodecImpl signs {email, issuedAt} with a dedicated secret that
// is independent from the session signing key.
type VerificationCodecImpl struct {
	signingKey []byte
	logger     Logger
	now        func() time.Time
}

type VerificationOption func(*VerificationCodecImpl)

// WithVerificationClock overrides the wall clock, used by tests to cross the
// expiry window without sleeping
func WithVerificationClock(now func() time.Time) VerificationOption {
	return func(c *VerificationCodecImpl) {
		if now != nil {
			c.now = now
		}
	}
}

// NewVerificationCodec creates a codec bound to the given secret
func NewVerificationCodec(signingKey []byte, logger Logger, opts ...VerificationOption) *VerificationCodecImpl {
	if logger == nil {
		logger = defLogger{}
	}
	c := &VerificationCodecImpl{
		signingKey: signingKey,
		logger:     logger,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	return c
}

// Issue signs a verification token for the given address. The expiry window
// is decided at redemption time, so the payload carries only the issuance
// timestamp.
func (c *VerificationCodecImpl) Issue(email string) (string, error) {
	if email == "" {
		return "", ErrNoEmptyString
	}

	claims := &SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  NormalizeEmail(email),
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
		Use: TokenUseVerify,
	}

	ensureTokenID(&claims.RegisteredClaims)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", err
	}

	return signed, nil
}

// Redeem validates a verification token and returns the email it binds.
// Every failure mode collapses into ErrVerificationInvalid: the caller must
// not be able to tell a bad signature from an expired window.
func (c *VerificationCodecImpl) Redeem(token string, maxAge time.Duration) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrVerificationInvalid
		}
		return c.signingKey, nil
	}, jwt.WithTimeFunc(c.now))

	if err != nil {
		c.logger.Debug("verification token rejected", "error", err)
		return "", ErrVerificationInvalid
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return "", ErrVerificationInvalid
	}

	if claims.Use != TokenUseVerify || claims.RegisteredClaims.Subject == "" {
		return "", ErrVerificationInvalid
	}

	if claims.RegisteredClaims.IssuedAt == nil {
		return "", ErrVerificationInvalid
	}

	if c.now().Sub(claims.RegisteredClaims.IssuedAt.Time) > maxAge {
		return "", ErrVerificationInvalid
	}

	return claims.RegisteredClaims.Subject, nil
}
