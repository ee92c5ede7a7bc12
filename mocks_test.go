package contacts_test

import (
	"context"
	"time"

	contacts "github.com/goliatone/go-contacts"
	"github.com/stretchr/testify/mock"
)

// TestIdentity is a minimal Identity implementation for tests
type TestIdentity struct {
	id    string
	email string
}

func (t TestIdentity) ID() string    { return t.id }
func (t TestIdentity) Email() string { return t.email }

// MockIdentityProvider mocks the IdentityProvider interface
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (contacts.Identity, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(contacts.Identity), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByID(ctx context.Context, id string) (contacts.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(contacts.Identity), args.Error(1)
}

type mockConfig struct {
	signingKey         string
	verificationKey    string
	accessTTL          time.Duration
	refreshTTL         time.Duration
	verificationMaxAge time.Duration
	issuer             string
	audience           []string
}

func newMockConfig() *mockConfig {
	return &mockConfig{
		signingKey:         "test-signing-key",
		verificationKey:    "test-verification-key",
		accessTTL:          15 * time.Minute,
		refreshTTL:         720 * time.Hour,
		verificationMaxAge: time.Hour,
		issuer:             "contacts-test",
		audience:           []string{"contacts"},
	}
}

func (c *mockConfig) GetSigningKey() string                { return c.signingKey }
func (c *mockConfig) GetSigningMethod() string             { return "HS256" }
func (c *mockConfig) GetContextKey() string                { return "user" }
func (c *mockConfig) GetAccessTokenTTL() time.Duration     { return c.accessTTL }
func (c *mockConfig) GetRefreshTokenTTL() time.Duration    { return c.refreshTTL }
func (c *mockConfig) GetVerificationKey() string           { return c.verificationKey }
func (c *mockConfig) GetVerificationMaxAge() time.Duration { return c.verificationMaxAge }
func (c *mockConfig) GetTokenLookup() string               { return "header:Authorization" }
func (c *mockConfig) GetAuthScheme() string                { return "Bearer" }
func (c *mockConfig) GetIssuer() string                    { return c.issuer }
func (c *mockConfig) GetAudience() []string                { return c.audience }
