package contacts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token uses carried in the signed payload. Checked on every resolve so a
// token issued for one purpose cannot be replayed for another.
const (
	TokenUseAccess  = "access"
	TokenUseRefresh = "refresh"
	TokenUseVerify  = "verify"
)

// AuthClaims represents the structured claims a resolved session exposes
type AuthClaims interface {
	Subject() string
	UserID() string
	TokenUse() string
	Expires() time.Time
	IssuedAt() time.Time
}

// SessionClaims is the concrete implementation of AuthClaims
type SessionClaims struct {
	jwt.RegisteredClaims
	UID string `json:"uid,omitempty"`
	Use string `json:"use,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*SessionClaims)(nil)

// Subject returns the subject claim
func (c *SessionClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the account identifier the token was issued for
func (c *SessionClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// TokenUse returns the signed token use ("access" or "refresh")
func (c *SessionClaims) TokenUse() string {
	return c.Use
}

// Expires returns the expiration time
func (c *SessionClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *SessionClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
