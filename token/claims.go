package token

import (
	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-session-auth/users"
)

// Kind distinguishes access tokens from refresh tokens. Each kind is
// signed with its own secret and carries its own expiry.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// TokenType is the constant type reported alongside issued token pairs.
const TokenType = "bearer"

// Claims is the signed payload of a session token: the subject's identity
// snapshot plus the registered iat/exp timestamps (Unix epoch seconds).
// Signed, not encrypted - nothing secret belongs in here.
type Claims struct {
	LoginID     string     `json:"login_id"`
	DisplayName string     `json:"display_name"`
	Role        users.Role `json:"role"`
	jwtlib.RegisteredClaims
}

// UserID returns the subject claim.
func (c *Claims) UserID() string {
	return c.Subject
}

// Snapshot rebuilds the denormalized user view carried in the token.
func (c *Claims) Snapshot() users.Snapshot {
	return users.Snapshot{
		UserID:      c.Subject,
		LoginID:     c.LoginID,
		DisplayName: c.DisplayName,
		Role:        c.Role,
	}
}

// Pair is the proof-of-authentication handed out at login or refresh time.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}
