// Package auth provides access-token issuance, password hashing, and the
// HTTP middleware that gates protected routes.
//
// TOKEN MODEL:
// An access token is a signed, stateless capability. All the information a
// request needs (who, which role, until when) travels inside the token, and
// the HMAC signature guarantees nobody minted or altered it without the
// secret. There is no server-side session store and no revocation list —
// verification is pure computation: signature check plus expiry check.
//
// Two kinds of tokens exist:
//   - role "user":  Subject carries the account ID, 1 hour time-to-live
//   - role "admin": no Subject (the admin pair is configuration, not a
//     stored record), 2 hour time-to-live
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Roles carried in the token's role claim.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Time-to-live per role, measured from issuance.
const (
	UserTokenTTL  = 1 * time.Hour
	AdminTokenTTL = 2 * time.Hour
)

const issuer = "talenthub"

// ErrInvalidToken is returned by Verify for any token that fails the
// signature, structure, or expiry checks. Callers map it to 401.
var ErrInvalidToken = errors.New("auth: invalid token")

// Claims are the verified contents of an access token.
//
// UserID is the "sub" claim and is empty for admin tokens — the configured
// admin pair has no record in the store, so there is no identity to claim.
type Claims struct {
	UserID string
	Role   string
}

// IsAdmin reports whether the claims carry the admin role.
func (c Claims) IsAdmin() bool { return c.Role == RoleAdmin }

// tokenClaims is the JWT payload: registered claims plus our role claim.
type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256-signed access tokens.
// The same secret signs and verifies — keep it out of source control.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue creates and signs an access token for the given subject and role.
//
// subject is the account ID for user tokens and "" for admin tokens.
// ttl is measured from now; after it passes, Verify rejects the token.
func (s *TokenService) Issue(subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and verifies a token string and returns its claims.
//
// The signature is always checked before any claim is trusted. Restricting
// the accepted algorithms to HS256 closes the algorithm-confusion hole where
// an attacker submits a token signed with "none".
func (s *TokenService) Verify(tokenStr string) (Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&tokenClaims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: expired", ErrInvalidToken)
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrInvalidToken
	}

	switch c.Role {
	case RoleUser:
		// A user token without a subject identifies nobody — reject it.
		if c.Subject == "" {
			return Claims{}, fmt.Errorf("%w: user token has no subject", ErrInvalidToken)
		}
	case RoleAdmin:
	default:
		return Claims{}, fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}

	return Claims{UserID: c.Subject, Role: c.Role}, nil
}
