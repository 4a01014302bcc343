// Package auth issues and verifies admin session tokens and guards the admin routes.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. Admin submits email + password to POST /auth/login (or the /admin/login form)
//  2. The auth service checks the bcrypt hash and creates a Session row
//  3. A JWT is signed with sub=adminID and jti=sessionID and set in the
//     HttpOnly "admin_session" cookie
//  4. On later requests the middleware reads the cookie (or an
//     "Authorization: Bearer" header), verifies the JWT, and asks the session
//     validator whether the session row is still active
//  5. Logout revokes the row, so the same JWT stops working immediately
//
// WHY JWT + A SESSION ROW?
// The signature proves the token came from us and has not been edited; the
// row lets us take it back. A pure stateless JWT cannot be logged out before
// its exp claim passes.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: {"sub":"<adminID>","jti":"<sessionID>","exp":1234567890,"iss":"studio-cms"}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultIssuer is the "iss" claim written into and required from every token.
const DefaultIssuer = "studio-cms"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret used to sign and verify tokens. The same secret
// must be used for both; rotating it logs every admin out.
type TokenService struct {
	secret []byte
	issuer string
}

// NewTokenService creates a TokenService with the given secret.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret, issuer string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if issuer == "" {
		issuer = DefaultIssuer
	}
	return &TokenService{secret: []byte(secret), issuer: issuer}, nil
}

// Claims is what a verified token tells us.
type Claims struct {
	AdminID   string
	SessionID string
	ExpiresAt time.Time
}

// claims is the JWT payload. "sub" holds the admin ID and "jti" the session ID.
type claims struct {
	jwt.RegisteredClaims
}

// Issue signs a token for adminID bound to sessionID that expires at expiresAt.
// The session row decides the real lifetime; exp only mirrors it.
func (s *TokenService) Issue(adminID, sessionID string, expiresAt time.Time) (string, error) {
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   adminID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies a JWT string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid
//   - Token is not expired and carries an exp claim
//   - Issuer matches ours
//   - Algorithm is HS256 (jwt.WithValidMethods blocks "none" and RS/HS confusion)
func (s *TokenService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" || c.ID == "" {
		return nil, fmt.Errorf("auth: token has no subject or session id")
	}

	out := &Claims{AdminID: c.Subject, SessionID: c.ID}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out, nil
}
