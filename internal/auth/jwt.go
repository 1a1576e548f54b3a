package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionLifetime matches the session cookie Max-Age.
const SessionLifetime = 30 * 24 * time.Hour

// Claims is the session token payload.
type Claims struct {
	UserID int64 `json:"userId,string"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies stateless session tokens. There is no
// server-side session table; a token is valid until it expires.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewTokenService creates a TokenService with the given HMAC secret.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("session signing secret is empty")
	}
	return &TokenService{
		secret:   []byte(secret),
		lifetime: SessionLifetime,
		now:      time.Now,
	}, nil
}

// Issue returns a signed token bound to userID.
func (ts *TokenService) Issue(userID int64) (string, error) {
	now := ts.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("signing session token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and registered claims of tokenString.
func (ts *TokenService) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.secret, nil
	}, jwt.WithTimeFunc(ts.now))
	if err != nil {
		return nil, fmt.Errorf("parsing session token: %w", err)
	}
	if !token.Valid || claims.UserID <= 0 {
		return nil, errors.New("invalid session token")
	}
	return claims, nil
}

// Verify resolves the user bound to tokenString. Absent, malformed, expired
// or forged tokens all report ok=false; callers treat that as anonymous.
func (ts *TokenService) Verify(tokenString string) (userID int64, ok bool) {
	if tokenString == "" {
		return 0, false
	}
	claims, err := ts.Parse(tokenString)
	if err != nil {
		return 0, false
	}
	return claims.UserID, true
}
