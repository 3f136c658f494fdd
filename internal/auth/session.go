// Package auth verifies and issues the session tokens that identify callers.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"timesheet/internal/domain"
)

// DefaultCookieName is the cookie carrying the session token.
const DefaultCookieName = "session"

// Claims is the session token payload.
type Claims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

// Sessions signs and verifies HS256 session tokens.
type Sessions struct {
	secret []byte
	cookie string
	secure bool
	now    func() time.Time
}

func NewSessions(secret, cookieName string, secureCookie bool) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("auth: jwt secret is required")
	}
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	return &Sessions{secret: []byte(secret), cookie: cookieName, secure: secureCookie, now: time.Now}, nil
}

// Issue signs a token for userID. A zero ttl issues a token without expiry.
func (s *Sessions) Issue(userID int64, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: sign: %w", err)
	}
	return signed, nil
}

// Verify returns the user id carried by token, or domain.ErrUnauthorized.
func (s *Sessions) Verify(token string) (int64, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if claims.UserID <= 0 {
		return 0, fmt.Errorf("%w: token carries no user", domain.ErrUnauthorized)
	}
	return claims.UserID, nil
}

// Authenticate reads the token from the session cookie, falling back to a
// bearer Authorization header.
func (s *Sessions) Authenticate(r *http.Request) (int64, error) {
	if c, err := r.Cookie(s.cookie); err == nil && c.Value != "" {
		return s.Verify(c.Value)
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return s.Verify(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
	}
	return 0, domain.ErrUnauthorized
}

// Clear expires the session cookie.
func (s *Sessions) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

type ctxKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// UserID returns the authenticated user id stored in ctx.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(ctxKey{}).(int64)
	return id, ok
}
