// Package session models the authenticated session explicitly instead of a
// global mutable token: the gate middleware loads a Session from the request,
// it travels through context, and the repository client attaches it upstream.
package session

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Session is the bearer credential for one request, plus whatever display
// claims could be decoded from it.
type Session struct {
	Token string
	Email string
}

// Authenticated reports whether a token is present. The gate is binary:
// token content and expiry are the upstream backend's concern.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// FromRequest loads the session from the Authorization header. A missing or
// malformed header yields an empty (unauthenticated) session.
func FromRequest(r *http.Request) Session {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return Session{}
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Session{}
	}
	token := strings.TrimSpace(parts[1])
	return Session{
		Token: token,
		Email: DecodeEmailClaim(token),
	}
}

// DecodeEmailClaim extracts the email claim from a JWT payload without
// verifying the signature. It is display-only and best-effort: any malformed
// or opaque token yields "" rather than an error.
func DecodeEmailClaim(token string) string {
	if token == "" {
		return ""
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ""
	}
	if email, ok := claims["email"].(string); ok {
		return email
	}
	return ""
}

type contextKey struct{}

// NewContext returns ctx carrying the session.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext extracts the session stored by the gate middleware. An absent
// session decodes as the zero (unauthenticated) value.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(contextKey{}).(Session)
	return s
}
