package middleware

import (
	"net/http"
	"strings"
)

// TokenCookie is the cookie the login handlers set and the auth middleware reads.
const TokenCookie = "token"

// extractToken prefers the bearer header, then the session cookie set by the
// login handlers. Browsers cannot set headers on a websocket handshake, so the
// token query parameter is honoured for upgrade requests only.
func extractToken(r *http.Request) string {
	if scheme, tok, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
		return r.URL.Query().Get("token")
	}
	return ""
}
