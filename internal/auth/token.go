package auth

import (
	"net/http"
	"strings"
)

// ExtractToken returns the credential carried by r. The session cookie takes
// precedence over an `Authorization: Bearer` header.
func ExtractToken(r *http.Request) (string, bool) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value, true
		}
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
