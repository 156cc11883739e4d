package auth

import (
	"net/http"
	"strings"
)

// AccessTokenParam is the query parameter browsers use on the WebSocket
// handshake, where they cannot set headers.
const AccessTokenParam = "access_token"

// Resolver extracts and verifies the identity token of a request.
type Resolver struct {
	tokens     *Tokens
	cookieName string
}

func NewResolver(tokens *Tokens, cookieName string) *Resolver {
	return &Resolver{tokens: tokens, cookieName: cookieName}
}

// Resolve returns the authenticated user id. It looks at the Authorization
// bearer header, then the access_token query parameter, then the cookie.
func (r *Resolver) Resolve(req *http.Request) (string, error) {
	raw := r.tokenFrom(req)
	if raw == "" {
		return "", ErrAuthenticationMissing
	}

	claims, err := r.tokens.ValidateToken(raw)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (r *Resolver) tokenFrom(req *http.Request) string {
	if header := req.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}

	if token := req.URL.Query().Get(AccessTokenParam); token != "" {
		return token
	}

	if r.cookieName != "" {
		if cookie, err := req.Cookie(r.cookieName); err == nil {
			return cookie.Value
		}
	}

	return ""
}
