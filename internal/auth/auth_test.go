package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"intouch/pkg/types"
)

func newTokens(t *testing.T) *Tokens {
	t.Helper()
	tokens, err := NewTokens("test-secret-of-reasonable-length", "intouch", time.Hour)
	require.NoError(t, err)
	return tokens
}

func TestTokens_RoundTrip(t *testing.T) {
	req := require.New(t)
	tokens := newTokens(t)

	signed, err := tokens.GenerateToken("alice")
	req.NoError(err)

	claims, err := tokens.ValidateToken(signed)
	req.NoError(err)
	req.Equal("alice", claims.UserID)
	req.Equal("intouch", claims.Issuer)
}

func TestTokens_Rejections(t *testing.T) {
	req := require.New(t)
	tokens := newTokens(t)

	_, err := NewTokens("", "intouch", time.Hour)
	req.ErrorIs(err, ErrEmptySecret)

	_, err = tokens.GenerateToken("")
	req.ErrorIs(err, types.ErrInvalidUserID)

	_, err = tokens.ValidateToken("not-a-jwt")
	req.ErrorIs(err, ErrInvalidToken)

	other, err := NewTokens("a-different-secret-entirely", "intouch", time.Hour)
	req.NoError(err)
	forged, err := other.GenerateToken("alice")
	req.NoError(err)
	_, err = tokens.ValidateToken(forged)
	req.ErrorIs(err, ErrInvalidToken)

	wrongIssuer, err := NewTokens("test-secret-of-reasonable-length", "someone-else", time.Hour)
	req.NoError(err)
	signed, err := wrongIssuer.GenerateToken("alice")
	req.NoError(err)
	_, err = tokens.ValidateToken(signed)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestTokens_Expired(t *testing.T) {
	req := require.New(t)
	tokens := newTokens(t)

	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.now = func() time.Time { return issuedAt }
	signed, err := tokens.GenerateToken("alice")
	req.NoError(err)

	tokens.now = time.Now
	_, err = tokens.ValidateToken(signed)
	req.ErrorIs(err, ErrInvalidToken)
	req.ErrorIs(err, jwt.ErrTokenExpired)
}

func TestResolver_Sources(t *testing.T) {
	tokens := newTokens(t)
	signed, err := tokens.GenerateToken("alice")
	require.NoError(t, err)
	resolver := NewResolver(tokens, "intouch_token")

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		wantErr error
	}{
		{"bearer header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+signed) }, nil},
		{"lowercase scheme", func(r *http.Request) { r.Header.Set("Authorization", "bearer "+signed) }, nil},
		{"query parameter", func(r *http.Request) {
			q := r.URL.Query()
			q.Set(AccessTokenParam, signed)
			r.URL.RawQuery = q.Encode()
		}, nil},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: "intouch_token", Value: signed}) }, nil},
		{"nothing", func(r *http.Request) {}, ErrAuthenticationMissing},
		{"basic auth only", func(r *http.Request) { r.SetBasicAuth("alice", "pw") }, ErrAuthenticationMissing},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer garbage") }, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ws", nil)
			tt.prepare(r)

			userID, err := resolver.Resolve(r)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "alice", userID)
		})
	}
}
