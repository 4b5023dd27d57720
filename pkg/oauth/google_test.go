package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenInfoServer(t *testing.T, status int, body map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "good-token", r.URL.Query().Get("id_token"))
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVerifyIDToken(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusOK, map[string]string{
		"aud":            "client-123",
		"sub":            "10987",
		"email":          "tuffy@csu.fullerton.edu",
		"email_verified": "true",
		"name":           "Tuffy Titan",
	})
	p := NewGoogleProvider("client-123", "secret", "").WithTokenInfoURL(srv.URL)

	id, err := p.VerifyIDToken(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "10987", id.Subject)
	assert.Equal(t, "tuffy@csu.fullerton.edu", id.Email)
	assert.Equal(t, "Tuffy Titan", id.Name)
}

func TestVerifyIDToken_WrongAudience(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusOK, map[string]string{
		"aud": "someone-else", "sub": "1", "email": "a@csu.fullerton.edu", "email_verified": "true",
	})
	p := NewGoogleProvider("client-123", "secret", "").WithTokenInfoURL(srv.URL)

	_, err := p.VerifyIDToken(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrAudienceMismatch)
}

func TestVerifyIDToken_Unverified(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusOK, map[string]string{
		"aud": "client-123", "sub": "1", "email": "a@csu.fullerton.edu", "email_verified": "false",
	})
	p := NewGoogleProvider("client-123", "secret", "").WithTokenInfoURL(srv.URL)

	_, err := p.VerifyIDToken(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrEmailUnverified)
}

func TestVerifyIDToken_Rejected(t *testing.T) {
	srv := tokenInfoServer(t, http.StatusBadRequest, map[string]string{"error": "invalid_token"})
	p := NewGoogleProvider("client-123", "secret", "").WithTokenInfoURL(srv.URL)

	_, err := p.VerifyIDToken(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestAuthCodeURL(t *testing.T) {
	p := NewGoogleProvider("client-123", "secret", "http://localhost/cb")
	u := p.AuthCodeURL("state-xyz")
	assert.Contains(t, u, "client_id=client-123")
	assert.Contains(t, u, "state=state-xyz")
}
