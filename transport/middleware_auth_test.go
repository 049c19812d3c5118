package transport

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/climatevia/pathway/auth"
	"github.com/climatevia/pathway/config"
	"github.com/climatevia/pathway/session"
	"github.com/climatevia/pathway/supervisor"
)

func setupAuthServer(t *testing.T) (*auth.JWTValidator, *rsa.PrivateKey, string, string) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key, err := jwk.FromRaw(&priv.PublicKey)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key-id"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))
	keyset := jwk.NewSet()
	require.NoError(t, keyset.AddKey(key))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := json.Marshal(keyset)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	}))
	t.Cleanup(srv.Close)

	issuer, audience := "https://test-issuer.example", "pathway-test"
	validator, err := auth.NewJWTValidator(context.Background(), config.AuthConfig{
		Enabled:     true,
		JWKSURL:     srv.URL,
		Issuer:      issuer,
		Audience:    audience,
		JWKSRefresh: time.Minute,
	})
	require.NoError(t, err)
	return validator, priv, issuer, audience
}

func signToken(t *testing.T, priv *rsa.PrivateKey, issuer, audience, subject string, expiry time.Duration) string {
	t.Helper()
	token := jwt.New()
	require.NoError(t, token.Set(jwt.IssuerKey, issuer))
	require.NoError(t, token.Set(jwt.AudienceKey, audience))
	require.NoError(t, token.Set(jwt.SubjectKey, subject))
	require.NoError(t, token.Set(jwt.ExpirationKey, time.Now().Add(expiry)))

	key, err := jwk.FromRaw(priv)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key-id"))

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, key))
	require.NoError(t, err)
	return string(signed)
}

func testServerWithAuth(t *testing.T, validator *auth.JWTValidator) *Server {
	t.Helper()
	wf := supervisor.New(testRegistry(), nil, nil, 10, 0.75)
	sessions := session.New(config.SessionConfig{})
	return NewServer(config.ServerConfig{Host: "127.0.0.1", Port: 0}, Dependencies{
		Supervisor: wf,
		Sessions:   sessions,
		Auth:       validator,
	})
}

func TestRequireAuth_RejectsMissingBearerToken(t *testing.T) {
	validator, _, _, _ := setupAuthServer(t)
	srv := testServerWithAuth(t, validator)

	rec := doRequest(t, srv, http.MethodPost, "/chat/message", chatMessageRequest{
		Content: "hi", UserID: "u1", ConversationID: "c1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_RejectsInvalidToken(t *testing.T) {
	validator, _, _, _ := setupAuthServer(t)
	srv := testServerWithAuth(t, validator)

	req := httptest.NewRequest(http.MethodPost, "/chat/message", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuth_AcceptsValidTokenAndPropagatesPrincipal(t *testing.T) {
	validator, priv, issuer, audience := setupAuthServer(t)
	srv := testServerWithAuth(t, validator)

	token := signToken(t, priv, issuer, audience, "user-123", time.Hour)

	body, err := json.Marshal(chatMessageRequest{Content: "hi", UserID: "u1", ConversationID: "c1"})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/chat/message", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
