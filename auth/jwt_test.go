package auth

import (
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

	"github.com/climatevia/pathway/config"
)

func generateRSAKeyPair(t *testing.T) (*rsa.PrivateKey, *rsa.PublicKey) {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return priv, &priv.PublicKey
}

func createJWKS(t *testing.T, pub *rsa.PublicKey) jwk.Set {
	t.Helper()
	key, err := jwk.FromRaw(pub)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key-id"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))

	keyset := jwk.NewSet()
	require.NoError(t, keyset.AddKey(key))
	return keyset
}

func createTestJWT(t *testing.T, priv *rsa.PrivateKey, issuer, audience, subject string, claims map[string]interface{}, expiry time.Duration) string {
	t.Helper()
	token := jwt.New()
	require.NoError(t, token.Set(jwt.IssuerKey, issuer))
	require.NoError(t, token.Set(jwt.AudienceKey, audience))
	require.NoError(t, token.Set(jwt.SubjectKey, subject))
	require.NoError(t, token.Set(jwt.IssuedAtKey, time.Now()))
	require.NoError(t, token.Set(jwt.ExpirationKey, time.Now().Add(expiry)))
	for k, v := range claims {
		require.NoError(t, token.Set(k, v))
	}

	key, err := jwk.FromRaw(priv)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key-id"))

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, key))
	require.NoError(t, err)
	return string(signed)
}

func setupTestValidator(t *testing.T) (*JWTValidator, *rsa.PrivateKey, string, string) {
	t.Helper()
	priv, pub := generateRSAKeyPair(t)
	keyset := createJWKS(t, pub)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keysetJSON, err := json.Marshal(keyset)
		require.NoError(t, err)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(keysetJSON)
	}))
	t.Cleanup(server.Close)

	issuer := "https://test-issuer.example"
	audience := "pathway-test"

	validator, err := NewJWTValidator(context.Background(), config.AuthConfig{
		Enabled:     true,
		JWKSURL:     server.URL,
		Issuer:      issuer,
		Audience:    audience,
		JWKSRefresh: time.Minute,
	})
	require.NoError(t, err)
	return validator, priv, issuer, audience
}

func TestValidateToken_ExtractsPrincipalFromClaims(t *testing.T) {
	validator, priv, issuer, audience := setupTestValidator(t)

	token := createTestJWT(t, priv, issuer, audience, "user-123", map[string]interface{}{
		"email":       "alex@example.com",
		"user_type":   "job_seeker",
		"permissions": []interface{}{"chat:write", "history:read"},
	}, time.Hour)

	principal, err := validator.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user-123", principal.UserID)
	assert.Equal(t, "alex@example.com", principal.Email)
	assert.Equal(t, JobSeeker, principal.UserType)
	assert.True(t, principal.HasPermission("chat:write"))
	assert.False(t, principal.HasPermission("admin:delete"))
}

func TestValidateToken_DefaultsToPublicUserType(t *testing.T) {
	validator, priv, issuer, audience := setupTestValidator(t)

	token := createTestJWT(t, priv, issuer, audience, "user-456", nil, time.Hour)

	principal, err := validator.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, Public, principal.UserType)
}

func TestValidateToken_RejectsExpiredToken(t *testing.T) {
	validator, priv, issuer, audience := setupTestValidator(t)

	token := createTestJWT(t, priv, issuer, audience, "user-789", nil, -time.Hour)

	_, err := validator.ValidateToken(context.Background(), token)
	require.Error(t, err)
}

func TestValidateToken_RejectsWrongIssuer(t *testing.T) {
	validator, priv, _, audience := setupTestValidator(t)

	token := createTestJWT(t, priv, "https://wrong-issuer.example", audience, "user-1", nil, time.Hour)

	_, err := validator.ValidateToken(context.Background(), token)
	require.Error(t, err)
}

func TestValidateToken_RejectsMalformedToken(t *testing.T) {
	validator, _, _, _ := setupTestValidator(t)

	_, err := validator.ValidateToken(context.Background(), "not-a-jwt")
	require.Error(t, err)
}
