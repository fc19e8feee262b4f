package services

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-32-chars"

// createTestTokenService creates a token service for testing with symmetric key
func createTestTokenService() (TokenService, error) {
	return NewTokenService(15*time.Minute, "test-issuer", "test-audience", false, "", "", testSecret)
}

func TestNewTokenService(t *testing.T) {
	tests := []struct {
		name        string
		issuer      string
		audience    string
		useRSAKeys  bool
		publicKey   string
		secretKey   string
		expectError bool
	}{
		{name: "valid symmetric key configuration", issuer: "i", audience: "a", secretKey: testSecret},
		{name: "missing secret key", issuer: "i", audience: "a", expectError: true},
		{name: "empty issuer and audience", secretKey: testSecret},
		{name: "rsa without public key", useRSAKeys: true, expectError: true},
		{name: "rsa with garbage public key", useRSAKeys: true, publicKey: "not a pem", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, err := NewTokenService(15*time.Minute, tt.issuer, tt.audience, tt.useRSAKeys, "", tt.publicKey, tt.secretKey)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, service)
				return
			}
			assert.NoError(t, err)
			assert.NotNil(t, service)
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	token, err := service.GenerateAccessToken(Identity{UserID: 7, OrganizationID: 42, Role: "editor"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, uint(42), claims.OrganizationID)
	assert.Equal(t, "editor", claims.Role)
	assert.NotEmpty(t, claims.TokenID)
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
}

func TestTokenExpiration(t *testing.T) {
	service, err := NewTokenService(-1*time.Minute, "test-issuer", "test-audience", false, "", "", testSecret)
	require.NoError(t, err)

	token, err := service.GenerateAccessToken(Identity{UserID: 1, OrganizationID: 1})
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.Nil(t, claims)
}

func TestTokenSecurity(t *testing.T) {
	service1, err := NewTokenService(15*time.Minute, "issuer1", "audience1", false, "", "", "test-secret-key-1-for-jwt-signing-32-chars")
	require.NoError(t, err)

	service2, err := NewTokenService(15*time.Minute, "issuer2", "audience2", false, "", "", "test-secret-key-2-for-jwt-signing-32-chars")
	require.NoError(t, err)

	identity := Identity{UserID: 123, OrganizationID: 9}
	token1, err := service1.GenerateAccessToken(identity)
	require.NoError(t, err)
	token2, err := service2.GenerateAccessToken(identity)
	require.NoError(t, err)

	assert.NotEqual(t, token1, token2)

	// Tokens from one service should not be valid in another service
	claims, err := service1.ValidateToken(token2)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Nil(t, claims)

	claims, err = service2.ValidateToken(token1)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Nil(t, claims)
}

func TestTokenRequiresTenantClaims(t *testing.T) {
	signed := func(claims jwt.MapClaims) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		return token
	}
	now := time.Now()
	base := func() jwt.MapClaims {
		return jwt.MapClaims{
			"user_id":         1,
			"organization_id": 2,
			"token_type":      "access",
			"jti":             "abc",
			"iat":             now.Unix(),
			"exp":             now.Add(time.Minute).Unix(),
			"iss":             "test-issuer",
			"aud":             "test-audience",
		}
	}

	service, err := createTestTokenService()
	require.NoError(t, err)

	_, err = service.ValidateToken(signed(base()))
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
	}{
		{"missing organization", func(c jwt.MapClaims) { delete(c, "organization_id") }},
		{"missing user", func(c jwt.MapClaims) { delete(c, "user_id") }},
		{"refresh token", func(c jwt.MapClaims) { c["token_type"] = "refresh" }},
		{"foreign audience", func(c jwt.MapClaims) { c["aud"] = "someone-else" }},
		{"foreign issuer", func(c jwt.MapClaims) { c["iss"] = "someone-else" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := base()
			tt.mutate(claims)
			_, err := service.ValidateToken(signed(claims))
			assert.ErrorIs(t, err, ErrTokenInvalid)
		})
	}
}

func TestRSATokens(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privatePEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	publicDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: publicDER})

	issuer, err := NewTokenService(time.Minute, "i", "a", true, string(privatePEM), string(publicPEM), "")
	require.NoError(t, err)

	token, err := issuer.GenerateAccessToken(Identity{UserID: 3, OrganizationID: 4, Role: "admin"})
	require.NoError(t, err)

	verifier, err := NewTokenService(time.Minute, "i", "a", true, "", string(publicPEM), "")
	require.NoError(t, err)

	claims, err := verifier.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(4), claims.OrganizationID)

	_, err = verifier.GenerateAccessToken(Identity{UserID: 1, OrganizationID: 1})
	assert.ErrorIs(t, err, ErrSigningKey)

	// An HS256 token must not pass an RS256 verifier
	hmacService, err := createTestTokenService()
	require.NoError(t, err)
	hmacToken, err := hmacService.GenerateAccessToken(Identity{UserID: 1, OrganizationID: 1})
	require.NoError(t, err)
	_, err = verifier.ValidateToken(hmacToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestConcurrentTokenGeneration(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	const numGoroutines = 10
	tokens := make(chan string, numGoroutines)
	errors := make(chan error, numGoroutines)

	for i := 0; i < numGoroutines; i++ {
		go func(userID uint) {
			token, err := service.GenerateAccessToken(Identity{UserID: userID, OrganizationID: 1})
			if err != nil {
				errors <- err
				return
			}
			tokens <- token
		}(uint(i + 1))
	}

	generatedTokens := make(map[string]bool)
	for i := 0; i < numGoroutines; i++ {
		select {
		case token := <-tokens:
			assert.NotEmpty(t, token)
			assert.False(t, generatedTokens[token], "Duplicate token generated")
			generatedTokens[token] = true
		case err := <-errors:
			t.Errorf("Error generating token: %v", err)
		}
	}

	assert.Equal(t, numGoroutines, len(generatedTokens))
}

func TestTokenValidationEdgeCases(t *testing.T) {
	service, err := createTestTokenService()
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty token", token: ""},
		{name: "single character", token: "a"},
		{name: "non-JWT string", token: "this is not a jwt token"},
		{name: "JWT with wrong number of parts", token: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.eyJjdXN0b21lcl9pZCI6MTIzfQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func BenchmarkValidateToken(b *testing.B) {
	service, err := createTestTokenService()
	require.NoError(b, err)

	token, err := service.GenerateAccessToken(Identity{UserID: 123, OrganizationID: 1})
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := service.ValidateToken(token)
		require.NoError(b, err)
	}
}
