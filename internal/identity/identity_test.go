package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, sub string, guest, emailVerified bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":            sub,
		"guest":          guest,
		"email_verified": emailVerified,
		"exp":            time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestVerifier_Verify(t *testing.T) {
	v := NewVerifier(testSecret)

	id, err := v.Verify(signToken(t, "user-42", false, true))
	require.NoError(t, err)
	assert.Equal(t, "user-42", id.UserID)
	assert.False(t, id.IsGuest())
	assert.True(t, id.EmailVerified)
}

func TestVerifier_RejectsBadSignature(t *testing.T) {
	v := NewVerifier("another-secret-that-is-long-enough!!")
	_, err := v.Verify(signToken(t, "user-42", false, true))
	assert.Error(t, err)
}

func TestVerifier_RejectsMissingSubject(t *testing.T) {
	v := NewVerifier(testSecret)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = v.Verify(signed)
	assert.Error(t, err)
}

func TestIdentity_GuestDetection(t *testing.T) {
	assert.True(t, Identity{UserID: "u1", Guest: true}.IsGuest())
	assert.True(t, Identity{UserID: "guest:abc123"}.IsGuest())
	assert.False(t, Identity{UserID: "u1"}.IsGuest())
}

func TestMiddleware(t *testing.T) {
	v := NewVerifier(testSecret)

	var seen Identity
	handler := Middleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid token passes identity through", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/chat", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, "guest:xyz", true, false))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "guest:xyz", seen.UserID)
		assert.True(t, seen.IsGuest())
	})

	t.Run("missing header rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/chat", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed token rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/chat", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
