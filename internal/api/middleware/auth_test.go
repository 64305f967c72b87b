package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func newTestRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	am := NewAuthMiddleware(testSecret)
	r.GET("/protected", am.RequireAuth(), handler)
	r.GET("/ws", am.RequireAuthQuery(), handler)
	return r
}

func echoUserID(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"userId": UserID(c)})
}

func TestRequireAuthValidToken(t *testing.T) {
	r := newTestRouter(echoUserID)
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":7}`, w.Body.String())
}

func TestRequireAuthMissingHeader(t *testing.T) {
	r := newTestRouter(echoUserID)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthWrongSecret(t *testing.T) {
	r := newTestRouter(echoUserID)
	token := signToken(t, "other-secret", jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthExpiredToken(t *testing.T) {
	r := newTestRouter(echoUserID)
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 7,
		"exp":     time.Now().Add(-time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthQuery(t *testing.T) {
	r := newTestRouter(echoUserID)
	token := signToken(t, testSecret, jwt.MapClaims{
		"user_id": 9,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws?token="+token, nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":9}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuthMissingUserIDClaim(t *testing.T) {
	r := newTestRouter(echoUserID)
	token := signToken(t, testSecret, jwt.MapClaims{
		"email": "x@test.dev",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
