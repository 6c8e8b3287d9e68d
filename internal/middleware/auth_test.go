package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"caption_contest/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newProtectedRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", TokenAuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":    c.MustGet("userID"),
			"email": c.MustGet("userEmail"),
		})
	})
	return r
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	r := newProtectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token not provided. Access denied.")
}

// An unverifiable token is a 400, not a 401 — literal API contract
func TestInvalidTokenIsBadRequest(t *testing.T) {
	r := newProtectedRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("authorization", "garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Token invalid.")
}

func TestTokenSignedWithOtherSecretRejected(t *testing.T) {
	r := newProtectedRouter()
	token, err := utils.GenerateJWT(7, "t@test.com", "wrong-secret")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("authorization", token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// The token travels bare in the header; a Bearer prefix makes it unparsable
func TestBearerPrefixRejected(t *testing.T) {
	r := newProtectedRouter()
	token, err := utils.GenerateJWT(7, "t@test.com", testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidTokenAttachesIdentity(t *testing.T) {
	r := newProtectedRouter()
	token, err := utils.GenerateJWT(7, "t@test.com", testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("authorization", token)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id": 7, "email": "t@test.com"}`, w.Body.String())
}
