package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"caption_contest/internal/cache"
	"caption_contest/internal/domain"
	"caption_contest/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

// testServer bundles the wired router with its collaborators so tests can
// reach behind the HTTP surface when they need to.
type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

// newTestServer wires the full route table against an in-memory sqlite
// database and a miniredis instance, mirroring cmd/server.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Image{}, &domain.Caption{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	imageCache := cache.New(rdb, "image", 900*time.Second)
	userCache := cache.New(rdb, "user", 900*time.Second)
	captionCache := cache.New(rdb, "caption", 1800*time.Second)

	auth := middleware.TokenAuthMiddleware(testSecret)

	r := gin.New()
	r.GET("/images", ListImagesHandler(db))
	r.GET("/images/:id", GetImageHandler(db, imageCache))
	r.POST("/images", CreateImageHandler(db))
	r.PUT("/images/:id", UpdateImageHandler(db, imageCache))
	r.DELETE("/images/:id", DeleteImageHandler(db, imageCache))

	r.GET("/users", ListUsersHandler(db))
	r.GET("/users/:id", GetUserHandler(db, userCache))
	r.POST("/users", RegisterHandler(db))
	r.POST("/users/login", LoginHandler(db, testSecret))
	r.PUT("/users/:id", auth, UpdateUserHandler(db, userCache))
	r.DELETE("/users/:id", auth, DeleteUserHandler(db, userCache))

	r.GET("/captions/:id", GetCaptionHandler(db, captionCache))
	r.POST("/captions", auth, CreateCaptionHandler(db))
	r.PUT("/captions/:id", auth, UpdateCaptionHandler(db, captionCache))
	r.DELETE("/captions/:id", auth, DeleteCaptionHandler(db, captionCache))

	return &testServer{router: r, db: db, redis: mr}
}

// do performs a request against the router, marshaling body to JSON when
// present and attaching token to the authorization header when non-empty.
func (s *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("authorization", token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// decode unmarshals a recorded JSON body into a generic map
func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

// registerAndLogin creates a user through the API and returns its id and
// a freshly issued token
func (s *testServer) registerAndLogin(t *testing.T, name, email, password string) (uint, string) {
	t.Helper()
	w := s.do(t, http.MethodPost, "/users", gin.H{"name": name, "email": email, "password": password}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	id := uint(decode(t, w)["id"].(float64))

	w = s.do(t, http.MethodPost, "/users/login", gin.H{"email": email, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code)
	token := decode(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return id, token
}
