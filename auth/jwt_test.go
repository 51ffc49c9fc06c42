package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	api := r.Group("/api", JWTMiddleware(testSecret, zerolog.Nop()))
	api.GET("/me", func(c *gin.Context) {
		id, _ := GetUserID(c)
		role, _ := GetRole(c)
		c.String(http.StatusOK, id+":"+role)
	})
	api.POST("/draws", RequireRole(RoleCoordinator), func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func serve(r *gin.Engine, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTMiddleware(t *testing.T) {
	r := newRouter()

	player, err := GenerateToken(testSecret, "u1", "alice", RolePlayer, time.Hour)
	require.NoError(t, err)
	coordinator, err := GenerateToken(testSecret, "c1", "carol", RoleCoordinator, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(testSecret, "u1", "alice", RolePlayer, -time.Minute)
	require.NoError(t, err)
	forged, err := GenerateToken("other-secret", "u1", "alice", RoleCoordinator, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		target string
		token  string
		status int
		body   string
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"missing token", http.MethodGet, "/api/me", "", http.StatusUnauthorized, ""},
		{"player", http.MethodGet, "/api/me", player, http.StatusOK, "u1:player"},
		{"query token", http.MethodGet, "/api/me?token=" + player, "", http.StatusOK, "u1:player"},
		{"expired", http.MethodGet, "/api/me", expired, http.StatusUnauthorized, ""},
		{"wrong secret", http.MethodGet, "/api/me", forged, http.StatusUnauthorized, ""},
		{"player cannot draw", http.MethodPost, "/api/draws", player, http.StatusForbidden, ""},
		{"coordinator draws", http.MethodPost, "/api/draws", coordinator, http.StatusCreated, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, tt.method, tt.target, tt.token)
			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestMalformedHeader(t *testing.T) {
	r := newRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Token abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
