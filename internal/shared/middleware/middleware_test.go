package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"monetization-backend/internal/shared"
	"monetization-backend/internal/shared/response"
	"monetization-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(manager *jwt.Manager) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Recovery())

	r.GET("/boom", func(c *gin.Context) { panic("ledger exploded") })

	api := r.Group("/api", AuthMiddleware(manager))
	api.GET("/me", func(c *gin.Context) {
		actor := ActorFrom(c)
		ctxActor, _ := shared.ActorFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"user_id": actor.UserID, "role": actor.Role, "ctx_user_id": ctxActor.UserID})
	})
	api.GET("/admin", AdminMiddleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRecovery_ReturnsSystemError(t *testing.T) {
	r := newRouter(jwt.NewManager("secret", time.Minute))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	body := decodeEnvelope(t, w)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "SYS_001", body.Error.Code)
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	r := newRouter(jwt.NewManager("secret", time.Minute))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAuthMiddleware(t *testing.T) {
	manager := jwt.NewManager("secret", time.Minute)
	r := newRouter(manager)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Token abc")
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other, err := jwt.NewManager("other", time.Minute).GenerateAccessToken("u1", "u1@example.com", shared.RoleUser)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+other)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("empty role defaults to user", func(t *testing.T) {
		token, err := manager.GenerateAccessToken("u1", "u1@example.com", "")
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var got map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, "u1", got["user_id"])
		assert.Equal(t, shared.RoleUser, got["role"])
		assert.Equal(t, "u1", got["ctx_user_id"])
	})
}

func TestAdminMiddleware(t *testing.T) {
	manager := jwt.NewManager("secret", time.Minute)
	r := newRouter(manager)

	userToken, err := manager.GenerateAccessToken("u1", "u1@example.com", shared.RoleUser)
	require.NoError(t, err)
	adminToken, err := manager.GenerateAccessToken("a1", "a1@example.com", shared.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	denied := decodeEnvelope(t, w)
	assert.Equal(t, "FORBIDDEN", denied.Error.Code)
	assert.Equal(t, "Không có quyền truy cập: yêu cầu quyền quản trị", denied.Error.Message)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
