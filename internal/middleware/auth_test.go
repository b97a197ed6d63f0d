package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/models"
	"eventhub/internal/services"
)

type stubUsers struct {
	services.UserService
	user *models.User
}

func (s *stubUsers) GetUserByID(id int) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, nil
}

func newTestRouter(users services.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("sid", memstore.NewStore([]byte("test-secret"))))

	// test-only login that plants a session for user 1
	r.POST("/fake-login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set("user_id", 1)
		_ = session.Save()
		c.Status(http.StatusOK)
	})

	r.Use(AuthMiddleware(users))
	r.GET("/protected", func(c *gin.Context) {
		userID, _ := c.Get(CtxUserIDKey)
		role, _ := c.Get(CtxRoleKey)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "role": role})
	})
	return r
}

func sessionCookie(t *testing.T, r *gin.Engine) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/fake-login", nil)
	r.ServeHTTP(w, req)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func TestAuthMiddlewareNoSession(t *testing.T) {
	r := newTestRouter(&stubUsers{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareActiveUser(t *testing.T) {
	users := &stubUsers{user: &models.User{
		ID: 1, Username: "alice", Role: "user", Status: models.StatusActive,
	}}
	r := newTestRouter(users)
	cookie := sessionCookie(t, r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":1`)
}

func TestAuthMiddlewareInactiveUserFailsClosed(t *testing.T) {
	users := &stubUsers{user: &models.User{
		ID: 1, Username: "alice", Role: "user", Status: models.StatusInactive,
	}}
	r := newTestRouter(users)
	cookie := sessionCookie(t, r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareDeletedUserFailsClosed(t *testing.T) {
	r := newTestRouter(&stubUsers{user: nil})
	cookie := sessionCookie(t, r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRoles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(CtxRoleKey, "user") })
	r.GET("/admin-only", RequireRoles("admin"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/any", RequireRoles("admin", "user"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/admin-only", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/any", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
