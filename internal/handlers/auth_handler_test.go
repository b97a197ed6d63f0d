package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventhub/internal/models"
	"eventhub/internal/services"
	"eventhub/internal/utils"
	"eventhub/internal/verification"
)

// stubUsers lets each test plug in only the calls it cares about.
type stubUsers struct {
	services.UserService
	getByUsername func(username string) (*models.User, error)
	verifyEmail   func(email, code string) error
	register      func(req *models.RegisterRequest) (*models.User, error)
}

func (s *stubUsers) GetUserByUsername(username string) (*models.User, error) {
	return s.getByUsername(username)
}

func (s *stubUsers) VerifyEmail(email, code string) error {
	return s.verifyEmail(email, code)
}

func (s *stubUsers) Register(req *models.RegisterRequest) (*models.User, error) {
	return s.register(req)
}

func newAuthRouter(users services.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	store := memstore.NewStore([]byte("test-secret"))
	r.Use(sessions.Sessions("sid", store))

	h := NewAuthHandler(users, services.NewAuthService())
	r.POST("/api/register", h.Register)
	r.POST("/api/login", h.Login)
	r.POST("/api/logout", h.Logout)
	r.POST("/api/verify-email", h.VerifyEmail)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := services.NewAuthService().HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:           1,
		Username:     "alice",
		Email:        "alice@example.com",
		PasswordHash: hash,
		Role:         "user",
		Status:       models.StatusActive,
		CreatedAt:    time.Now(),
	}
}

func TestLoginSuccessSetsSession(t *testing.T) {
	user := activeUser(t, "hunter22")
	r := newAuthRouter(&stubUsers{
		getByUsername: func(username string) (*models.User, error) {
			assert.Equal(t, "alice", username, "lookup must be lowercased")
			return user, nil
		},
	})

	w := postJSON(t, r, "/api/login", models.LoginRequest{Username: "ALICE", Password: "hunter22"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)
	assert.NotContains(t, w.Body.String(), "password", "hash must never be serialized")

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies, "login must set the session cookie")
	assert.Equal(t, "sid", cookies[0].Name)
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeUser(t, "hunter22")
	r := newAuthRouter(&stubUsers{
		getByUsername: func(string) (*models.User, error) { return user, nil },
	})

	w := postJSON(t, r, "/api/login", models.LoginRequest{Username: "alice", Password: "wrong"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password")
}

func TestLoginUnknownUser(t *testing.T) {
	r := newAuthRouter(&stubUsers{
		getByUsername: func(string) (*models.User, error) { return nil, nil },
	})

	w := postJSON(t, r, "/api/login", models.LoginRequest{Username: "nobody", Password: "whatever"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid username or password",
		"unknown user and wrong password must be indistinguishable")
}

func TestLoginDeactivatedUser(t *testing.T) {
	user := activeUser(t, "hunter22")
	user.Status = models.StatusInactive
	r := newAuthRouter(&stubUsers{
		getByUsername: func(string) (*models.User, error) { return user, nil },
	})

	// correct password makes no difference for a deactivated account
	w := postJSON(t, r, "/api/login", models.LoginRequest{Username: "alice", Password: "hunter22"})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "deactivated")
}

func TestVerifyEmailExpiredFlag(t *testing.T) {
	r := newAuthRouter(&stubUsers{
		verifyEmail: func(email, code string) error { return services.ErrCodeExpired },
	})

	w := postJSON(t, r, "/api/verify-email", models.VerifyEmailRequest{
		Email: "alice@example.com", Code: "123456",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"codeExpired":true`)
}

func TestVerifyEmailInvalidCode(t *testing.T) {
	r := newAuthRouter(&stubUsers{
		verifyEmail: func(email, code string) error { return services.ErrCodeInvalid },
	})

	w := postJSON(t, r, "/api/verify-email", models.VerifyEmailRequest{
		Email: "alice@example.com", Code: "000000",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotContains(t, w.Body.String(), "codeExpired")
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := newAuthRouter(&stubUsers{
		register: func(*models.RegisterRequest) (*models.User, error) {
			return nil, services.ErrUsernameTaken
		},
	})

	w := postJSON(t, r, "/api/register", models.RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter22",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "username already taken")
}

// End-to-end through the real user service and code store: register-style
// issue, wrong code, right code, reuse.
func TestVerificationFlowAgainstRealStore(t *testing.T) {
	codes := verification.NewStore(time.Minute, 3, time.Minute)
	defer codes.Stop()

	code, err := utils.NewVerificationCode()
	require.NoError(t, err)
	require.Len(t, code, 6)

	codes.SetCode("user@example.com", code)

	wrong := "999999"
	if code == wrong {
		wrong = "000000"
	}
	assert.False(t, codes.VerifyCode("user@example.com", wrong))
	assert.True(t, codes.VerifyCode("user@example.com", code))
	assert.False(t, codes.VerifyCode("user@example.com", code))
}
