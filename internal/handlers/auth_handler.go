package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"eventhub/internal/models"
	"eventhub/internal/services"
)

type AuthHandler struct {
	userService services.UserService
	authService services.AuthService
}

func NewAuthHandler(userService services.UserService, authService services.AuthService) *AuthHandler {
	return &AuthHandler{userService: userService, authService: authService}
}

// @Summary      Register an account
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.RegisterRequest  true  "Registration data"
// @Success      201   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Router       /api/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUsernameTaken), errors.Is(err, services.ErrEmailTaken):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("[auth][register] failed for username=%q: %v", req.Username, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Registration failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Log in
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.LoginRequest  true  "Credentials"
// @Success      200   {object}  models.User
// @Failure      401   {object}  map[string]string
// @Router       /api/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	start := time.Now()

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Printf("[auth][login] bad request: bind json failed: err=%v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	username := strings.ToLower(strings.TrimSpace(req.Username))
	log.Printf("[auth][login] attempt username=%q", username)

	user, err := h.userService.GetUserByUsername(username)
	if err != nil {
		log.Printf("[auth][login] lookup failed for username=%q: err=%v", username, err)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}
	if user == nil {
		log.Printf("[auth][login] no such user username=%q", username)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}
	if user.Status != models.StatusActive {
		log.Printf("[auth][login] deactivated account userID=%d username=%q", user.ID, username)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Account is deactivated. Contact support."})
		return
	}

	if !h.authService.ComparePasswords(req.Password, user.PasswordHash) {
		log.Printf("[auth][login] password mismatch userID=%d username=%q", user.ID, username)
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid username or password"})
		return
	}

	// Persist the session before answering so a fast follow-up request
	// cannot race an unsaved session.
	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	if err := session.Save(); err != nil {
		log.Printf("[auth][login] session save failed userID=%d: err=%v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Login failed"})
		return
	}

	log.Printf("[auth][login] success userID=%d role=%s took=%s",
		user.ID, user.Role, time.Since(start).Truncate(time.Millisecond))
	c.JSON(http.StatusOK, user)
}

// @Summary      Log out
// @Tags         Auth
// @Success      200  {object}  map[string]string
// @Router       /api/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{MaxAge: -1, Path: "/"})
	if err := session.Save(); err != nil {
		log.Printf("[auth][logout] session save failed: %v", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// @Summary      Verify email address
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.VerifyEmailRequest  true  "Email and code"
// @Success      200   {object}  map[string]string
// @Failure      400   {object}  map[string]interface{}
// @Router       /api/verify-email [post]
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req models.VerifyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.VerifyEmail(req.Email, req.Code); err != nil {
		switch {
		case errors.Is(err, services.ErrCodeExpired):
			c.JSON(http.StatusBadRequest, gin.H{
				"message":     "Verification code expired, please request a new one",
				"codeExpired": true,
			})
		case errors.Is(err, services.ErrCodeInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid verification code"})
		default:
			log.Printf("[auth][verify-email] failed for email=%q: %v", req.Email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Verification failed"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Email verified"})
}

// @Summary      Resend the verification code
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body  body      models.ResendVerificationRequest  true  "Email"
// @Success      200   {object}  map[string]string
// @Router       /api/resend-verification [post]
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req models.ResendVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userService.ResendVerification(req.Email); err != nil {
		log.Printf("[auth][resend] failed for email=%q: %v", req.Email, err)
	}
	// always 200, do not reveal which emails are registered
	c.JSON(http.StatusOK, gin.H{"message": "If the account exists, a code has been sent"})
}
