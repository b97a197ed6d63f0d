package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventhub/internal/middleware"
	"eventhub/internal/models"
	"eventhub/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// @Summary      Current user
// @Tags         Users
// @Produce      json
// @Success      200  {object}  models.User
// @Router       /api/user [get]
func (h *UserHandler) Me(c *gin.Context) {
	v, ok := c.Get(middleware.CtxUserKey)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, v.(*models.User))
}

// @Summary      Update own profile
// @Tags         Users
// @Accept       json
// @Produce      json
// @Param        body  body      models.UpdateProfileRequest  true  "Profile fields"
// @Success      200   {object}  models.User
// @Failure      400   {object}  map[string]string
// @Router       /api/user [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[users][update] failed for userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}
	c.JSON(http.StatusOK, user)
}
