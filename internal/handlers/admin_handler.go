package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventhub/internal/models"
	"eventhub/internal/services"
)

// AdminHandler is the back-office: user moderation and event moderation.
type AdminHandler struct {
	userService  services.UserService
	eventService *services.EventService
}

func NewAdminHandler(userService services.UserService, eventService *services.EventService) *AdminHandler {
	return &AdminHandler{userService: userService, eventService: eventService}
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.userService.ListUsers(limit, offset)
	if err != nil {
		log.Printf("[admin][users] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// PATCH /api/admin/users/:id/status
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userService.SetUserStatus(id, req.Status); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[admin][users] status userID=%d -> %s", id, req.Status)
	c.JSON(http.StatusOK, gin.H{"message": "Status updated"})
}

// GET /api/admin/events
func (h *AdminHandler) ListEvents(c *gin.Context) {
	limit, offset := pagination(c)
	filter := models.EventFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}
	events, err := h.eventService.ListAll(filter)
	if err != nil {
		log.Printf("[admin][events] list failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// POST /api/admin/events/:id/approve
func (h *AdminHandler) ApproveEvent(c *gin.Context) {
	h.moderate(c, models.EventApproved)
}

// POST /api/admin/events/:id/reject
func (h *AdminHandler) RejectEvent(c *gin.Context) {
	h.moderate(c, models.EventRejected)
}

func (h *AdminHandler) moderate(c *gin.Context, status string) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.eventService.Moderate(id, status); err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Printf("[admin][events] eventID=%d -> %s", id, status)
	c.JSON(http.StatusOK, gin.H{"message": "Event " + status})
}

// DELETE /api/admin/events/:id
func (h *AdminHandler) DeleteEvent(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.eventService.Repo.Delete(id); err != nil {
		log.Printf("[admin][events] delete failed eventID=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		return
	}
	c.Status(http.StatusNoContent)
}
