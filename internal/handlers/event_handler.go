package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"eventhub/internal/authz"
	"eventhub/internal/models"
	"eventhub/internal/pdf"
	"eventhub/internal/services"
)

type EventHandler struct {
	events   *services.EventService
	banners  *services.BannerService
	calendar *services.CalendarService
	importer *services.ImportService
	flyers   pdf.Generator
}

func NewEventHandler(
	events *services.EventService,
	banners *services.BannerService,
	calendar *services.CalendarService,
	importer *services.ImportService,
	flyers pdf.Generator,
) *EventHandler {
	return &EventHandler{
		events:   events,
		banners:  banners,
		calendar: calendar,
		importer: importer,
		flyers:   flyers,
	}
}

func eventID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// ===== public =====

// @Summary      Browse approved events
// @Tags         Events
// @Produce      json
// @Param        category  query  string  false  "conference | workshop | seminar"
// @Param        city      query  string  false  "City filter"
// @Param        q         query  string  false  "Title search"
// @Param        upcoming  query  bool    false  "Only future events"
// @Success      200  {array}  models.Event
// @Router       /api/events [get]
func (h *EventHandler) List(c *gin.Context) {
	limit, offset := pagination(c)
	filter := models.EventFilter{
		Category: c.Query("category"),
		City:     c.Query("city"),
		Query:    c.Query("q"),
		Upcoming: c.Query("upcoming") == "true",
		Limit:    limit,
		Offset:   offset,
	}
	events, err := h.events.ListPublic(filter)
	if err != nil {
		log.Printf("[events][list] query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// @Summary      Event details
// @Tags         Events
// @Produce      json
// @Success      200  {object}  models.Event
// @Failure      404  {object}  map[string]string
// @Router       /api/events/{id} [get]
func (h *EventHandler) Get(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	userID, role := getUserAndRole(c)
	event, err := h.events.GetVisible(id, userID, role)
	if err != nil {
		if errors.Is(err, services.ErrEventNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// GET /api/events/:id/banner
func (h *EventHandler) ServeBanner(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	userID, role := getUserAndRole(c)
	event, err := h.events.GetVisible(id, userID, role)
	if err != nil || event.BannerFile == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "banner not found"})
		return
	}
	abs, err := h.banners.Path(event.BannerFile)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "banner not found"})
		return
	}
	c.File(abs)
}

// @Summary      Single-event calendar file
// @Tags         Events
// @Produce      text/calendar
// @Router       /api/events/{id}/calendar [get]
func (h *EventHandler) CalendarOne(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	userID, role := getUserAndRole(c)
	event, err := h.events.GetVisible(id, userID, role)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="event.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(h.calendar.EventICS(event)))
}

// @Summary      Calendar feed of approved events
// @Tags         Events
// @Produce      text/calendar
// @Router       /api/events/calendar [get]
func (h *EventHandler) CalendarFeed(c *gin.Context) {
	events, err := h.events.ListPublic(models.EventFilter{Upcoming: true, Limit: 200})
	if err != nil {
		log.Printf("[events][calendar] query failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build calendar"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="events.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(h.calendar.FeedICS(events)))
}

// GET /api/events/:id/flyer
func (h *EventHandler) Flyer(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	userID, role := getUserAndRole(c)
	event, err := h.events.GetVisible(id, userID, role)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	data, err := h.flyers.EventFlyer(event)
	if err != nil {
		log.Printf("[events][flyer] generation failed for id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate flyer"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="event.pdf"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// ===== authenticated =====

// @Summary      Create an event
// @Tags         Events
// @Accept       json
// @Produce      json
// @Param        body  body      models.EventRequest  true  "Event fields"
// @Success      201   {object}  models.Event
// @Failure      400   {object}  map[string]string
// @Router       /api/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, _ := getUserAndRole(c)

	event, err := h.events.Create(&req, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, event)
}

// PUT /api/events/:id
func (h *EventHandler) Update(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	userID, role := getUserAndRole(c)

	event, err := h.events.Update(id, &req, userID, role)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, event)
}

// DELETE /api/events/:id
func (h *EventHandler) Delete(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	userID, role := getUserAndRole(c)
	if err := h.events.Delete(id, userID, role); err != nil {
		switch {
		case errors.Is(err, services.ErrEventNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /api/my/events
func (h *EventHandler) MyEvents(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	limit, offset := pagination(c)
	events, err := h.events.ListByOwner(userID, limit, offset)
	if err != nil {
		log.Printf("[events][my] query failed for userID=%d: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load events"})
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	c.JSON(http.StatusOK, events)
}

// @Summary      Upload an event banner
// @Tags         Events
// @Accept       multipart/form-data
// @Produce      json
// @Param        banner  formData  file  true  "Image file"
// @Success      200  {object}  models.Event
// @Router       /api/events/{id}/banner [post]
func (h *EventHandler) UploadBanner(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	userID, role := getUserAndRole(c)
	event, err := h.events.GetVisible(id, userID, role)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "event not found"})
		return
	}
	if event.OwnerID != userID && !authz.IsAdmin(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	fh, err := c.FormFile("banner")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "banner file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer f.Close()

	name, err := h.banners.Save(f)
	if err != nil {
		log.Printf("[events][banner] save failed for id=%d: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported or corrupt image"})
		return
	}

	// best effort: drop the previous file
	if event.BannerFile != "" {
		_ = h.banners.Remove(event.BannerFile)
	}
	if err := h.events.SetBanner(id, name); err != nil {
		log.Printf("[events][banner] db update failed for id=%d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store banner"})
		return
	}
	event.BannerFile = name
	c.JSON(http.StatusOK, event)
}

// @Summary      Bulk-import events from CSV
// @Tags         Events
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV file"
// @Success      200   {object}  services.ImportResult
// @Router       /api/events/import [post]
func (h *EventHandler) ImportCSV(c *gin.Context) {
	userID, _ := getUserAndRole(c)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "csv file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer f.Close()

	res, err := h.importer.ImportCSV(f, userID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}
