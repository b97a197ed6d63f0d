package services

import (
	"errors"
	"fmt"

	"eventhub/internal/authz"
	"eventhub/internal/models"
	"eventhub/internal/repositories"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrForbidden     = errors.New("forbidden")
)

type EventService struct {
	Repo repositories.EventRepository
}

func NewEventService(repo repositories.EventRepository) *EventService {
	return &EventService{Repo: repo}
}

func validateEventRequest(req *models.EventRequest) error {
	if !models.EventCategories[req.Category] {
		return fmt.Errorf("unsupported category %q", req.Category)
	}
	if !req.EndsAt.After(req.StartsAt) {
		return fmt.Errorf("ends_at must be after starts_at")
	}
	return nil
}

// Create stores a new event in pending status, waiting for moderation.
func (s *EventService) Create(req *models.EventRequest, ownerID int) (*models.Event, error) {
	if err := validateEventRequest(req); err != nil {
		return nil, err
	}
	event := &models.Event{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Location:    req.Location,
		City:        req.City,
		Website:     req.Website,
		Status:      models.EventPending,
		OwnerID:     ownerID,
	}
	if err := s.Repo.Create(event); err != nil {
		return nil, err
	}
	return event, nil
}

// Update edits an event. Only the owner or an admin may edit; a non-admin
// edit sends the event back to moderation.
func (s *EventService) Update(id int, req *models.EventRequest, userID int, role string) (*models.Event, error) {
	if err := validateEventRequest(req); err != nil {
		return nil, err
	}
	event, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.OwnerID != userID && !authz.IsAdmin(role) {
		return nil, ErrForbidden
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Category = req.Category
	event.StartsAt = req.StartsAt
	event.EndsAt = req.EndsAt
	event.Location = req.Location
	event.City = req.City
	event.Website = req.Website
	if !authz.IsAdmin(role) {
		event.Status = models.EventPending
	}

	if err := s.Repo.Update(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(id, userID int, role string) error {
	event, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}
	if event.OwnerID != userID && !authz.IsAdmin(role) {
		return ErrForbidden
	}
	return s.Repo.Delete(id)
}

// GetVisible returns the event if the caller may see it: approved events
// are public, the rest only for the owner or an admin.
func (s *EventService) GetVisible(id, userID int, role string) (*models.Event, error) {
	event, err := s.Repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if event.Status != models.EventApproved && event.OwnerID != userID && !authz.IsAdmin(role) {
		return nil, ErrEventNotFound
	}
	return event, nil
}

// ListPublic forces the approved-only view regardless of the filter.
func (s *EventService) ListPublic(filter models.EventFilter) ([]*models.Event, error) {
	filter.Status = models.EventApproved
	filter.OwnerID = 0
	return s.Repo.List(filter)
}

func (s *EventService) ListByOwner(ownerID, limit, offset int) ([]*models.Event, error) {
	return s.Repo.List(models.EventFilter{OwnerID: ownerID, Limit: limit, Offset: offset})
}

func (s *EventService) ListAll(filter models.EventFilter) ([]*models.Event, error) {
	return s.Repo.List(filter)
}

// Moderate moves a pending event to approved or rejected.
func (s *EventService) Moderate(id int, status string) error {
	if status != models.EventApproved && status != models.EventRejected {
		return fmt.Errorf("unsupported moderation status %q", status)
	}
	event, err := s.Repo.GetByID(id)
	if err != nil {
		return err
	}
	if event == nil {
		return ErrEventNotFound
	}
	return s.Repo.UpdateStatus(id, status)
}

func (s *EventService) SetBanner(id int, bannerFile string) error {
	return s.Repo.UpdateBanner(id, bannerFile)
}

func (s *EventService) GetCount() (int, error) {
	return s.Repo.GetCount()
}
