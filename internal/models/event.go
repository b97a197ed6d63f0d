package models

import "time"

// Event moderation statuses. New and edited events wait for admin review.
const (
	EventPending  = "pending"
	EventApproved = "approved"
	EventRejected = "rejected"
)

var EventCategories = map[string]bool{
	"conference": true,
	"workshop":   true,
	"seminar":    true,
}

type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	StartsAt    time.Time `json:"starts_at"`
	EndsAt      time.Time `json:"ends_at"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	Website     string    `json:"website"`
	BannerFile  string    `json:"banner_file,omitempty"`
	Status      string    `json:"status"`
	OwnerID     int       `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type EventRequest struct {
	Title       string    `json:"title" binding:"required,max=200"`
	Description string    `json:"description"`
	Category    string    `json:"category" binding:"required"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	Location    string    `json:"location"`
	City        string    `json:"city"`
	Website     string    `json:"website" binding:"omitempty,url"`
}

// EventFilter narrows public and admin listings.
type EventFilter struct {
	Category string
	City     string
	Query    string
	Status   string
	OwnerID  int
	Upcoming bool
	Limit    int
	Offset   int
}
