package services

import (
	"fmt"

	ics "github.com/arran4/golang-ical"

	"eventhub/internal/models"
)

type CalendarService struct {
	// Host shows up in UIDs so entries stay stable across exports.
	Host string
}

func NewCalendarService(host string) *CalendarService {
	if host == "" {
		host = "eventhub"
	}
	return &CalendarService{Host: host}
}

// EventICS renders a single event as an iCalendar document.
func (s *CalendarService) EventICS(event *models.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//EventHub//Events//EN")
	s.addEvent(cal, event)
	return cal.Serialize()
}

// FeedICS renders the full approved-events feed.
func (s *CalendarService) FeedICS(events []*models.Event) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//EventHub//Events//EN")
	cal.SetName("EventHub Tech Events")
	for _, e := range events {
		s.addEvent(cal, e)
	}
	return cal.Serialize()
}

func (s *CalendarService) addEvent(cal *ics.Calendar, event *models.Event) {
	e := cal.AddEvent(fmt.Sprintf("event-%d@%s", event.ID, s.Host))
	e.SetCreatedTime(event.CreatedAt)
	e.SetDtStampTime(event.UpdatedAt)
	e.SetStartAt(event.StartsAt)
	e.SetEndAt(event.EndsAt)
	e.SetSummary(event.Title)
	if event.Description != "" {
		e.SetDescription(event.Description)
	}
	if loc := eventLocation(event); loc != "" {
		e.SetLocation(loc)
	}
	if event.Website != "" {
		e.SetURL(event.Website)
	}
}

func eventLocation(event *models.Event) string {
	switch {
	case event.Location != "" && event.City != "":
		return event.Location + ", " + event.City
	case event.Location != "":
		return event.Location
	default:
		return event.City
	}
}
