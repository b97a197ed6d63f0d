package services

import (
	"fmt"
	"io"
	"log"
	"time"

	"github.com/gocarina/gocsv"

	"eventhub/internal/models"
)

// EventCSVRow mirrors the import file header:
// title,description,category,starts_at,ends_at,location,city,website
type EventCSVRow struct {
	Title       string `csv:"title"`
	Description string `csv:"description"`
	Category    string `csv:"category"`
	StartsAt    string `csv:"starts_at"`
	EndsAt      string `csv:"ends_at"`
	Location    string `csv:"location"`
	City        string `csv:"city"`
	Website     string `csv:"website"`
}

type ImportError struct {
	Line  int    `json:"line"`
	Error string `json:"error"`
}

type ImportResult struct {
	Imported int           `json:"imported"`
	Failed   int           `json:"failed"`
	Errors   []ImportError `json:"errors"`
}

type ImportService struct {
	Events *EventService
}

func NewImportService(events *EventService) *ImportService {
	return &ImportService{Events: events}
}

// ImportCSV parses the file and pushes every valid row through the normal
// create path. Row failures are collected, not fatal; only an unreadable
// file aborts the import.
func (s *ImportService) ImportCSV(r io.Reader, ownerID int) (*ImportResult, error) {
	var rows []*EventCSVRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	res := &ImportResult{Errors: []ImportError{}}
	for i, row := range rows {
		line := i + 2 // header is line 1
		req, err := rowToRequest(row)
		if err == nil {
			_, err = s.Events.Create(req, ownerID)
		}
		if err != nil {
			res.Failed++
			res.Errors = append(res.Errors, ImportError{Line: line, Error: err.Error()})
			continue
		}
		res.Imported++
	}

	log.Printf("[import][csv] owner=%d imported=%d failed=%d", ownerID, res.Imported, res.Failed)
	return res, nil
}

func rowToRequest(row *EventCSVRow) (*models.EventRequest, error) {
	if row.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	startsAt, err := parseCSVTime(row.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("starts_at: %w", err)
	}
	endsAt, err := parseCSVTime(row.EndsAt)
	if err != nil {
		return nil, fmt.Errorf("ends_at: %w", err)
	}
	return &models.EventRequest{
		Title:       row.Title,
		Description: row.Description,
		Category:    row.Category,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
		Location:    row.Location,
		City:        row.City,
		Website:     row.Website,
	}, nil
}

// parseCSVTime accepts RFC3339 or the short "2006-01-02 15:04" form that
// spreadsheets tend to produce.
func parseCSVTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("value is required")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02 15:04", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}
