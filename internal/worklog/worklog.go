// Package worklog tracks overnight work: dated entries of what got done on
// the business after hours, for the weekly review.
package worklog

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when an entry id does not exist.
	ErrNotFound = errors.New("worklog entry not found")
	// ErrInvalidEntry is returned when entry params fail validation.
	ErrInvalidEntry = errors.New("invalid worklog entry")
)

// dateLayout is the day-resolution format entries are keyed by.
const dateLayout = "2006-01-02"

// Entry is one night's work on a single category.
type Entry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Category  string    `json:"category"`
	Summary   string    `json:"summary"`
	Hours     float64   `json:"hours"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateParams holds the fields accepted when logging work.
type CreateParams struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Summary  string  `json:"summary"`
	Hours    float64 `json:"hours"`
}

// build validates params and produces a new Entry.
func build(params CreateParams, now time.Time) (*Entry, error) {
	date := strings.TrimSpace(params.Date)
	if date == "" {
		date = now.Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidEntry, params.Date)
	}

	category := strings.TrimSpace(params.Category)
	if category == "" {
		category = "general"
	}

	summary := strings.TrimSpace(params.Summary)
	if summary == "" {
		return nil, fmt.Errorf("%w: summary is required", ErrInvalidEntry)
	}

	if params.Hours < 0 {
		return nil, fmt.Errorf("%w: hours cannot be negative", ErrInvalidEntry)
	}

	return &Entry{
		ID:        uuid.NewString(),
		Date:      date,
		Category:  category,
		Summary:   summary,
		Hours:     params.Hours,
		CreatedAt: now,
	}, nil
}
