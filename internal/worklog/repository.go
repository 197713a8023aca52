package worklog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"family-ops/internal/notify"
	db "family-ops/internal/worklog/worklog_db"
)

// Repository is the SQLite-backed entry store.
type Repository struct {
	queries     *db.Queries
	broadcaster *notify.Broadcaster
	now         func() time.Time
}

// NewRepository creates a Repository over an open database.
func NewRepository(d *sql.DB, broadcaster *notify.Broadcaster) *Repository {
	return &Repository{
		queries:     db.New(d),
		broadcaster: broadcaster,
		now:         time.Now,
	}
}

// Log validates and stores a new entry.
func (r *Repository) Log(ctx context.Context, params CreateParams) (*Entry, error) {
	entry, err := build(params, r.now())
	if err != nil {
		return nil, err
	}

	if err := r.save(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save worklog entry: %w", err)
	}

	r.broadcaster.Publish(notify.Event{Store: notify.StoreWorklog, Key: entry.ID})
	return entry, nil
}

// Get returns the entry with the given id, or nil when absent.
func (r *Repository) Get(ctx context.Context, id string) (*Entry, error) {
	row, err := r.queries.GetWorklogEntry(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worklog entry: %w", err)
	}
	entry := fromRow(row)
	return &entry, nil
}

// ListRange returns entries with dates in [from, to], newest first. Dates
// are YYYY-MM-DD strings.
func (r *Repository) ListRange(ctx context.Context, from, to string) ([]Entry, error) {
	rows, err := r.queries.ListWorklogEntriesByRange(ctx, db.ListWorklogEntriesByRangeParams{
		FromDate: from,
		ToDate:   to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list worklog entries: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, fromRow(row))
	}
	return entries, nil
}

// ListRecent returns entries from the last N days.
func (r *Repository) ListRecent(ctx context.Context, days int) ([]Entry, error) {
	now := r.now()
	from := now.AddDate(0, 0, -days).Format(dateLayout)
	return r.ListRange(ctx, from, now.Format(dateLayout))
}

// Delete removes an entry. Unknown ids return ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id string) error {
	affected, err := r.queries.DeleteWorklogEntry(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete worklog entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s: %w", id, ErrNotFound)
	}

	r.broadcaster.Publish(notify.Event{Store: notify.StoreWorklog, Key: id})
	return nil
}

func (r *Repository) save(ctx context.Context, entry *Entry) error {
	return r.queries.InsertWorklogEntry(ctx, db.InsertWorklogEntryParams{
		ID:        entry.ID,
		EntryDate: entry.Date,
		Category:  entry.Category,
		Summary:   entry.Summary,
		Hours:     entry.Hours,
		CreatedAt: entry.CreatedAt,
	})
}

func fromRow(row db.WorklogEntry) Entry {
	return Entry{
		ID:        row.ID,
		Date:      row.EntryDate,
		Category:  row.Category,
		Summary:   row.Summary,
		Hours:     row.Hours,
		CreatedAt: row.CreatedAt,
	}
}
