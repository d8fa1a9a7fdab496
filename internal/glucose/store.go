package glucose

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrReadingNotFound is returned when no reading matches the given id
var ErrReadingNotFound = errors.New("reading not found")

const readingColumns = `reading_id, clerk_id, value_mgdl, notes, taken_at, created_at, updated_at`

// Store handles database operations on the glucose_readings table
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store instance
func NewStore(db *sqlx.DB, logger *slog.Logger) *Store {
	return &Store{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new reading.
func (s *Store) Create(ctx context.Context, clerkID string, valueMgdl int, notes string, takenAt time.Time) (*Reading, error) {
	now := time.Now().UTC()
	reading := &Reading{
		ReadingID: uuid.New().String(),
		ClerkID:   clerkID,
		ValueMgdl: valueMgdl,
		Notes:     notes,
		TakenAt:   takenAt.UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := s.db.Rebind(`
		INSERT INTO glucose_readings (reading_id, clerk_id, value_mgdl, notes, taken_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)

	_, err := s.db.ExecContext(ctx, query,
		reading.ReadingID,
		reading.ClerkID,
		reading.ValueMgdl,
		reading.Notes,
		reading.TakenAt,
		reading.CreatedAt,
		reading.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reading: %w", err)
	}

	return reading, nil
}

// GetByID retrieves a reading by its id.
func (s *Store) GetByID(ctx context.Context, readingID string) (*Reading, error) {
	query := s.db.Rebind(`SELECT ` + readingColumns + ` FROM glucose_readings WHERE reading_id = ?`)

	var reading Reading
	if err := s.db.GetContext(ctx, &reading, query, readingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to get reading: %w", err)
	}

	return &reading, nil
}

// Update overwrites a reading's value, notes, and taken_at.
func (s *Store) Update(ctx context.Context, readingID string, valueMgdl int, notes string, takenAt time.Time) (*Reading, error) {
	query := s.db.Rebind(`
		UPDATE glucose_readings
		SET value_mgdl = ?, notes = ?, taken_at = ?, updated_at = ?
		WHERE reading_id = ?
		RETURNING ` + readingColumns)

	var reading Reading
	err := s.db.GetContext(ctx, &reading, query, valueMgdl, notes, takenAt.UTC(), time.Now().UTC(), readingID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrReadingNotFound
		}
		return nil, fmt.Errorf("failed to update reading: %w", err)
	}

	return &reading, nil
}

// Delete removes a reading.
func (s *Store) Delete(ctx context.Context, readingID string) error {
	query := s.db.Rebind(`DELETE FROM glucose_readings WHERE reading_id = ?`)

	res, err := s.db.ExecContext(ctx, query, readingID)
	if err != nil {
		return fmt.Errorf("failed to delete reading: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrReadingNotFound
	}

	return nil
}

// Filter narrows a List call.
type Filter struct {
	ClerkID  string
	PageSize int
	Cursor   *Cursor
}

// Cursor marks a position for keyset pagination over readings.
type Cursor struct {
	TakenAt   time.Time
	ReadingID string
}

// List returns readings newest first, one row past PageSize so the caller
// can detect more results.
func (s *Store) List(ctx context.Context, filter Filter) ([]Reading, error) {
	query := `SELECT ` + readingColumns + ` FROM glucose_readings WHERE clerk_id = ?`
	args := []any{filter.ClerkID}

	if filter.Cursor != nil {
		query += " AND (taken_at, reading_id) < (?, ?)"
		args = append(args, filter.Cursor.TakenAt, filter.Cursor.ReadingID)
	}

	query += " ORDER BY taken_at DESC, reading_id DESC LIMIT ?"
	args = append(args, filter.PageSize+1)

	var readings []Reading
	if err := s.db.SelectContext(ctx, &readings, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	return readings, nil
}

// ListRange returns all of a user's readings in [from, to), oldest first.
// Used for run computation.
func (s *Store) ListRange(ctx context.Context, clerkID string, from, to time.Time) ([]Reading, error) {
	query := s.db.Rebind(`
		SELECT ` + readingColumns + `
		FROM glucose_readings
		WHERE clerk_id = ? AND taken_at >= ? AND taken_at < ?
		ORDER BY taken_at ASC
	`)

	var readings []Reading
	if err := s.db.SelectContext(ctx, &readings, query, clerkID, from.UTC(), to.UTC()); err != nil {
		return nil, fmt.Errorf("failed to list readings for range: %w", err)
	}

	return readings, nil
}

// Month aggregates the calendar month containing the given first-of-month
// instant for one user. A month with no readings yields a zero summary.
func (s *Store) Month(ctx context.Context, clerkID string, firstOfMonth time.Time) (*MonthSummary, error) {
	start := time.Date(firstOfMonth.Year(), firstOfMonth.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	query := s.db.Rebind(`
		SELECT COUNT(*) AS count,
		       COALESCE(AVG(value_mgdl), 0) AS average,
		       COALESCE(MAX(value_mgdl), 0) AS high,
		       COALESCE(MIN(value_mgdl), 0) AS low
		FROM glucose_readings
		WHERE clerk_id = ? AND taken_at >= ? AND taken_at < ?
	`)

	var row struct {
		Count   int     `db:"count"`
		Average float64 `db:"average"`
		High    int     `db:"high"`
		Low     int     `db:"low"`
	}
	if err := s.db.GetContext(ctx, &row, query, clerkID, start, end); err != nil {
		return nil, fmt.Errorf("failed to aggregate month: %w", err)
	}

	return &MonthSummary{
		Month:        start.Format("2006-01"),
		Count:        row.Count,
		Average:      row.Average,
		High:         row.High,
		Low:          row.Low,
		EstimatedA1C: EstimateA1C(row.Average),
	}, nil
}
