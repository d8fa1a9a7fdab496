package glucose

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glucotrack/glucotrack-be/internal/testdb"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(testdb.New(t), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCreateGetUpdateDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	takenAt := time.Date(2026, 8, 10, 7, 30, 0, 0, time.UTC)

	created, err := s.Create(ctx, "user_abc", 132, "fasting", takenAt)
	require.NoError(t, err)

	got, err := s.GetByID(ctx, created.ReadingID)
	require.NoError(t, err)
	assert.Equal(t, 132, got.ValueMgdl)
	assert.Equal(t, "fasting", got.Notes)
	assert.True(t, got.TakenAt.Equal(takenAt))

	updated, err := s.Update(ctx, created.ReadingID, 145, "post-meal", takenAt.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 145, updated.ValueMgdl)
	assert.Equal(t, "post-meal", updated.Notes)

	require.NoError(t, s.Delete(ctx, created.ReadingID))

	_, err = s.GetByID(ctx, created.ReadingID)
	assert.ErrorIs(t, err, ErrReadingNotFound)

	assert.ErrorIs(t, s.Delete(ctx, created.ReadingID), ErrReadingNotFound)
}

func TestUpdateMissingReading(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Update(context.Background(), "missing", 100, "", time.Now())
	assert.ErrorIs(t, err, ErrReadingNotFound)
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		_, err := s.Create(ctx, "user_abc", 100+i, "", base.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
	}
	_, err := s.Create(ctx, "user_other", 200, "", base)
	require.NoError(t, err)

	page, err := s.List(ctx, Filter{ClerkID: "user_abc", PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, 103, page[0].ValueMgdl, "newest first")

	next, err := s.List(ctx, Filter{
		ClerkID:  "user_abc",
		PageSize: 10,
		Cursor:   &Cursor{TakenAt: page[1].TakenAt, ReadingID: page[1].ReadingID},
	})
	require.NoError(t, err)
	require.Len(t, next, 2)
	assert.Equal(t, 101, next[0].ValueMgdl)
}

func TestMonth(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	values := []int{100, 120, 140}
	for i, v := range values {
		_, err := s.Create(ctx, "user_abc", v, "", time.Date(2026, 8, i+1, 9, 0, 0, 0, time.UTC))
		require.NoError(t, err)
	}
	// Outside the month window.
	_, err := s.Create(ctx, "user_abc", 250, "", time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	summary, err := s.Month(ctx, "user_abc", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, "2026-08", summary.Month)
	assert.Equal(t, 3, summary.Count)
	assert.InDelta(t, 120, summary.Average, 0.001)
	assert.Equal(t, 140, summary.High)
	assert.Equal(t, 100, summary.Low)
	assert.InDelta(t, EstimateA1C(120), summary.EstimatedA1C, 0.001)
}

func TestMonthEmpty(t *testing.T) {
	s := newTestStore(t)

	summary, err := s.Month(context.Background(), "user_abc", time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, 0, summary.Count)
	assert.Zero(t, summary.Average)
	assert.Zero(t, summary.EstimatedA1C)
}

func TestListRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Create(ctx, "user_abc", 100, "", time.Date(2026, 8, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = s.Create(ctx, "user_abc", 110, "", time.Date(2026, 8, 2, 8, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	readings, err := s.ListRange(ctx, "user_abc",
		time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, readings, 1)
	assert.Equal(t, 100, readings[0].ValueMgdl)
}
