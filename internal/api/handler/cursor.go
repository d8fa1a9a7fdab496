package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/glucotrack/glucotrack-be/internal/glucose"
	"github.com/glucotrack/glucotrack-be/internal/queue"
)

func DecodeJobCursor(cursorStr string) (*queue.Cursor, error) {
	ts, id, err := decodeCursor(cursorStr)
	if err != nil || id == "" {
		return nil, err
	}
	return &queue.Cursor{CreatedAt: ts, JobID: id}, nil
}

func EncodeJobCursor(cursor *queue.Cursor) string {
	return encodeCursor(cursor.CreatedAt, cursor.JobID)
}

func DecodeReadingCursor(cursorStr string) (*glucose.Cursor, error) {
	ts, id, err := decodeCursor(cursorStr)
	if err != nil || id == "" {
		return nil, err
	}
	return &glucose.Cursor{TakenAt: ts, ReadingID: id}, nil
}

func EncodeReadingCursor(cursor *glucose.Cursor) string {
	return encodeCursor(cursor.TakenAt, cursor.ReadingID)
}

func decodeCursor(cursorStr string) (time.Time, string, error) {
	if cursorStr == "" {
		return time.Time{}, "", nil
	}

	decoded, err := base64.StdEncoding.DecodeString(cursorStr)
	if err != nil {
		return time.Time{}, "", err
	}

	ts, id, ok := strings.Cut(string(decoded), "|")
	if !ok {
		return time.Time{}, "", fmt.Errorf("invalid cursor format")
	}

	var nanos int64
	if _, err := fmt.Sscanf(ts, "%d", &nanos); err != nil {
		return time.Time{}, "", fmt.Errorf("invalid timestamp in cursor: %w", err)
	}

	return time.Unix(0, nanos).UTC(), id, nil
}

func encodeCursor(ts time.Time, id string) string {
	cs := fmt.Sprintf("%d|%s", ts.UnixNano(), id)
	return base64.StdEncoding.EncodeToString([]byte(cs))
}
