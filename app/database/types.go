package database

import (
	"database/sql"
	"time"
)

// Timestamps are stored as RFC3339 UTC text. Rows created through
// SQLite's own datetime('now') default use its "2006-01-02 15:04:05"
// layout, so parsing accepts both.

var timeNow = time.Now

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

func parseNullableTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	if t.IsZero() {
		return nil
	}
	return &t
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
