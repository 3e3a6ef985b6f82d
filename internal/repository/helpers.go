package repository

import (
	"database/sql"
	"strings"
	"time"
)

// dateLayout is the storage format for calendar-date columns.
const dateLayout = "2006-01-02"

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
// Returns nil (SQL NULL) if the pointer is nil, otherwise returns the formatted string.
func nullableTimeToString(t *time.Time, layout string) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

// nullableStrToValue converts a *string to a value suitable for SQLite storage.
func nullableStrToValue(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// nullStringToPtr converts a scanned sql.NullString back into a *string.
func nullStringToPtr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}
	v := s.String
	return &v
}

// joinList encodes a string slice as a comma-separated column value.
func joinList(vals []string) string {
	return strings.Join(vals, ",")
}

// splitList decodes a comma-separated column value. Empty input yields nil.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// joinDates encodes a date slice as a comma-separated column value.
func joinDates(dates []time.Time) string {
	parts := make([]string, len(dates))
	for i, d := range dates {
		parts[i] = d.Format(dateLayout)
	}
	return strings.Join(parts, ",")
}

// splitDates decodes a comma-separated date column value, skipping
// anything unparsable.
func splitDates(s string) []time.Time {
	if s == "" {
		return nil
	}
	var out []time.Time
	for _, part := range strings.Split(s, ",") {
		t, err := time.Parse(dateLayout, part)
		if err != nil {
			continue
		}
		out = append(out, t)
	}
	return out
}
