package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Task is a single to-do entry within a named list.
type Task struct {
	// ID is unique within the owning list and assigned as max(id)+1.
	ID int `json:"id"`

	// Title is the user-entered text of the task.
	Title string `json:"title"`

	// Completed reports whether the task has been checked off.
	Completed bool `json:"completed"`

	// CreatedAt is when the task was added to the list.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the title or completion state last changed.
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	// CompletedAt is set while the task is completed.
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// UnmarshalJSON decodes a persisted task. Timestamps may be RFC 3339
// strings, epoch milliseconds, null, or missing.
func (t *Task) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          int             `json:"id"`
		Title       string          `json:"title"`
		Completed   bool            `json:"completed"`
		CreatedAt   json.RawMessage `json:"createdAt"`
		UpdatedAt   json.RawMessage `json:"updatedAt"`
		CompletedAt json.RawMessage `json:"completedAt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	createdAt, _, err := parseTimestamp(raw.CreatedAt)
	if err != nil {
		return fmt.Errorf("task %d createdAt: %w", raw.ID, err)
	}
	updatedAt, hasUpdated, err := parseTimestamp(raw.UpdatedAt)
	if err != nil {
		return fmt.Errorf("task %d updatedAt: %w", raw.ID, err)
	}
	completedAt, hasCompleted, err := parseTimestamp(raw.CompletedAt)
	if err != nil {
		return fmt.Errorf("task %d completedAt: %w", raw.ID, err)
	}

	*t = Task{
		ID:        raw.ID,
		Title:     raw.Title,
		Completed: raw.Completed,
		CreatedAt: createdAt,
	}
	if hasUpdated {
		t.UpdatedAt = &updatedAt
	}
	if hasCompleted {
		t.CompletedAt = &completedAt
	}
	return nil
}

// timestampLayouts are tried in order for string timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// maxEpochMillis bounds numeric timestamps to the JavaScript Date range.
const maxEpochMillis = 8.64e15

// parseTimestamp decodes one timestamp value. The bool result is false
// when the value is missing, null, or an empty string.
func parseTimestamp(raw json.RawMessage) (time.Time, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return time.Time{}, false, nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return time.Time{}, false, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return time.Time{}, false, nil
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true, nil
			}
		}
		return time.Time{}, false, fmt.Errorf("unrecognized timestamp %q", s)
	}

	var ms json.Number
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, false, err
	}
	f, err := ms.Float64()
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unrecognized timestamp %s: %w", raw, err)
	}
	if f < -maxEpochMillis || f > maxEpochMillis {
		return time.Time{}, false, fmt.Errorf("timestamp %s out of range", raw)
	}
	return time.UnixMilli(int64(f)).UTC(), true, nil
}
