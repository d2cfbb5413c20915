package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Task belongs to exactly one Project. Its owner is the project's owner.
type Task struct {
	ID        int64
	ProjectID int64
	Title     string
	Status    Status
	Priority  Priority
	DueDate   *time.Time // calendar date, midnight UTC
	CreatedAt time.Time
}

// Subtask belongs to exactly one Task.
type Subtask struct {
	ID        int64
	TaskID    int64
	Title     string
	Status    Status
	CreatedAt time.Time
}

// Status is shared by tasks and subtasks.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every valid status in workflow order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone}

// ParseStatus accepts only members of Statuses. Values are not trimmed or case-folded.
func ParseStatus(s string) (Status, bool) {
	for _, v := range Statuses {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Priorities lists every valid priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityNormal, PriorityHigh}

func ParsePriority(s string) (Priority, bool) {
	for _, v := range Priorities {
		if string(v) == s {
			return v, true
		}
	}
	return "", false
}

// StatusChoices renders Statuses for error messages, e.g. "todo, in_progress, done".
func StatusChoices() string { return join(Statuses) }

func PriorityChoices() string { return join(Priorities) }

func join[T ~string](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

// DateLayout is the wire and query-string format of due dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// StorableText reports whether s can be stored in a text column: valid
// UTF-8 without NUL bytes.
func StorableText(s string) bool {
	return utf8.ValidString(s) && !strings.ContainsRune(s, 0)
}
