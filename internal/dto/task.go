package dto

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"taskhub/internal/apperr"
	dom "taskhub/internal/domain"
)

// DueDate reads due_date as "YYYY-MM-DD" or null. Set tells an explicit
// null apart from a missing key, which PATCH needs to clear the date.
type DueDate struct {
	Set bool
	t   *time.Time
}

func (d *DueDate) UnmarshalJSON(data []byte) error {
	d.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.t = nil
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return apperr.InvalidField("due_date", "due_date must be a YYYY-MM-DD string or null")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		d.t = nil
		return nil
	}
	t, err := dom.ParseDate(raw)
	if err != nil {
		return apperr.InvalidField("due_date", "due_date must be YYYY-MM-DD")
	}
	d.t = &t
	return nil
}

// Ptr returns *time.Time for use in service/domain.
func (d DueDate) Ptr() *time.Time { return d.t }

type CreateTaskRequest struct {
	Title     string  `json:"title" binding:"required,max=300"`
	ProjectID int64   `json:"project_id" binding:"required"`
	Status    string  `json:"status"`
	Priority  string  `json:"priority"`
	DueDate   DueDate `json:"due_date" swaggertype:"string" example:"2025-01-31"`
}

// UpdateTaskRequest is a partial update; absent keys are left unchanged and
// "due_date": null clears the date.
type UpdateTaskRequest struct {
	Title     *string `json:"title" binding:"omitempty,max=300"`
	Status    *string `json:"status"`
	Priority  *string `json:"priority"`
	ProjectID *int64  `json:"project_id"`
	DueDate   DueDate `json:"due_date" swaggertype:"string" example:"2025-01-31"`
}

type TaskResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Priority  string    `json:"priority"`
	ProjectID int64     `json:"project_id"`
	DueDate   *string   `json:"due_date" example:"2025-01-31"`
	CreatedAt time.Time `json:"created_at"`
}

type TaskDetailResponse struct {
	TaskResponse
	Subtasks []SubtaskResponse `json:"subtasks"`
}

func TaskFromDomain(t dom.Task) TaskResponse {
	var due *string
	if t.DueDate != nil {
		s := t.DueDate.Format(dom.DateLayout)
		due = &s
	}
	return TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		ProjectID: t.ProjectID,
		DueDate:   due,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

func TasksFromDomain(list []dom.Task) []TaskResponse {
	out := make([]TaskResponse, len(list))
	for i := range list {
		out[i] = TaskFromDomain(list[i])
	}
	return out
}
