package dto

import (
	"time"

	dom "taskhub/internal/domain"
)

type CreateSubtaskRequest struct {
	Title  string `json:"title" binding:"required,max=300"`
	TaskID int64  `json:"task_id" binding:"required"`
	Status string `json:"status"`
}

type UpdateSubtaskRequest struct {
	Title  *string `json:"title" binding:"omitempty,max=300"`
	Status *string `json:"status"`
	TaskID *int64  `json:"task_id"`
}

type SubtaskResponse struct {
	ID        int64     `json:"id"`
	TaskID    int64     `json:"task_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func SubtaskFromDomain(s dom.Subtask) SubtaskResponse {
	return SubtaskResponse{
		ID:        s.ID,
		TaskID:    s.TaskID,
		Title:     s.Title,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt.UTC(),
	}
}

func SubtasksFromDomain(list []dom.Subtask) []SubtaskResponse {
	out := make([]SubtaskResponse, len(list))
	for i := range list {
		out[i] = SubtaskFromDomain(list[i])
	}
	return out
}
