package dto

import (
	"time"

	dom "taskhub/internal/domain"
)

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}

type ProjectResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func ProjectFromDomain(p dom.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
	}
}

func ProjectsFromDomain(list []dom.Project) []ProjectResponse {
	out := make([]ProjectResponse, len(list))
	for i := range list {
		out[i] = ProjectFromDomain(list[i])
	}
	return out
}
