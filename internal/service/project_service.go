package service

import (
	"context"
	"strings"

	dom "taskhub/internal/domain"
	"taskhub/internal/query"
	"taskhub/internal/repo"
)

type ProjectService struct {
	repo repo.ProjectRepo
}

func NewProjectService(r repo.ProjectRepo) *ProjectService {
	return &ProjectService{repo: r}
}

func (s *ProjectService) Create(ctx context.Context, ownerID int64, title, desc string) (dom.Project, error) {
	title, err := requireTitle(title)
	if err != nil {
		return dom.Project{}, err
	}
	desc, err = cleanText("description", strings.TrimSpace(desc))
	if err != nil {
		return dom.Project{}, err
	}
	return s.repo.Create(ctx, dom.Project{
		OwnerID:     ownerID,
		Title:       title,
		Description: desc,
	})
}

func (s *ProjectService) Get(ctx context.Context, ownerID, id int64) (dom.Project, error) {
	p, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return dom.Project{}, notFound(err, "project")
	}
	return p, nil
}

func (s *ProjectService) List(ctx context.Context, ownerID int64, req query.ProjectList) ([]dom.Project, query.Meta, error) {
	return s.repo.List(ctx, ownerID, req)
}

// Update applies the non-nil fields.
func (s *ProjectService) Update(ctx context.Context, ownerID, id int64, title, desc *string) (dom.Project, error) {
	p, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return dom.Project{}, notFound(err, "project")
	}
	if title != nil {
		if p.Title, err = requireTitle(*title); err != nil {
			return dom.Project{}, err
		}
	}
	if desc != nil {
		if p.Description, err = cleanText("description", strings.TrimSpace(*desc)); err != nil {
			return dom.Project{}, err
		}
	}
	p, err = s.repo.Update(ctx, p)
	if err != nil {
		return dom.Project{}, notFound(err, "project")
	}
	return p, nil
}

// Delete removes the project together with its tasks and their subtasks.
func (s *ProjectService) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.repo.GetOwned(ctx, ownerID, id); err != nil {
		return notFound(err, "project")
	}
	return notFound(s.repo.Delete(ctx, ownerID, id), "project")
}
