package service

import (
	"context"

	"taskhub/internal/apperr"
	dom "taskhub/internal/domain"
	"taskhub/internal/query"
	"taskhub/internal/repo"
)

type SubtaskPatch struct {
	Title  *string
	Status *string
	TaskID *int64
}

type SubtaskService struct {
	subtasks repo.SubtaskRepo
	tasks    repo.TaskRepo
}

func NewSubtaskService(subtasks repo.SubtaskRepo, tasks repo.TaskRepo) *SubtaskService {
	return &SubtaskService{subtasks: subtasks, tasks: tasks}
}

// List returns the caller's subtasks in id order. A task_id filter must name
// one of the caller's tasks.
func (s *SubtaskService) List(ctx context.Context, ownerID int64, f query.SubtaskFilter) ([]dom.Subtask, error) {
	if f.TaskID != nil {
		if _, err := s.tasks.GetOwned(ctx, ownerID, *f.TaskID); err != nil {
			return nil, notFound(err, "task")
		}
	}
	return s.subtasks.List(ctx, ownerID, f)
}

func (s *SubtaskService) Create(ctx context.Context, ownerID, taskID int64, title, status string) (dom.Subtask, error) {
	title, err := requireTitle(title)
	if err != nil {
		return dom.Subtask{}, err
	}
	if taskID <= 0 {
		return dom.Subtask{}, apperr.InvalidField("task_id", "task_id is required")
	}
	st, err := statusOr(status, dom.StatusTodo)
	if err != nil {
		return dom.Subtask{}, err
	}
	if _, err := s.tasks.GetOwned(ctx, ownerID, taskID); err != nil {
		return dom.Subtask{}, notFound(err, "task")
	}
	return s.subtasks.Create(ctx, dom.Subtask{TaskID: taskID, Title: title, Status: st})
}

func (s *SubtaskService) Update(ctx context.Context, ownerID, id int64, patch SubtaskPatch) (dom.Subtask, error) {
	sub, err := s.subtasks.GetOwned(ctx, ownerID, id)
	if err != nil {
		return dom.Subtask{}, notFound(err, "subtask")
	}
	if patch.Title != nil {
		if sub.Title, err = requireTitle(*patch.Title); err != nil {
			return dom.Subtask{}, err
		}
	}
	if patch.Status != nil {
		if sub.Status, err = parseStatus(*patch.Status); err != nil {
			return dom.Subtask{}, err
		}
	}
	if patch.TaskID != nil {
		if *patch.TaskID <= 0 {
			return dom.Subtask{}, apperr.InvalidField("task_id", "task_id cannot be empty")
		}
		if _, err := s.tasks.GetOwned(ctx, ownerID, *patch.TaskID); err != nil {
			return dom.Subtask{}, notFound(err, "task")
		}
		sub.TaskID = *patch.TaskID
	}
	sub, err = s.subtasks.Update(ctx, ownerID, sub)
	if err != nil {
		return dom.Subtask{}, notFound(err, "subtask")
	}
	return sub, nil
}

func (s *SubtaskService) Delete(ctx context.Context, ownerID, id int64) error {
	return notFound(s.subtasks.Delete(ctx, ownerID, id), "subtask")
}
