package service

import (
	"context"
	"time"

	"taskhub/internal/apperr"
	dom "taskhub/internal/domain"
	"taskhub/internal/query"
	"taskhub/internal/repo"
)

// TaskInput carries the fields of a new task. Blank Status and Priority take
// their defaults.
type TaskInput struct {
	Title     string
	ProjectID int64
	Status    string
	Priority  string
	DueDate   *time.Time
}

// TaskPatch is a partial update; nil fields are left unchanged. DueDate is
// applied only when SetDueDate is true, and a nil DueDate then clears it.
type TaskPatch struct {
	Title      *string
	Status     *string
	Priority   *string
	ProjectID  *int64
	SetDueDate bool
	DueDate    *time.Time
}

type TaskService struct {
	tasks    repo.TaskRepo
	projects repo.ProjectRepo
	subtasks repo.SubtaskRepo
}

func NewTaskService(tasks repo.TaskRepo, projects repo.ProjectRepo, subtasks repo.SubtaskRepo) *TaskService {
	return &TaskService{tasks: tasks, projects: projects, subtasks: subtasks}
}

// List returns one page of the caller's tasks. A project_id filter must name
// one of the caller's projects.
func (s *TaskService) List(ctx context.Context, ownerID int64, req query.TaskList) ([]dom.Task, query.Meta, error) {
	if pid := req.Filter.ProjectID; pid != nil {
		if _, err := s.projects.GetOwned(ctx, ownerID, *pid); err != nil {
			return nil, query.Meta{}, notFound(err, "project")
		}
	}
	return s.tasks.List(ctx, ownerID, req)
}

// Get returns the task and its subtasks in id order.
func (s *TaskService) Get(ctx context.Context, ownerID, id int64) (dom.Task, []dom.Subtask, error) {
	t, err := s.tasks.GetOwned(ctx, ownerID, id)
	if err != nil {
		return dom.Task{}, nil, notFound(err, "task")
	}
	subs, err := s.subtasks.List(ctx, ownerID, query.SubtaskFilter{TaskID: &t.ID})
	if err != nil {
		return dom.Task{}, nil, err
	}
	return t, subs, nil
}

func (s *TaskService) Create(ctx context.Context, ownerID int64, in TaskInput) (dom.Task, error) {
	title, err := requireTitle(in.Title)
	if err != nil {
		return dom.Task{}, err
	}
	if in.ProjectID <= 0 {
		return dom.Task{}, apperr.InvalidField("project_id", "project_id is required")
	}
	status, err := statusOr(in.Status, dom.StatusTodo)
	if err != nil {
		return dom.Task{}, err
	}
	priority, err := priorityOr(in.Priority, dom.PriorityNormal)
	if err != nil {
		return dom.Task{}, err
	}
	if _, err := s.projects.GetOwned(ctx, ownerID, in.ProjectID); err != nil {
		return dom.Task{}, notFound(err, "project")
	}
	return s.tasks.Create(ctx, dom.Task{
		ProjectID: in.ProjectID,
		Title:     title,
		Status:    status,
		Priority:  priority,
		DueDate:   in.DueDate,
	})
}

// Update validates every field of patch before touching the store. Moving a
// task to a project the caller does not own is reported as not found.
func (s *TaskService) Update(ctx context.Context, ownerID, id int64, patch TaskPatch) (dom.Task, error) {
	t, err := s.tasks.GetOwned(ctx, ownerID, id)
	if err != nil {
		return dom.Task{}, notFound(err, "task")
	}
	if patch.Title != nil {
		if t.Title, err = requireTitle(*patch.Title); err != nil {
			return dom.Task{}, err
		}
	}
	if patch.Status != nil {
		if t.Status, err = parseStatus(*patch.Status); err != nil {
			return dom.Task{}, err
		}
	}
	if patch.Priority != nil {
		if t.Priority, err = parsePriority(*patch.Priority); err != nil {
			return dom.Task{}, err
		}
	}
	if patch.SetDueDate {
		t.DueDate = patch.DueDate
	}
	if patch.ProjectID != nil {
		if *patch.ProjectID <= 0 {
			return dom.Task{}, apperr.InvalidField("project_id", "project_id cannot be empty")
		}
		if _, err := s.projects.GetOwned(ctx, ownerID, *patch.ProjectID); err != nil {
			return dom.Task{}, notFound(err, "project")
		}
		t.ProjectID = *patch.ProjectID
	}

	t, err = s.tasks.Update(ctx, ownerID, t)
	if err != nil {
		return dom.Task{}, notFound(err, "task")
	}
	return t, nil
}

// Delete removes the task's subtasks and then the task.
func (s *TaskService) Delete(ctx context.Context, ownerID, id int64) error {
	return notFound(s.tasks.Delete(ctx, ownerID, id), "task")
}
