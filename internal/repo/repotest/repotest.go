// Package repotest provides in-memory repositories for tests. They follow
// the ownership rules of the Postgres repositories: rows of other accounts
// behave as missing and are reported as pgx.ErrNoRows.
package repotest

import (
	"context"
	"sort"
	"strings"
	"time"

	dom "taskhub/internal/domain"
	"taskhub/internal/query"
	"taskhub/internal/repo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store holds every table. It is not safe for concurrent use.
type Store struct {
	nextID   int64
	users    map[int64]dom.User
	projects map[int64]dom.Project
	tasks    map[int64]dom.Task
	subtasks map[int64]dom.Subtask

	// LastTaskList is the request most recently passed to Tasks().List.
	LastTaskList *query.TaskList
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:    map[int64]dom.User{},
		projects: map[int64]dom.Project{},
		tasks:    map[int64]dom.Task{},
		subtasks: map[int64]dom.Subtask{},
	}
}

func (m *Store) id() int64 {
	m.nextID++
	return m.nextID
}

// AddProject seeds a project.
func (m *Store) AddProject(ownerID int64, title string) dom.Project {
	p := dom.Project{ID: m.id(), OwnerID: ownerID, Title: title, CreatedAt: time.Now()}
	m.projects[p.ID] = p
	return p
}

func (m *Store) AddTask(projectID int64, title string) dom.Task {
	t := dom.Task{ID: m.id(), ProjectID: projectID, Title: title, Status: dom.StatusTodo, Priority: dom.PriorityNormal, CreatedAt: time.Now()}
	m.tasks[t.ID] = t
	return t
}

func (m *Store) AddSubtask(taskID int64, title string) dom.Subtask {
	s := dom.Subtask{ID: m.id(), TaskID: taskID, Title: title, Status: dom.StatusTodo, CreatedAt: time.Now()}
	m.subtasks[s.ID] = s
	return s
}

// Project, Task and Subtask look a row up regardless of owner.
func (m *Store) Project(id int64) (dom.Project, bool) {
	p, ok := m.projects[id]
	return p, ok
}

func (m *Store) Task(id int64) (dom.Task, bool) {
	t, ok := m.tasks[id]
	return t, ok
}

func (m *Store) Subtask(id int64) (dom.Subtask, bool) {
	s, ok := m.subtasks[id]
	return s, ok
}

func (m *Store) taskOwner(taskID int64) int64 {
	return m.projects[m.tasks[taskID].ProjectID].OwnerID
}

// users

type memUsers struct{ *Store }

func (m *Store) Users() repo.UserRepo { return memUsers{m} }

func (r memUsers) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r memUsers) GetByID(_ context.Context, id int64) (dom.User, error) {
	u, ok := r.users[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r memUsers) Create(_ context.Context, username, email, hash string) (dom.User, error) {
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return dom.User{}, &pgconn.PgError{Code: "23505"}
		}
	}
	u := dom.User{ID: r.id(), Username: username, Email: email, PasswordHash: hash, CreatedAt: time.Now()}
	r.users[u.ID] = u
	return u, nil
}

// projects

type memProjects struct{ *Store }

func (m *Store) Projects() repo.ProjectRepo { return memProjects{m} }

func (r memProjects) Create(_ context.Context, p dom.Project) (dom.Project, error) {
	p.ID = r.id()
	p.CreatedAt = time.Now()
	r.projects[p.ID] = p
	return p, nil
}

func (r memProjects) GetOwned(_ context.Context, ownerID, id int64) (dom.Project, error) {
	p, ok := r.projects[id]
	if !ok || p.OwnerID != ownerID {
		return dom.Project{}, pgx.ErrNoRows
	}
	return p, nil
}

// List applies the text filter and page of req; the order is always newest
// id first.
func (r memProjects) List(_ context.Context, ownerID int64, req query.ProjectList) ([]dom.Project, query.Meta, error) {
	text := strings.ToLower(req.Filter.Text)
	var all []dom.Project
	for _, p := range r.projects {
		if p.OwnerID != ownerID {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(p.Title+"\n"+p.Description), text) {
			continue
		}
		all = append(all, p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return pageOf(all, req.Page), query.NewMeta(req.Page, int64(len(all))), nil
}

func (r memProjects) Update(_ context.Context, p dom.Project) (dom.Project, error) {
	if cur, ok := r.projects[p.ID]; !ok || cur.OwnerID != p.OwnerID {
		return dom.Project{}, pgx.ErrNoRows
	}
	r.projects[p.ID] = p
	return p, nil
}

func (r memProjects) Delete(_ context.Context, ownerID, id int64) error {
	p, ok := r.projects[id]
	if !ok || p.OwnerID != ownerID {
		return pgx.ErrNoRows
	}
	for tid, t := range r.tasks {
		if t.ProjectID == id {
			for sid, s := range r.subtasks {
				if s.TaskID == tid {
					delete(r.subtasks, sid)
				}
			}
			delete(r.tasks, tid)
		}
	}
	delete(r.projects, id)
	return nil
}

// tasks

type memTasks struct{ *Store }

func (m *Store) Tasks() repo.TaskRepo { return memTasks{m} }

func (r memTasks) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	t.ID = r.id()
	t.CreatedAt = time.Now()
	r.tasks[t.ID] = t
	return t, nil
}

func (r memTasks) GetOwned(_ context.Context, ownerID, id int64) (dom.Task, error) {
	t, ok := r.tasks[id]
	if !ok || r.taskOwner(id) != ownerID {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

// List applies the filter and page of req; the order is always newest id
// first.
func (r memTasks) List(_ context.Context, ownerID int64, req query.TaskList) ([]dom.Task, query.Meta, error) {
	r.LastTaskList = &req
	f := req.Filter
	var all []dom.Task
	for id, t := range r.tasks {
		if r.taskOwner(id) != ownerID {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
			continue
		}
		if f.DueBefore != nil && (t.DueDate == nil || t.DueDate.After(*f.DueBefore)) {
			continue
		}
		if f.Text != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Text)) {
			continue
		}
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	return pageOf(all, req.Page), query.NewMeta(req.Page, int64(len(all))), nil
}

// pageOf returns the rows of page p, never nil.
func pageOf[T any](all []T, p query.Page) []T {
	out := []T{}
	if off := p.Offset(); off < uint64(len(all)) {
		end := off + uint64(p.Size)
		if end > uint64(len(all)) {
			end = uint64(len(all))
		}
		out = append(out, all[off:end]...)
	}
	return out
}

func (r memTasks) Update(_ context.Context, ownerID int64, t dom.Task) (dom.Task, error) {
	if _, ok := r.tasks[t.ID]; !ok || r.taskOwner(t.ID) != ownerID {
		return dom.Task{}, pgx.ErrNoRows
	}
	r.tasks[t.ID] = t
	return t, nil
}

func (r memTasks) Delete(_ context.Context, ownerID, id int64) error {
	if _, ok := r.tasks[id]; !ok || r.taskOwner(id) != ownerID {
		return pgx.ErrNoRows
	}
	for sid, s := range r.subtasks {
		if s.TaskID == id {
			delete(r.subtasks, sid)
		}
	}
	delete(r.tasks, id)
	return nil
}

// subtasks

type memSubtasks struct{ *Store }

func (m *Store) Subtasks() repo.SubtaskRepo { return memSubtasks{m} }

func (r memSubtasks) Create(_ context.Context, s dom.Subtask) (dom.Subtask, error) {
	s.ID = r.id()
	s.CreatedAt = time.Now()
	r.subtasks[s.ID] = s
	return s, nil
}

func (r memSubtasks) GetOwned(_ context.Context, ownerID, id int64) (dom.Subtask, error) {
	s, ok := r.subtasks[id]
	if !ok || r.taskOwner(s.TaskID) != ownerID {
		return dom.Subtask{}, pgx.ErrNoRows
	}
	return s, nil
}

func (r memSubtasks) List(_ context.Context, ownerID int64, f query.SubtaskFilter) ([]dom.Subtask, error) {
	out := []dom.Subtask{}
	for _, s := range r.subtasks {
		if r.taskOwner(s.TaskID) != ownerID {
			continue
		}
		if f.TaskID != nil && s.TaskID != *f.TaskID {
			continue
		}
		if f.Status != nil && s.Status != *f.Status {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memSubtasks) Update(_ context.Context, ownerID int64, s dom.Subtask) (dom.Subtask, error) {
	cur, ok := r.subtasks[s.ID]
	if !ok || r.taskOwner(cur.TaskID) != ownerID {
		return dom.Subtask{}, pgx.ErrNoRows
	}
	r.subtasks[s.ID] = s
	return s, nil
}

func (r memSubtasks) Delete(_ context.Context, ownerID, id int64) error {
	s, ok := r.subtasks[id]
	if !ok || r.taskOwner(s.TaskID) != ownerID {
		return pgx.ErrNoRows
	}
	delete(r.subtasks, id)
	return nil
}
