// Package query turns list-endpoint query strings into validated filter,
// sort and page values and renders them as SQL.
//
// Parsing happens once at the HTTP boundary; everything downstream works
// with typed values. SQL fragments assume the table aliases used by the
// repositories: p = projects, t = tasks, s = subtasks.
package query

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskhub/internal/apperr"
	"taskhub/internal/domain"

	sq "github.com/Masterminds/squirrel"
)

// PSQL builds statements with Postgres $n placeholders.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	ParamStatus    = "status"
	ParamProjectID = "project_id"
	ParamTaskID    = "task_id"
	ParamDueBefore = "due_before"
	ParamText      = "q"
	ParamSort      = "sort"
	ParamPage      = "page"
	ParamPerPage   = "per_page"
)

// TaskFilter restricts the task collection. A nil or empty field applies no
// restriction.
type TaskFilter struct {
	Status    *domain.Status
	ProjectID *int64
	DueBefore *time.Time
	Text      string
}

// ParseTaskFilter validates the filter parameters of GET /tasks. It checks
// format only; whether ProjectID belongs to the caller is decided by the
// service.
func ParseTaskFilter(v url.Values) (TaskFilter, error) {
	var f TaskFilter

	st, err := parseStatus(v)
	if err != nil {
		return TaskFilter{}, err
	}
	f.Status = st

	pid, err := parseID(v, ParamProjectID)
	if err != nil {
		return TaskFilter{}, err
	}
	f.ProjectID = pid

	if raw := v.Get(ParamDueBefore); raw != "" {
		d, err := domain.ParseDate(strings.TrimSpace(raw))
		if err != nil {
			return TaskFilter{}, apperr.InvalidField(ParamDueBefore, "due_before must be YYYY-MM-DD")
		}
		f.DueBefore = &d
	}

	text, err := parseText(v)
	if err != nil {
		return TaskFilter{}, err
	}
	f.Text = text
	return f, nil
}

// Where renders the filter, always scoped to tasks whose project is owned by
// ownerID. Predicates are AND-ed.
func (f TaskFilter) Where(ownerID int64) sq.And {
	where := sq.And{sq.Eq{"p.owner_id": ownerID}}
	if f.Status != nil {
		where = append(where, sq.Eq{"t.status": string(*f.Status)})
	}
	if f.ProjectID != nil {
		where = append(where, sq.Eq{"t.project_id": *f.ProjectID})
	}
	if f.DueBefore != nil {
		where = append(where,
			sq.NotEq{"t.due_date": nil},
			sq.LtOrEq{"t.due_date": *f.DueBefore},
		)
	}
	if f.Text != "" {
		where = append(where, sq.ILike{"t.title": containsPattern(f.Text)})
	}
	return where
}

// ProjectFilter restricts the project collection by free text over title and
// description.
type ProjectFilter struct {
	Text string
}

func ParseProjectFilter(v url.Values) (ProjectFilter, error) {
	text, err := parseText(v)
	if err != nil {
		return ProjectFilter{}, err
	}
	return ProjectFilter{Text: text}, nil
}

func (f ProjectFilter) Where(ownerID int64) sq.And {
	where := sq.And{sq.Eq{"p.owner_id": ownerID}}
	if f.Text != "" {
		pattern := containsPattern(f.Text)
		where = append(where, sq.Or{
			sq.ILike{"p.title": pattern},
			sq.ILike{"p.description": pattern},
		})
	}
	return where
}

// SubtaskFilter restricts the subtask collection.
type SubtaskFilter struct {
	TaskID *int64
	Status *domain.Status
}

func ParseSubtaskFilter(v url.Values) (SubtaskFilter, error) {
	tid, err := parseID(v, ParamTaskID)
	if err != nil {
		return SubtaskFilter{}, err
	}
	st, err := parseStatus(v)
	if err != nil {
		return SubtaskFilter{}, err
	}
	return SubtaskFilter{TaskID: tid, Status: st}, nil
}

func (f SubtaskFilter) Where(ownerID int64) sq.And {
	where := sq.And{sq.Eq{"p.owner_id": ownerID}}
	if f.TaskID != nil {
		where = append(where, sq.Eq{"s.task_id": *f.TaskID})
	}
	if f.Status != nil {
		where = append(where, sq.Eq{"s.status": string(*f.Status)})
	}
	return where
}

func parseStatus(v url.Values) (*domain.Status, error) {
	raw := v.Get(ParamStatus)
	if raw == "" {
		return nil, nil
	}
	st, ok := domain.ParseStatus(raw)
	if !ok {
		return nil, apperr.InvalidField(ParamStatus, "status must be one of "+domain.StatusChoices())
	}
	return &st, nil
}

func parseText(v url.Values) (string, error) {
	raw := strings.TrimSpace(v.Get(ParamText))
	if !domain.StorableText(raw) {
		return "", apperr.InvalidField(ParamText, "q must be valid UTF-8 without NUL characters")
	}
	return raw, nil
}

func parseID(v url.Values, name string) (*int64, error) {
	raw := strings.TrimSpace(v.Get(name))
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, apperr.InvalidField(name, name+" must be a positive integer")
	}
	return &id, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s literally anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
