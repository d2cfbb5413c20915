package repo

import (
	"context"

	dom "taskhub/internal/domain"
	"taskhub/internal/query"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SubtaskRepo provides subtask persistence, owner-scoped through
// subtask -> task -> project.
type SubtaskRepo interface {
	Create(ctx context.Context, s dom.Subtask) (dom.Subtask, error)
	GetOwned(ctx context.Context, ownerID, id int64) (dom.Subtask, error)
	List(ctx context.Context, ownerID int64, f query.SubtaskFilter) ([]dom.Subtask, error)
	Update(ctx context.Context, ownerID int64, s dom.Subtask) (dom.Subtask, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type PGSubtaskRepo struct {
	db *pgxpool.Pool
}

func NewPGSubtaskRepo(db *pgxpool.Pool) *PGSubtaskRepo {
	return &PGSubtaskRepo{db: db}
}

var subtaskColumns = []string{"s.id", "s.task_id", "s.title", "s.status", "s.created_at"}

func scanSubtask(row pgx.Row) (dom.Subtask, error) {
	var (
		s      dom.Subtask
		status string
	)
	err := row.Scan(&s.ID, &s.TaskID, &s.Title, &status, &s.CreatedAt)
	s.Status = dom.Status(status)
	return s, err
}

func collectSubtask(row pgx.CollectableRow) (dom.Subtask, error) { return scanSubtask(row) }

// selectSubtasks joins up to the owning project so callers can filter on
// p.owner_id.
func selectSubtasks() sq.SelectBuilder {
	return query.PSQL.Select(subtaskColumns...).
		From("subtasks s").
		Join("tasks t ON t.id = s.task_id").
		Join("projects p ON p.id = t.project_id")
}

func (r *PGSubtaskRepo) Create(ctx context.Context, s dom.Subtask) (dom.Subtask, error) {
	stmt := `
		INSERT INTO subtasks (task_id, title, status)
		VALUES ($1, $2, $3)
		RETURNING id, task_id, title, status, created_at`
	return scanSubtask(r.db.QueryRow(ctx, stmt, s.TaskID, s.Title, string(s.Status)))
}

func (r *PGSubtaskRepo) GetOwned(ctx context.Context, ownerID, id int64) (dom.Subtask, error) {
	sql, args, err := selectSubtasks().Where("s.id = ? AND p.owner_id = ?", id, ownerID).ToSql()
	if err != nil {
		return dom.Subtask{}, err
	}
	return scanSubtask(r.db.QueryRow(ctx, sql, args...))
}

// List returns every matching subtask in id order; it is not paginated.
func (r *PGSubtaskRepo) List(ctx context.Context, ownerID int64, f query.SubtaskFilter) ([]dom.Subtask, error) {
	sql, args, err := selectSubtasks().Where(f.Where(ownerID)).OrderBy("s.id ASC").ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	list, err := pgx.CollectRows(rows, collectSubtask)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []dom.Subtask{}
	}
	return list, nil
}

func (r *PGSubtaskRepo) Update(ctx context.Context, ownerID int64, s dom.Subtask) (dom.Subtask, error) {
	stmt := `
		UPDATE subtasks s
		SET title = $3, status = $4, task_id = $5
		FROM tasks t, projects p
		WHERE s.id = $1 AND s.task_id = t.id AND t.project_id = p.id AND p.owner_id = $2
		RETURNING s.id, s.task_id, s.title, s.status, s.created_at`
	return scanSubtask(r.db.QueryRow(ctx, stmt, s.ID, ownerID, s.Title, string(s.Status), s.TaskID))
}

func (r *PGSubtaskRepo) Delete(ctx context.Context, ownerID, id int64) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM subtasks s
		USING tasks t, projects p
		WHERE s.id = $1 AND s.task_id = t.id AND t.project_id = p.id AND p.owner_id = $2`,
		id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
