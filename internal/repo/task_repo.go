package repo

import (
	"context"

	dom "taskhub/internal/domain"
	"taskhub/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TaskRepo provides task persistence. Ownership is resolved through the
// task's project; a task of another account is reported as pgx.ErrNoRows.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	GetOwned(ctx context.Context, ownerID, id int64) (dom.Task, error)
	List(ctx context.Context, ownerID int64, req query.TaskList) ([]dom.Task, query.Meta, error)
	Update(ctx context.Context, ownerID int64, t dom.Task) (dom.Task, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

var taskColumns = []string{
	"t.id", "t.project_id", "t.title", "t.status", "t.priority", "t.due_date", "t.created_at",
}

const taskReturning = `RETURNING id, project_id, title, status, priority, due_date, created_at`

func scanTask(row pgx.Row) (dom.Task, error) {
	var (
		t                dom.Task
		status, priority string
	)
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &status, &priority, &t.DueDate, &t.CreatedAt)
	t.Status = dom.Status(status)
	t.Priority = dom.Priority(priority)
	return t, err
}

func collectTask(row pgx.CollectableRow) (dom.Task, error) { return scanTask(row) }

// Create inserts t. The caller has already checked that t.ProjectID belongs
// to the requesting account.
func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	stmt := `
		INSERT INTO tasks (project_id, title, status, priority, due_date)
		VALUES ($1, $2, $3, $4, $5)
		` + taskReturning
	return scanTask(r.db.QueryRow(ctx, stmt,
		t.ProjectID, t.Title, string(t.Status), string(t.Priority), t.DueDate,
	))
}

func (r *PGTaskRepo) GetOwned(ctx context.Context, ownerID, id int64) (dom.Task, error) {
	sql, args, err := query.PSQL.Select(taskColumns...).
		From("tasks t").
		Join("projects p ON p.id = t.project_id").
		Where("t.id = ? AND p.owner_id = ?", id, ownerID).
		ToSql()
	if err != nil {
		return dom.Task{}, err
	}
	return scanTask(r.db.QueryRow(ctx, sql, args...))
}

// List returns one page of the caller's tasks matching req.
func (r *PGTaskRepo) List(ctx context.Context, ownerID int64, req query.TaskList) ([]dom.Task, query.Meta, error) {
	where := req.Filter.Where(ownerID)
	list := query.PSQL.Select(taskColumns...).
		From("tasks t").
		Join("projects p ON p.id = t.project_id").
		Where(where).
		OrderBy(req.OrderBy()...)
	count := query.PSQL.Select("COUNT(DISTINCT t.id)").
		From("tasks t").
		Join("projects p ON p.id = t.project_id").
		Where(where)
	return query.Paginate(ctx, r.db, list, count, req.Page, collectTask)
}

// Update overwrites the mutable fields of t. The row is matched through its
// current project so a task of another account is never touched.
func (r *PGTaskRepo) Update(ctx context.Context, ownerID int64, t dom.Task) (dom.Task, error) {
	stmt := `
		UPDATE tasks t
		SET title = $3, status = $4, priority = $5, due_date = $6, project_id = $7
		FROM projects p
		WHERE t.id = $1 AND t.project_id = p.id AND p.owner_id = $2
		RETURNING t.id, t.project_id, t.title, t.status, t.priority, t.due_date, t.created_at`
	return scanTask(r.db.QueryRow(ctx, stmt,
		t.ID, ownerID, t.Title, string(t.Status), string(t.Priority), t.DueDate, t.ProjectID,
	))
}

// Delete removes the task's subtasks and then the task.
func (r *PGTaskRepo) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM subtasks s
		USING tasks t, projects p
		WHERE s.task_id = t.id AND t.project_id = p.id AND t.id = $1 AND p.owner_id = $2`,
		id, ownerID); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `
		DELETE FROM tasks t
		USING projects p
		WHERE t.project_id = p.id AND t.id = $1 AND p.owner_id = $2`,
		id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
