package repo

import (
	"context"

	dom "taskhub/internal/domain"
	"taskhub/internal/query"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepo provides owner-scoped project persistence. Lookups of a
// project owned by someone else behave exactly like lookups of a missing
// one and return pgx.ErrNoRows.
type ProjectRepo interface {
	Create(ctx context.Context, p dom.Project) (dom.Project, error)
	GetOwned(ctx context.Context, ownerID, id int64) (dom.Project, error)
	List(ctx context.Context, ownerID int64, req query.ProjectList) ([]dom.Project, query.Meta, error)
	Update(ctx context.Context, p dom.Project) (dom.Project, error)
	Delete(ctx context.Context, ownerID, id int64) error
}

type PGProjectRepo struct {
	db *pgxpool.Pool
}

func NewPGProjectRepo(db *pgxpool.Pool) *PGProjectRepo {
	return &PGProjectRepo{db: db}
}

var projectColumns = []string{"p.id", "p.owner_id", "p.title", "p.description", "p.created_at"}

const projectReturning = `RETURNING id, owner_id, title, description, created_at`

func scanProject(row pgx.Row) (dom.Project, error) {
	var p dom.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.CreatedAt)
	return p, err
}

func collectProject(row pgx.CollectableRow) (dom.Project, error) { return scanProject(row) }

func (r *PGProjectRepo) Create(ctx context.Context, p dom.Project) (dom.Project, error) {
	stmt := `
		INSERT INTO projects (owner_id, title, description)
		VALUES ($1, $2, $3)
		` + projectReturning
	return scanProject(r.db.QueryRow(ctx, stmt, p.OwnerID, p.Title, p.Description))
}

func (r *PGProjectRepo) GetOwned(ctx context.Context, ownerID, id int64) (dom.Project, error) {
	sql, args, err := query.PSQL.Select(projectColumns...).
		From("projects p").
		Where("p.id = ? AND p.owner_id = ?", id, ownerID).
		ToSql()
	if err != nil {
		return dom.Project{}, err
	}
	return scanProject(r.db.QueryRow(ctx, sql, args...))
}

func (r *PGProjectRepo) List(ctx context.Context, ownerID int64, req query.ProjectList) ([]dom.Project, query.Meta, error) {
	where := req.Filter.Where(ownerID)
	list := query.PSQL.Select(projectColumns...).
		From("projects p").
		Where(where).
		OrderBy(req.OrderBy()...)
	count := query.PSQL.Select("COUNT(DISTINCT p.id)").
		From("projects p").
		Where(where)
	return query.Paginate(ctx, r.db, list, count, req.Page, collectProject)
}

func (r *PGProjectRepo) Update(ctx context.Context, p dom.Project) (dom.Project, error) {
	stmt := `
		UPDATE projects SET title = $3, description = $4
		WHERE id = $1 AND owner_id = $2
		` + projectReturning
	return scanProject(r.db.QueryRow(ctx, stmt, p.ID, p.OwnerID, p.Title, p.Description))
}

// Delete removes the project's subtasks, then its tasks, then the project,
// each as its own statement. It returns pgx.ErrNoRows when the caller owns
// no such project.
func (r *PGProjectRepo) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := r.db.Exec(ctx, `
		DELETE FROM subtasks s
		USING tasks t, projects p
		WHERE s.task_id = t.id AND t.project_id = p.id AND p.id = $1 AND p.owner_id = $2`,
		id, ownerID); err != nil {
		return err
	}
	if _, err := r.db.Exec(ctx, `
		DELETE FROM tasks t
		USING projects p
		WHERE t.project_id = p.id AND p.id = $1 AND p.owner_id = $2`,
		id, ownerID); err != nil {
		return err
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
