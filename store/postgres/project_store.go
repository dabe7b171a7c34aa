package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/jrsteele09/tenant-auth-server/projects"
)

const projectColumns = `id, tenant_id, name, description, created_at, updated_at`

// ProjectStore implements projects.Repo using PostgreSQL.
type ProjectStore struct {
	pool *pgxpool.Pool
}

var _ projects.Repo = (*ProjectStore)(nil)

func NewProjectStore(pool *pgxpool.Pool) *ProjectStore {
	return &ProjectStore{pool: pool}
}

func (s *ProjectStore) Create(ctx context.Context, p *projects.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.pool.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, p.ID, p.TenantID, p.Name, p.Description, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", mapPostgresError(err))
	}
	return nil
}

func (s *ProjectStore) Get(ctx context.Context, tenantID, id string) (*projects.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", mapPostgresError(err))
	}
	return p, nil
}

func (s *ProjectStore) List(ctx context.Context, tenantID string) ([]*projects.Project, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE tenant_id = $1
		ORDER BY created_at DESC
	`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	list := make([]*projects.Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}
	return list, nil
}

func (s *ProjectStore) Update(ctx context.Context, tenantID, id string, update projects.Update) (*projects.Project, error) {
	p, err := scanProject(s.pool.QueryRow(ctx, `
		UPDATE projects SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			updated_at = now()
		WHERE tenant_id = $1 AND id = $2
		RETURNING `+projectColumns,
		tenantID,
		id,
		update.Name,
		update.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to update project: %w", mapPostgresError(err))
	}
	return p, nil
}

func (s *ProjectStore) Delete(ctx context.Context, tenantID, id string) error {
	result, err := s.pool.Exec(ctx, `DELETE FROM projects WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func scanProject(row pgx.Row) (*projects.Project, error) {
	var p projects.Project
	if err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
