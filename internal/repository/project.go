package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riskpilot-ai/riskpilot/internal/domain"
)

type ProjectRepository struct {
	db dbtx
}

func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: pool}
}

func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO projects
			(id, name, description, start_date, deadline, parent_company, business_partner, budget, current_progress, actual_spend, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, nullableString(p.Description), p.StartDate, p.Deadline,
		nullableString(p.ParentCompany), nullableString(p.BusinessPartner),
		p.Budget, p.CurrentProgress, p.ActualSpend, p.CreatedAt,
	)
	return err
}

func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, name, description, start_date, deadline, parent_company, business_partner, budget, current_progress, actual_spend, created_at
		 FROM projects WHERE id = $1`,
		id,
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) List(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, description, start_date, deadline, parent_company, business_partner, budget, current_progress, actual_spend, created_at
		 FROM projects ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// UpdateActualSpend records the ingestion-time spend aggregate on the
// project row. This is the side-channel write of the ingestion pipeline.
func (r *ProjectRepository) UpdateActualSpend(ctx context.Context, id string, actualSpend float64) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE projects SET actual_spend = $1 WHERE id = $2`,
		actualSpend, id,
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrProjectNotFound
		}
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// isInvalidUUID reports whether postgres rejected a malformed uuid literal
// (SQLSTATE 22P02). Lookups by a malformed id behave like lookups of a
// missing row.
func isInvalidUUID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var description, parentCompany, businessPartner *string
	err := row.Scan(
		&p.ID, &p.Name, &description, &p.StartDate, &p.Deadline,
		&parentCompany, &businessPartner,
		&p.Budget, &p.CurrentProgress, &p.ActualSpend, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if description != nil {
		p.Description = *description
	}
	if parentCompany != nil {
		p.ParentCompany = *parentCompany
	}
	if businessPartner != nil {
		p.BusinessPartner = *businessPartner
	}
	return &p, nil
}
