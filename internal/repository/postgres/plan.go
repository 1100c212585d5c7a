package postgres

import (
	"context"
	"errors"

	domainPlan "github.com/dialhaven/dialhaven/internal/domain/plan"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/postgres"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/jackc/pgx/v5"
)

type planRepository struct {
	db  postgres.IClient
	log *logger.Logger
}

func NewPlanRepository(db postgres.IClient, log *logger.Logger) domainPlan.Repository {
	return &planRepository{db: db, log: log}
}

const planColumns = `
	id, name, display_name, description, price, currency,
	included_minutes, included_sms, included_numbers,
	price_per_extra_minute, price_per_extra_sms, sort_order,
	tenant_id, status, created_at, updated_at, created_by, updated_by
`

func (r *planRepository) Get(ctx context.Context, id string) (*domainPlan.Plan, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE id = $1 AND status = $2
	`, id, types.StatusPublished)

	p, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("plan not found").
				WithHint("The requested plan does not exist").
				WithReportableDetails(map[string]interface{}{
					"plan_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch plan").
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *planRepository) List(ctx context.Context) ([]*domainPlan.Plan, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT `+planColumns+`
		FROM plans
		WHERE status = $1
		ORDER BY sort_order ASC
	`, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list plans").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var plans []*domainPlan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to scan plan row").
				Mark(ierr.ErrDatabase)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return plans, nil
}

func scanPlan(row pgx.Row) (*domainPlan.Plan, error) {
	var p domainPlan.Plan
	err := row.Scan(
		&p.ID, &p.Name, &p.DisplayName, &p.Description, &p.Price, &p.Currency,
		&p.IncludedMinutes, &p.IncludedSMS, &p.IncludedNumbers,
		&p.PricePerExtraMinute, &p.PricePerExtraSMS, &p.SortOrder,
		&p.TenantID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
