package postgres

import (
	"context"
	"fmt"
	"strings"

	domainEvents "github.com/dialhaven/dialhaven/internal/domain/events"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/postgres"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/shopspring/decimal"
)

type usageEventRepository struct {
	db  postgres.IClient
	log *logger.Logger
}

func NewUsageEventRepository(db postgres.IClient, log *logger.Logger) domainEvents.Repository {
	return &usageEventRepository{db: db, log: log}
}

func (r *usageEventRepository) Create(ctx context.Context, e *domainEvents.UsageEvent) error {
	if err := e.Validate(); err != nil {
		return err
	}

	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO usage_events (
			id, user_id, period_id, type, quantity, timestamp, metadata,
			tenant_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, e.ID, e.UserID, e.PeriodID, e.Type, e.Quantity, e.Timestamp, e.Metadata,
		e.TenantID, e.CreatedAt)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to append usage event").
			WithReportableDetails(map[string]interface{}{
				"event_id": e.ID,
				"user_id":  e.UserID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *usageEventRepository) List(ctx context.Context, filter *types.UsageEventFilter) ([]*domainEvents.UsageEvent, error) {
	if filter == nil {
		filter = types.NewUsageEventFilter()
	}

	where, args := buildEventWhere(filter)
	query := fmt.Sprintf(`
		SELECT id, user_id, period_id, type, quantity, timestamp, metadata,
			tenant_id, created_at
		FROM usage_events
		%s
		ORDER BY timestamp DESC
		LIMIT %d OFFSET %d
	`, where, filter.GetLimit(), filter.GetOffset())

	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list usage events").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var events []*domainEvents.UsageEvent
	for rows.Next() {
		var e domainEvents.UsageEvent
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.PeriodID, &e.Type, &e.Quantity, &e.Timestamp,
			&e.Metadata, &e.TenantID, &e.CreatedAt,
		); err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return events, nil
}

func (r *usageEventRepository) Count(ctx context.Context, filter *types.UsageEventFilter) (int, error) {
	if filter == nil {
		filter = types.NewUsageEventFilter()
	}

	where, args := buildEventWhere(filter)
	var count int
	err := r.db.Querier(ctx).QueryRow(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM usage_events %s`, where), args...,
	).Scan(&count)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count usage events").
			Mark(ierr.ErrDatabase)
	}
	return count, nil
}

func (r *usageEventRepository) SumQuantityByPeriod(ctx context.Context, periodID string, usageType types.UsageType) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(quantity), 0)
		FROM usage_events
		WHERE period_id = $1 AND type = $2
	`, periodID, usageType).Scan(&sum)
	if err != nil {
		return decimal.Zero, ierr.WithError(err).
			WithHint("Failed to sum usage events").
			WithReportableDetails(map[string]interface{}{
				"period_id": periodID,
				"type":      usageType,
			}).
			Mark(ierr.ErrDatabase)
	}
	return sum, nil
}

func buildEventWhere(filter *types.UsageEventFilter) (string, []any) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.PeriodID != "" {
		add("period_id = $%d", filter.PeriodID)
	}
	if filter.Type != "" {
		add("type = $%d", filter.Type)
	}
	if filter.StartTime != nil {
		add("timestamp >= $%d", *filter.StartTime)
	}
	if filter.EndTime != nil {
		add("timestamp <= $%d", *filter.EndTime)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}
