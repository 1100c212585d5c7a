package postgres

import (
	"context"
	"errors"
	"time"

	domainSub "github.com/dialhaven/dialhaven/internal/domain/subscription"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/postgres"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type subscriptionRepository struct {
	db  postgres.IClient
	log *logger.Logger
}

func NewSubscriptionRepository(db postgres.IClient, log *logger.Logger) domainSub.Repository {
	return &subscriptionRepository{db: db, log: log}
}

const periodColumns = `
	id, user_id, plan_id, period_status, period_start, period_end,
	trial_ends_at, minutes_used, sms_used, stripe_subscription_id,
	next_billing_date, cancelled_at,
	tenant_id, status, created_at, updated_at, created_by, updated_by
`

func (r *subscriptionRepository) Create(ctx context.Context, p *domainSub.Period) error {
	if err := p.Validate(); err != nil {
		return err
	}

	_, err := r.db.Querier(ctx).Exec(ctx, `
		INSERT INTO subscription_periods (`+periodColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`, p.ID, p.UserID, p.PlanID, p.PeriodStatus, p.PeriodStart, p.PeriodEnd,
		p.TrialEndsAt, p.MinutesUsed, p.SMSUsed, p.StripeSubscriptionID,
		p.NextBillingDate, p.CancelledAt,
		p.TenantID, p.Status, p.CreatedAt, p.UpdatedAt, p.CreatedBy, p.UpdatedBy)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create subscription period").
			WithReportableDetails(map[string]interface{}{
				"period_id": p.ID,
				"user_id":   p.UserID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return nil
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*domainSub.Period, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+periodColumns+`
		FROM subscription_periods
		WHERE id = $1
	`, id)

	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("subscription period not found").
				WithReportableDetails(map[string]interface{}{
					"period_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch subscription period").
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *subscriptionRepository) GetActiveByUser(ctx context.Context, userID string) (*domainSub.Period, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+periodColumns+`
		FROM subscription_periods
		WHERE user_id = $1 AND period_status IN ($2, $3)
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, types.SubscriptionPeriodStatusActive, types.SubscriptionPeriodStatusTrialing)

	p, err := scanPeriod(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("no active subscription period").
				WithReportableDetails(map[string]interface{}{
					"user_id": userID,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch active subscription period").
			Mark(ierr.ErrDatabase)
	}
	return p, nil
}

func (r *subscriptionRepository) Update(ctx context.Context, p *domainSub.Period) error {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE subscription_periods
		SET plan_id = $2,
			period_status = $3,
			period_start = $4,
			period_end = $5,
			trial_ends_at = $6,
			minutes_used = $7,
			sms_used = $8,
			stripe_subscription_id = $9,
			next_billing_date = $10,
			cancelled_at = $11,
			updated_at = $12,
			updated_by = $13
		WHERE id = $1
	`, p.ID, p.PlanID, p.PeriodStatus, p.PeriodStart, p.PeriodEnd,
		p.TrialEndsAt, p.MinutesUsed, p.SMSUsed, p.StripeSubscriptionID,
		p.NextBillingDate, p.CancelledAt, time.Now().UTC(), types.GetUserID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update subscription period").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("subscription period not found").
			WithReportableDetails(map[string]interface{}{
				"period_id": p.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

// IncrementUsage applies the counter deltas in a single UPDATE so concurrent
// recordings never lose an increment.
func (r *subscriptionRepository) IncrementUsage(ctx context.Context, periodID string, minutes decimal.Decimal, sms int) error {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE subscription_periods
		SET minutes_used = minutes_used + $2,
			sms_used = sms_used + $3,
			updated_at = $4
		WHERE id = $1 AND period_status IN ($5, $6)
	`, periodID, minutes, sms, time.Now().UTC(),
		types.SubscriptionPeriodStatusActive, types.SubscriptionPeriodStatusTrialing)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to increment usage counters").
			WithReportableDetails(map[string]interface{}{
				"period_id": periodID,
			}).
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("subscription period not found or not usable").
			WithReportableDetails(map[string]interface{}{
				"period_id": periodID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *subscriptionRepository) ListElapsed(ctx context.Context, asOf time.Time) ([]*domainSub.Period, error) {
	return r.list(ctx, `
		SELECT `+periodColumns+`
		FROM subscription_periods
		WHERE period_status = $1 AND period_end <= $2
		ORDER BY period_end ASC
	`, types.SubscriptionPeriodStatusActive, asOf)
}

func (r *subscriptionRepository) ListActive(ctx context.Context) ([]*domainSub.Period, error) {
	return r.list(ctx, `
		SELECT `+periodColumns+`
		FROM subscription_periods
		WHERE period_status = $1
	`, types.SubscriptionPeriodStatusActive)
}

// Rollover re-checks the elapsed predicate inside the UPDATE so two
// reconcilers racing on the same period cannot advance it twice.
func (r *subscriptionRepository) Rollover(ctx context.Context, periodID string, asOf time.Time, newStart, newEnd time.Time) (bool, error) {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE subscription_periods
		SET period_start = $2,
			period_end = $3,
			minutes_used = 0,
			sms_used = 0,
			next_billing_date = $3,
			updated_at = $4
		WHERE id = $1 AND period_status = $5 AND period_end <= $6
	`, periodID, newStart, newEnd, time.Now().UTC(),
		types.SubscriptionPeriodStatusActive, asOf)
	if err != nil {
		return false, ierr.WithError(err).
			WithHint("Failed to roll over subscription period").
			WithReportableDetails(map[string]interface{}{
				"period_id": periodID,
			}).
			Mark(ierr.ErrDatabase)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *subscriptionRepository) list(ctx context.Context, query string, args ...any) ([]*domainSub.Period, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list subscription periods").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var periods []*domainSub.Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return periods, nil
}

func scanPeriod(row pgx.Row) (*domainSub.Period, error) {
	var p domainSub.Period
	err := row.Scan(
		&p.ID, &p.UserID, &p.PlanID, &p.PeriodStatus, &p.PeriodStart, &p.PeriodEnd,
		&p.TrialEndsAt, &p.MinutesUsed, &p.SMSUsed, &p.StripeSubscriptionID,
		&p.NextBillingDate, &p.CancelledAt,
		&p.TenantID, &p.Status, &p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
