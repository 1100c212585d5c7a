package postgres

import (
	"context"
	"errors"
	"time"

	domainUser "github.com/dialhaven/dialhaven/internal/domain/user"
	ierr "github.com/dialhaven/dialhaven/internal/errors"
	"github.com/dialhaven/dialhaven/internal/logger"
	"github.com/dialhaven/dialhaven/internal/postgres"
	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db  postgres.IClient
	log *logger.Logger
}

func NewUserRepository(db postgres.IClient, log *logger.Logger) domainUser.Repository {
	return &userRepository{db: db, log: log}
}

const userColumns = `
	id, email, trial_status, trial_started_at, trial_ends_at,
	subscription_tier, stripe_customer_id,
	tenant_id, status, created_at, updated_at, created_by, updated_by
`

func (r *userRepository) Get(ctx context.Context, id string) (*domainUser.User, error) {
	row := r.db.Querier(ctx).QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND status = $2
	`, id, types.StatusPublished)

	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.NewError("user not found").
				WithReportableDetails(map[string]interface{}{
					"user_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch user").
			Mark(ierr.ErrDatabase)
	}
	return u, nil
}

func (r *userRepository) Update(ctx context.Context, u *domainUser.User) error {
	tag, err := r.db.Querier(ctx).Exec(ctx, `
		UPDATE users
		SET email = $2,
			trial_status = $3,
			trial_started_at = $4,
			trial_ends_at = $5,
			subscription_tier = $6,
			stripe_customer_id = $7,
			updated_at = $8,
			updated_by = $9
		WHERE id = $1
	`, u.ID, u.Email, u.TrialStatus, u.TrialStartedAt, u.TrialEndsAt,
		u.SubscriptionTier, u.StripeCustomerID, time.Now().UTC(), types.GetUserID(ctx))
	if err != nil {
		return ierr.WithError(err).
			WithHint("Failed to update user").
			Mark(ierr.ErrDatabase)
	}
	if tag.RowsAffected() == 0 {
		return ierr.NewError("user not found").
			WithReportableDetails(map[string]interface{}{
				"user_id": u.ID,
			}).
			Mark(ierr.ErrNotFound)
	}
	return nil
}

func (r *userRepository) ListExpiredTrials(ctx context.Context, asOf time.Time) ([]*domainUser.User, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE trial_status = $1 AND trial_ends_at <= $2 AND status = $3
	`, types.TrialStatusActive, asOf, types.StatusPublished)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list expired trials").
			Mark(ierr.ErrDatabase)
	}
	defer rows.Close()

	var users []*domainUser.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, ierr.WithError(err).Mark(ierr.ErrDatabase)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*domainUser.User, error) {
	var u domainUser.User
	err := row.Scan(
		&u.ID, &u.Email, &u.TrialStatus, &u.TrialStartedAt, &u.TrialEndsAt,
		&u.SubscriptionTier, &u.StripeCustomerID,
		&u.TenantID, &u.Status, &u.CreatedAt, &u.UpdatedAt, &u.CreatedBy, &u.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
