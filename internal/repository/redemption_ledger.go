package repository

import (
	"context"
	"fmt"

	"discount-engine/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// redemptionLedger implements RedemptionLedger using PostgreSQL.
//
// All counter mutation for a code happens inside a single transaction that
// first locks the code row, so concurrent commits for the same code serialise
// while commits for different codes do not contend. Usage limits are
// re-validated by conditional updates at commit time: the window between
// evaluation and commit means a concurrent checkout may have consumed the
// last redemption, and that case must surface as a conflict rather than an
// over-redemption.
type redemptionLedger struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewRedemptionLedger creates a new PostgreSQL-backed redemption ledger.
func NewRedemptionLedger(pool *pgxpool.Pool, logger zerolog.Logger) RedemptionLedger {
	return &redemptionLedger{
		pool:   pool,
		logger: logger.With().Str("repository", "redemption-ledger").Logger(),
	}
}

// CommitRedemption records one redemption of the code, atomically with
// respect to concurrent commits. The global counter and the per-user record
// move as a single unit: if either limit check fails the transaction rolls
// back and no counter changes.
func (r *redemptionLedger) CommitRedemption(ctx context.Context, code string, userID *string) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && rbErr != pgx.ErrTxClosed {
				r.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Lock the code row and read its limitation settings. The lock scopes
	// the commit to this one code's counters.
	var limitationType model.LimitationType
	var usageLimit, perUserLimit *int

	lockQuery := `
		SELECT limitation_type, usage_limit, usage_limit_per_user
		FROM discount_codes
		WHERE code = $1
		FOR UPDATE
	`
	err = tx.QueryRow(ctx, lockQuery, code).Scan(&limitationType, &usageLimit, &perUserLimit)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Warn().Str("code", code).Msg("commit for unknown discount code")
			return model.ErrDiscountNotFound
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to lock discount code")
		return fmt.Errorf("failed to lock discount code: %w", err)
	}

	// The limit guard only applies under the usage_limit strategy; the
	// running total is maintained for every code.
	capped := limitationType == model.LimitationUsageLimit

	if capped && usageLimit != nil {
		tag, execErr := tx.Exec(ctx, `
			UPDATE discount_codes
			SET times_used = times_used + 1
			WHERE code = $1 AND times_used < $2
		`, code, *usageLimit)
		if execErr != nil {
			err = fmt.Errorf("failed to increment usage counter: %w", execErr)
			r.logger.Error().Err(execErr).Str("code", code).Msg("failed to increment usage counter")
			return err
		}
		if tag.RowsAffected() == 0 {
			r.logger.Info().Str("code", code).Msg("global usage limit reached at commit time")
			err = model.ErrRedemptionConflict
			return err
		}
	} else {
		if _, execErr := tx.Exec(ctx, `
			UPDATE discount_codes
			SET times_used = times_used + 1
			WHERE code = $1
		`, code); execErr != nil {
			err = fmt.Errorf("failed to increment usage counter: %w", execErr)
			r.logger.Error().Err(execErr).Str("code", code).Msg("failed to increment usage counter")
			return err
		}
	}

	// Per-user bookkeeping exists only for capped codes with an identified
	// user; guests are exempt from the per-user check.
	if capped && perUserLimit != nil && userID != nil {
		tag, execErr := tx.Exec(ctx, `
			INSERT INTO discount_redemptions (code, user_id, times_used, last_redeemed_at)
			VALUES ($1, $2, 1, now())
			ON CONFLICT (code, user_id) DO UPDATE
			SET times_used = discount_redemptions.times_used + 1,
			    last_redeemed_at = now()
			WHERE discount_redemptions.times_used < $3
		`, code, *userID, *perUserLimit)
		if execErr != nil {
			err = fmt.Errorf("failed to record per-user redemption: %w", execErr)
			r.logger.Error().
				Err(execErr).
				Str("code", code).
				Str("user_id", *userID).
				Msg("failed to record per-user redemption")
			return err
		}
		if tag.RowsAffected() == 0 {
			r.logger.Info().
				Str("code", code).
				Str("user_id", *userID).
				Msg("per-user usage limit reached at commit time")
			err = model.ErrRedemptionConflict
			return err
		}
		// A fresh insert with a cap of zero should also conflict, but the
		// upsert above inserts unconditionally. Guard the degenerate case.
		if *perUserLimit <= 0 {
			err = model.ErrRedemptionConflict
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		r.logger.Error().Err(err).Str("code", code).Msg("failed to commit redemption")
		return fmt.Errorf("failed to commit redemption: %w", err)
	}

	r.logger.Debug().Str("code", code).Msg("redemption committed")

	return nil
}
