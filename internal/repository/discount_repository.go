package repository

import (
	"context"
	"fmt"

	"discount-engine/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// discountRepository implements DiscountRepository using PostgreSQL.
type discountRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewDiscountRepository creates a new PostgreSQL-backed discount repository.
func NewDiscountRepository(pool *pgxpool.Pool, logger zerolog.Logger) DiscountRepository {
	return &discountRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "discount").Logger(),
	}
}

// GetByCode retrieves a discount code. Returns nil when absent.
func (r *discountRepository) GetByCode(ctx context.Context, code string) (*model.DiscountCode, error) {
	query := `
		SELECT code, discount_type, discount_value, min_purchase_amount,
		       scope, product_id, limitation_type, start_date, end_date,
		       usage_limit, usage_limit_per_user, times_used, is_active, created_at
		FROM discount_codes
		WHERE code = $1
	`

	var dc model.DiscountCode
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&dc.Code,
		&dc.DiscountType,
		&dc.DiscountValue,
		&dc.MinPurchaseAmount,
		&dc.Scope,
		&dc.ProductID,
		&dc.LimitationType,
		&dc.StartDate,
		&dc.EndDate,
		&dc.UsageLimit,
		&dc.UsageLimitPerUser,
		&dc.TimesUsed,
		&dc.IsActive,
		&dc.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("code", code).Msg("discount code not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("code", code).Msg("failed to query discount code")
		return nil, fmt.Errorf("failed to query discount code: %w", err)
	}

	return &dc, nil
}

// GetUserRedemptionCount returns how many times the user has redeemed the code.
func (r *discountRepository) GetUserRedemptionCount(ctx context.Context, code, userID string) (int, error) {
	query := `
		SELECT times_used
		FROM discount_redemptions
		WHERE code = $1 AND user_id = $2
	`

	var count int
	err := r.pool.QueryRow(ctx, query, code, userID).Scan(&count)
	if err != nil {
		if err == pgx.ErrNoRows {
			return 0, nil
		}
		r.logger.Error().
			Err(err).
			Str("code", code).
			Str("user_id", userID).
			Msg("failed to query redemption count")
		return 0, fmt.Errorf("failed to query redemption count: %w", err)
	}

	return count, nil
}

// CreateCodes inserts discount codes, skipping codes that already exist.
func (r *discountRepository) CreateCodes(ctx context.Context, codes []model.DiscountCode) (int, error) {
	if len(codes) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO discount_codes (
			code, discount_type, discount_value, min_purchase_amount,
			scope, product_id, limitation_type, start_date, end_date,
			usage_limit, usage_limit_per_user, times_used, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 0, $12, $13)
		ON CONFLICT (code) DO NOTHING
	`

	batch := &pgx.Batch{}
	for _, dc := range codes {
		batch.Queue(query,
			dc.Code, dc.DiscountType, dc.DiscountValue, dc.MinPurchaseAmount,
			dc.Scope, dc.ProductID, dc.LimitationType, dc.StartDate, dc.EndDate,
			dc.UsageLimit, dc.UsageLimitPerUser, dc.IsActive, dc.CreatedAt,
		)
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for i := 0; i < len(codes); i++ {
		tag, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("code", codes[i].Code).
				Msg("failed to insert discount code")
			return inserted, fmt.Errorf("failed to insert discount code: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	r.logger.Debug().
		Int("requested", len(codes)).
		Int("inserted", inserted).
		Msg("discount codes inserted")

	return inserted, nil
}
