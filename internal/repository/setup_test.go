package repository

import (
	"context"
	"testing"
	"time"

	"discount-engine/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupTestDB starts a PostgreSQL container, applies the schema, and returns a
// connection pool. The container and pool are cleaned up with the test.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return pool
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(50) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			price DECIMAL(10, 2) NOT NULL,
			category VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id VARCHAR(50),
			discount_code VARCHAR(64),
			discount_amount DECIMAL(10, 2) NOT NULL DEFAULT 0,
			subtotal DECIMAL(10, 2) NOT NULL,
			total DECIMAL(10, 2) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			unit_price DECIMAL(10, 2) NOT NULL
		);

		CREATE TABLE IF NOT EXISTS discount_codes (
			code VARCHAR(64) PRIMARY KEY,
			discount_type VARCHAR(20) NOT NULL,
			discount_value DECIMAL(10, 2) NOT NULL,
			min_purchase_amount DECIMAL(10, 2),
			scope VARCHAR(20) NOT NULL,
			product_id VARCHAR(50),
			limitation_type VARCHAR(20) NOT NULL,
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			usage_limit INTEGER,
			usage_limit_per_user INTEGER,
			times_used INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS discount_redemptions (
			code VARCHAR(64) NOT NULL REFERENCES discount_codes(code),
			user_id VARCHAR(50) NOT NULL,
			times_used INTEGER NOT NULL DEFAULT 0,
			last_redeemed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (code, user_id)
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
	`

	_, err := pool.Exec(ctx, schema)
	require.NoError(t, err)
}

// seedProducts inserts test product data.
func seedProducts(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id       string
		name     string
		price    float64
		category string
	}{
		{"P001", "Espresso Beans", 30.00, "Coffee"},
		{"P002", "Grinder", 40.00, "Equipment"},
		{"P003", "Filter Papers", 5.00, "Accessories"},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			"INSERT INTO products (id, name, price, category) VALUES ($1, $2, $3, $4)",
			p.id, p.name, p.price, p.category,
		)
		require.NoError(t, err)
	}
}

// seedDiscountCode inserts a discount code row.
func seedDiscountCode(t *testing.T, pool *pgxpool.Pool, dc model.DiscountCode) {
	t.Helper()

	ctx := context.Background()

	_, err := pool.Exec(ctx, `
		INSERT INTO discount_codes (
			code, discount_type, discount_value, min_purchase_amount,
			scope, product_id, limitation_type, start_date, end_date,
			usage_limit, usage_limit_per_user, times_used, is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW())
	`,
		dc.Code, dc.DiscountType, dc.DiscountValue, dc.MinPurchaseAmount,
		dc.Scope, dc.ProductID, dc.LimitationType, dc.StartDate, dc.EndDate,
		dc.UsageLimit, dc.UsageLimitPerUser, dc.TimesUsed, dc.IsActive,
	)
	require.NoError(t, err)
}
