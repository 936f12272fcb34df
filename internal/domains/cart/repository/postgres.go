package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"shopcart-backend/internal/domains/cart/model"
	couponModel "shopcart-backend/internal/domains/coupon/model"
	"shopcart-backend/pkg/database"
)

// PostgresRepository implements CartRepository backed by PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance.
func NewPostgresRepository(db *pgxpool.Pool) CartRepository {
	return &PostgresRepository{db: db}
}

// -------------------------------------------------------------------
// CART LIFECYCLE
// -------------------------------------------------------------------

// GetByUserID loads the full cart aggregate. Returns (nil, nil) when
// the user has no cart yet; the service creates one lazily.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		SELECT id, user_id, created_at, updated_at
		FROM carts
		WHERE user_id = $1
	`

	var cart model.Cart
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find cart by user: %w", err)
	}

	if cart.Items, err = r.loadItems(ctx, cart.ID); err != nil {
		return nil, err
	}
	if cart.AppliedCoupons, err = r.loadAppliedCoupons(ctx, cart.ID); err != nil {
		return nil, err
	}

	return &cart, nil
}

func (r *PostgresRepository) Create(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	query := `
		INSERT INTO carts (user_id, created_at, updated_at)
		VALUES ($1, NOW(), NOW())
		RETURNING id, user_id, created_at, updated_at
	`

	var cart model.Cart
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&cart.ID,
		&cart.UserID,
		&cart.CreatedAt,
		&cart.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	cart.Items = []model.CartItem{}
	cart.AppliedCoupons = []model.AppliedCoupon{}

	return &cart, nil
}

func (r *PostgresRepository) Touch(ctx context.Context, cartID uuid.UUID) error {
	_, err := r.db.Exec(ctx, "UPDATE carts SET updated_at = NOW() WHERE id = $1", cartID)
	if err != nil {
		return fmt.Errorf("touch cart: %w", err)
	}
	return nil
}

// Items come back in insertion order so responses are stable.
func (r *PostgresRepository) loadItems(ctx context.Context, cartID uuid.UUID) ([]model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, product_name, price, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		err := rows.Scan(
			&item.ID,
			&item.CartID,
			&item.ProductID,
			&item.ProductName,
			&item.Price,
			&item.Quantity,
			&item.CreatedAt,
			&item.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// Applied coupons come back in application order; the pricing
// breakdown depends on it.
func (r *PostgresRepository) loadAppliedCoupons(ctx context.Context, cartID uuid.UUID) ([]model.AppliedCoupon, error) {
	query := `
		SELECT
			ac.id, ac.cart_id, ac.coupon_id, ac.is_auto_applied, ac.applied_at,
			c.id, c.code, c.description,
			c.discount_type, c.discount_value, c.max_discount_amount,
			c.is_auto_applied, c.start_date, c.expiry_date,
			c.minimum_cart_items, c.minimum_total_price,
			c.max_total_uses, c.current_total_uses, c.max_uses_per_user,
			c.applicable_product_ids, c.is_active,
			c.created_at, c.updated_at, c.deleted_at
		FROM applied_coupons ac
		INNER JOIN coupons c ON c.id = ac.coupon_id
		WHERE ac.cart_id = $1
		ORDER BY ac.applied_at ASC
	`

	rows, err := r.db.Query(ctx, query, cartID)
	if err != nil {
		return nil, fmt.Errorf("load applied coupons: %w", err)
	}
	defer rows.Close()

	applied := []model.AppliedCoupon{}
	for rows.Next() {
		var ac model.AppliedCoupon
		var c couponModel.Coupon
		err := rows.Scan(
			&ac.ID,
			&ac.CartID,
			&ac.CouponID,
			&ac.IsAutoApplied,
			&ac.AppliedAt,
			&c.ID,
			&c.Code,
			&c.Description,
			&c.DiscountType,
			&c.DiscountValue,
			&c.MaxDiscountAmount,
			&c.IsAutoApplied,
			&c.StartDate,
			&c.ExpiryDate,
			&c.MinimumCartItems,
			&c.MinimumTotalPrice,
			&c.MaxTotalUses,
			&c.CurrentTotalUses,
			&c.MaxUsesPerUser,
			pq.Array(&c.ApplicableProductIDs),
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.DeletedAt,
		)
		if err != nil {
			return nil, err
		}
		ac.Coupon = c
		applied = append(applied, ac)
	}

	return applied, rows.Err()
}

// -------------------------------------------------------------------
// ITEMS
// -------------------------------------------------------------------

func (r *PostgresRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error) {
	query := `
		SELECT id, cart_id, product_id, product_name, price, quantity, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1 AND product_id = $2
	`

	var item model.CartItem
	err := r.db.QueryRow(ctx, query, cartID, productID).Scan(
		&item.ID,
		&item.CartID,
		&item.ProductID,
		&item.ProductName,
		&item.Price,
		&item.Quantity,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}

	return &item, nil
}

func (r *PostgresRepository) AddItem(ctx context.Context, item *model.CartItem) error {
	query := `
		INSERT INTO cart_items (cart_id, product_id, product_name, price, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		item.CartID,
		item.ProductID,
		item.ProductName,
		item.Price,
		item.Quantity,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("add cart item: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, itemID, quantity)
	if err != nil {
		return fmt.Errorf("update cart item quantity: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// RefreshItem bumps a merged line's quantity and re-snapshots the
// price at the current catalog value.
func (r *PostgresRepository) RefreshItem(ctx context.Context, itemID uuid.UUID, quantity int, price decimal.Decimal) error {
	query := `
		UPDATE cart_items
		SET quantity = $2, price = $3, updated_at = NOW()
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, itemID, quantity, price)
	if err != nil {
		return fmt.Errorf("refresh cart item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

func (r *PostgresRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	result, err := r.db.Exec(ctx,
		"DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2",
		cartID, productID,
	)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// ClearItems empties the cart and detaches every coupon. Usage ledger
// rows are kept.
func (r *PostgresRepository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM cart_items WHERE cart_id = $1", cartID); err != nil {
			return fmt.Errorf("clear cart items: %w", err)
		}
		if _, err := tx.Exec(ctx, "DELETE FROM applied_coupons WHERE cart_id = $1", cartID); err != nil {
			return fmt.Errorf("clear applied coupons: %w", err)
		}
		if _, err := tx.Exec(ctx, "UPDATE carts SET updated_at = NOW() WHERE id = $1", cartID); err != nil {
			return fmt.Errorf("touch cart: %w", err)
		}
		return nil
	})
}

// -------------------------------------------------------------------
// COUPONS
// -------------------------------------------------------------------

// ApplyCoupon attaches a coupon, records the usage and consumes one
// global use in a single transaction. The counter update is
// conditional, so two racing carts cannot both take the last use: the
// loser's update matches zero rows and the whole apply rolls back.
func (r *PostgresRepository) ApplyCoupon(ctx context.Context, cartID, couponID, userID uuid.UUID) error {
	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		insertApplied := `
			INSERT INTO applied_coupons (cart_id, coupon_id, is_auto_applied, applied_at)
			VALUES ($1, $2, false, NOW())
		`
		if _, err := tx.Exec(ctx, insertApplied, cartID, couponID); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return model.ErrCouponAlreadyApplied
			}
			return fmt.Errorf("attach coupon: %w", err)
		}

		incrementUses := `
			UPDATE coupons
			SET current_total_uses = current_total_uses + 1, updated_at = NOW()
			WHERE id = $1
			  AND (max_total_uses IS NULL OR current_total_uses < max_total_uses)
		`
		result, err := tx.Exec(ctx, incrementUses, couponID)
		if err != nil {
			return fmt.Errorf("increment coupon uses: %w", err)
		}
		if result.RowsAffected() == 0 {
			return couponModel.ErrCouponUsageLimitReached
		}

		insertUsage := `
			INSERT INTO coupon_usages (coupon_id, user_id, used_at)
			VALUES ($1, $2, NOW())
		`
		if _, err := tx.Exec(ctx, insertUsage, couponID, userID); err != nil {
			return fmt.Errorf("record coupon usage: %w", err)
		}

		if _, err := tx.Exec(ctx, "UPDATE carts SET updated_at = NOW() WHERE id = $1", cartID); err != nil {
			return fmt.Errorf("touch cart: %w", err)
		}

		return nil
	})
}

// AttachAutoCoupon links an auto-applied coupon without recording
// usage or consuming a use. Already-attached coupons are a no-op.
func (r *PostgresRepository) AttachAutoCoupon(ctx context.Context, cartID, couponID uuid.UUID) error {
	query := `
		INSERT INTO applied_coupons (cart_id, coupon_id, is_auto_applied, applied_at)
		VALUES ($1, $2, true, NOW())
		ON CONFLICT (cart_id, coupon_id) DO NOTHING
	`

	if _, err := r.db.Exec(ctx, query, cartID, couponID); err != nil {
		return fmt.Errorf("attach auto coupon: %w", err)
	}

	return nil
}

// RemoveAppliedCoupon detaches a coupon. Removing a coupon that is not
// attached succeeds; no usage is refunded either way.
func (r *PostgresRepository) RemoveAppliedCoupon(ctx context.Context, cartID, couponID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		"DELETE FROM applied_coupons WHERE cart_id = $1 AND coupon_id = $2",
		cartID, couponID,
	)
	if err != nil {
		return fmt.Errorf("remove applied coupon: %w", err)
	}

	return nil
}

// -------------------------------------------------------------------
// MAINTENANCE
// -------------------------------------------------------------------

// DeleteStale removes carts untouched since olderThan. Items and
// applied coupons go with them via ON DELETE CASCADE.
func (r *PostgresRepository) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := r.db.Exec(ctx, "DELETE FROM carts WHERE updated_at < $1", olderThan)
	if err != nil {
		return 0, fmt.Errorf("delete stale carts: %w", err)
	}

	return result.RowsAffected(), nil
}
