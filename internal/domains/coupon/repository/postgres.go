package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"shopcart-backend/internal/domains/coupon/model"
)

const couponColumns = `
	id, code, description,
	discount_type, discount_value, max_discount_amount,
	is_auto_applied, start_date, expiry_date,
	minimum_cart_items, minimum_total_price,
	max_total_uses, current_total_uses, max_uses_per_user,
	applicable_product_ids, is_active,
	created_at, updated_at, deleted_at
`

// PostgresRepository implements CouponRepository backed by PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance.
func NewPostgresRepository(db *pgxpool.Pool) CouponRepository {
	return &PostgresRepository{db: db}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(
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
	return &c, nil
}

// -------------------------------------------------------------------
// READ OPERATIONS
// -------------------------------------------------------------------

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM coupons
		WHERE id = $1 AND deleted_at IS NULL
	`, couponColumns)

	coupon, err := scanCoupon(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon by id: %w", err)
	}

	return coupon, nil
}

// FindByCode looks a coupon up case-insensitively. No active/time filter:
// the validator distinguishes "not found" from "inactive" and "expired".
func (r *PostgresRepository) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM coupons
		WHERE LOWER(code) = LOWER($1) AND deleted_at IS NULL
	`, couponColumns)

	coupon, err := scanCoupon(r.db.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon by code: %w", err)
	}

	return coupon, nil
}

func (r *PostgresRepository) List(ctx context.Context, filter *model.ListCouponsFilter) ([]*model.Coupon, int, error) {
	offset := (filter.Page - 1) * filter.Limit

	whereClauses := []string{"deleted_at IS NULL"}
	args := []interface{}{}
	argIndex := 1

	if filter.IsActive != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_active = $%d", argIndex))
		args = append(args, *filter.IsActive)
		argIndex++
	}

	if filter.IsAutoApplied != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("is_auto_applied = $%d", argIndex))
		args = append(args, *filter.IsAutoApplied)
		argIndex++
	}

	if filter.Code != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("LOWER(code) LIKE $%d", argIndex))
		args = append(args, "%"+strings.ToLower(filter.Code)+"%")
		argIndex++
	}

	whereSQL := "WHERE " + strings.Join(whereClauses, " AND ")

	query := fmt.Sprintf(`
		SELECT %s
		FROM coupons
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, couponColumns, whereSQL, argIndex, argIndex+1)

	rows, err := r.db.Query(ctx, query, append(args, filter.Limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*model.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, err
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM coupons %s", whereSQL)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	return coupons, total, nil
}

// ListAutoApplied returns every active auto-applied coupon currently
// inside its validity window.
func (r *PostgresRepository) ListAutoApplied(ctx context.Context) ([]*model.Coupon, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM coupons
		WHERE is_auto_applied = true
		  AND is_active = true
		  AND deleted_at IS NULL
		  AND (start_date IS NULL OR start_date <= NOW())
		  AND (expiry_date IS NULL OR expiry_date >= NOW())
		ORDER BY created_at ASC
	`, couponColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list auto-applied coupons: %w", err)
	}
	defer rows.Close()

	var coupons []*model.Coupon
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, err
		}
		coupons = append(coupons, coupon)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return coupons, nil
}

func (r *PostgresRepository) CountUsageForUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM coupon_usages
		WHERE coupon_id = $1 AND user_id = $2
	`

	var count int
	if err := r.db.QueryRow(ctx, query, couponID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count coupon usage for user: %w", err)
	}

	return count, nil
}

// -------------------------------------------------------------------
// WRITE OPERATIONS
// -------------------------------------------------------------------

func (r *PostgresRepository) Create(ctx context.Context, coupon *model.Coupon) error {
	coupon.Code = strings.ToUpper(coupon.Code)

	query := `
		INSERT INTO coupons (
			code, description,
			discount_type, discount_value, max_discount_amount,
			is_auto_applied, start_date, expiry_date,
			minimum_cart_items, minimum_total_price,
			max_total_uses, current_total_uses, max_uses_per_user,
			applicable_product_ids, is_active,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, 0, $12, $13, $14, NOW(), NOW()
		)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		coupon.Code,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MaxDiscountAmount,
		coupon.IsAutoApplied,
		coupon.StartDate,
		coupon.ExpiryDate,
		coupon.MinimumCartItems,
		coupon.MinimumTotalPrice,
		coupon.MaxTotalUses,
		coupon.MaxUsesPerUser,
		pq.Array(coupon.ApplicableProductIDs),
		coupon.IsActive,
	).Scan(&coupon.ID, &coupon.CreatedAt, &coupon.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrCouponCodeExists
		}
		return fmt.Errorf("create coupon: %w", err)
	}

	coupon.CurrentTotalUses = 0

	return nil
}

// Update rewrites the coupon's rule fields. current_total_uses is never
// written here; it only moves through the conditional increment.
func (r *PostgresRepository) Update(ctx context.Context, coupon *model.Coupon) error {
	query := `
		UPDATE coupons
		SET
			description = $2,
			discount_type = $3,
			discount_value = $4,
			max_discount_amount = $5,
			is_auto_applied = $6,
			start_date = $7,
			expiry_date = $8,
			minimum_cart_items = $9,
			minimum_total_price = $10,
			max_total_uses = $11,
			max_uses_per_user = $12,
			applicable_product_ids = $13,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`

	err := r.db.QueryRow(ctx, query,
		coupon.ID,
		coupon.Description,
		coupon.DiscountType,
		coupon.DiscountValue,
		coupon.MaxDiscountAmount,
		coupon.IsAutoApplied,
		coupon.StartDate,
		coupon.ExpiryDate,
		coupon.MinimumCartItems,
		coupon.MinimumTotalPrice,
		coupon.MaxTotalUses,
		coupon.MaxUsesPerUser,
		pq.Array(coupon.ApplicableProductIDs),
	).Scan(&coupon.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrCouponNotFound
		}
		return fmt.Errorf("update coupon: %w", err)
	}

	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	query := `
		UPDATE coupons
		SET is_active = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id, isActive)
	if err != nil {
		return fmt.Errorf("update coupon status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// SoftDelete marks the coupon deleted and inactive. Usage ledger rows
// stay untouched.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE coupons
		SET deleted_at = NOW(), is_active = false, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete coupon: %w", err)
	}

	if result.RowsAffected() == 0 {
		return model.ErrCouponNotFound
	}

	return nil
}

// -------------------------------------------------------------------
// USAGE LEDGER
// -------------------------------------------------------------------

func (r *PostgresRepository) GetUsageHistory(ctx context.Context, couponID uuid.UUID, filter *model.UsageHistoryFilter) ([]*model.CouponUsageDetail, int, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 {
		limit = 50
	}
	offset := (page - 1) * limit

	whereClauses := []string{"cu.coupon_id = $1"}
	args := []interface{}{couponID}
	argIndex := 2

	if filter.StartDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("cu.used_at >= $%d", argIndex))
		args = append(args, *filter.StartDate)
		argIndex++
	}

	if filter.EndDate != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("cu.used_at <= $%d", argIndex))
		args = append(args, *filter.EndDate)
		argIndex++
	}

	if filter.UserID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("cu.user_id = $%d", argIndex))
		args = append(args, *filter.UserID)
		argIndex++
	}

	whereSQL := strings.Join(whereClauses, " AND ")

	query := fmt.Sprintf(`
		SELECT
			cu.id, cu.coupon_id, cu.user_id,
			u.email AS user_email,
			u.full_name AS user_full_name,
			cu.used_at
		FROM coupon_usages cu
		INNER JOIN users u ON u.id = cu.user_id
		WHERE %s
		ORDER BY cu.used_at DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, argIndex, argIndex+1)

	rows, err := r.db.Query(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("get usage history: %w", err)
	}
	defer rows.Close()

	var usages []*model.CouponUsageDetail
	for rows.Next() {
		var u model.CouponUsageDetail
		err := rows.Scan(
			&u.ID,
			&u.CouponID,
			&u.UserID,
			&u.UserEmail,
			&u.UserFullName,
			&u.UsedAt,
		)
		if err != nil {
			return nil, 0, err
		}
		usages = append(usages, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM coupon_usages cu
		WHERE %s
	`, whereSQL)

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count usage history: %w", err)
	}

	return usages, total, nil
}

// -------------------------------------------------------------------
// MAINTENANCE
// -------------------------------------------------------------------

// DeactivateExpired flips is_active off for coupons whose expiry date
// has passed. Run from the background worker.
func (r *PostgresRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE coupons
		SET is_active = false, updated_at = NOW()
		WHERE is_active = true
		  AND deleted_at IS NULL
		  AND expiry_date IS NOT NULL
		  AND expiry_date < $1
	`

	result, err := r.db.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired coupons: %w", err)
	}

	return result.RowsAffected(), nil
}
