package repository

import (
	"context"
	"time"

	"shopcart-backend/internal/domains/coupon/model"

	"github.com/google/uuid"
)

// CouponRepository defines data access for coupons and their usage ledger.
type CouponRepository interface {
	// Read operations
	FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	FindByCode(ctx context.Context, code string) (*model.Coupon, error)
	List(ctx context.Context, filter *model.ListCouponsFilter) ([]*model.Coupon, int, error)
	ListAutoApplied(ctx context.Context) ([]*model.Coupon, error)
	CountUsageForUser(ctx context.Context, couponID, userID uuid.UUID) (int, error)

	// Write operations
	Create(ctx context.Context, coupon *model.Coupon) error
	Update(ctx context.Context, coupon *model.Coupon) error
	UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error

	// Usage ledger
	GetUsageHistory(ctx context.Context, couponID uuid.UUID, filter *model.UsageHistoryFilter) ([]*model.CouponUsageDetail, int, error)

	// Maintenance
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}
