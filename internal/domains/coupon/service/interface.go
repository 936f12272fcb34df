package service

import (
	"context"

	"github.com/google/uuid"

	"shopcart-backend/internal/domains/coupon/model"
)

// CouponServiceInterface is the business surface for coupon management
// and eligibility checks.
type CouponServiceInterface interface {
	// Admin
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateCouponRequest) (*model.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	List(ctx context.Context, filter *model.ListCouponsFilter) ([]*model.Coupon, int, error)
	SetStatus(ctx context.Context, id uuid.UUID, isActive bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	GetUsageHistory(ctx context.Context, couponID uuid.UUID, filter *model.UsageHistoryFilter) ([]*model.CouponUsageDetail, int, error)
	ExportUsageHistory(ctx context.Context, couponID uuid.UUID, filter *model.UsageHistoryFilter) ([]byte, string, error)

	// Public
	ListActive(ctx context.Context) ([]*model.Coupon, error)
	Validate(ctx context.Context, code string, userID uuid.UUID, cart *model.CartSnapshot) (*model.ValidationResult, error)
}

// ValidatorInterface is the narrow eligibility check the cart domain
// depends on.
type ValidatorInterface interface {
	Validate(ctx context.Context, code string, userID uuid.UUID, cart *model.CartSnapshot) (*model.ValidationResult, error)
}

// CartSnapshotProvider supplies the caller's current cart contents.
// Implemented by the cart service; declared here so the coupon domain
// does not import it.
type CartSnapshotProvider interface {
	SnapshotForUser(ctx context.Context, userID uuid.UUID) (*model.CartSnapshot, error)
}
