package repository

import (
	"context"
	"time"

	"shopcart-backend/internal/domains/cart/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartRepository defines data access for carts, their items and
// attached coupons.
type CartRepository interface {
	// Cart lifecycle
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	Create(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	Touch(ctx context.Context, cartID uuid.UUID) error

	// Items
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error)
	AddItem(ctx context.Context, item *model.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	RefreshItem(ctx context.Context, itemID uuid.UUID, quantity int, price decimal.Decimal) error
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error
	ClearItems(ctx context.Context, cartID uuid.UUID) error

	// Coupons
	ApplyCoupon(ctx context.Context, cartID, couponID, userID uuid.UUID) error
	AttachAutoCoupon(ctx context.Context, cartID, couponID uuid.UUID) error
	RemoveAppliedCoupon(ctx context.Context, cartID, couponID uuid.UUID) error

	// Maintenance
	DeleteStale(ctx context.Context, olderThan time.Time) (int64, error)
}
