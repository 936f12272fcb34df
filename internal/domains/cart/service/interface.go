package service

import (
	"context"

	"github.com/google/uuid"

	"shopcart-backend/internal/domains/cart/model"
	couponModel "shopcart-backend/internal/domains/coupon/model"
)

// CartServiceInterface is the business surface for cart operations.
// Every call returns the cart with pricing recomputed from live state.
type CartServiceInterface interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)
	AddItem(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.CartResponse, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, req *model.UpdateItemRequest) (*model.CartResponse, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.CartResponse, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*model.CartResponse, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID, code string) (*model.CartResponse, error)
	AutoApplyCoupons(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error)

	// SnapshotForUser implements the coupon domain's snapshot provider.
	SnapshotForUser(ctx context.Context, userID uuid.UUID) (*couponModel.CartSnapshot, error)
}
