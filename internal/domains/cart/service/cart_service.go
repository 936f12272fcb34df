package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"shopcart-backend/internal/domains/cart/model"
	"shopcart-backend/internal/domains/cart/repository"
	couponModel "shopcart-backend/internal/domains/coupon/model"
	couponRepo "shopcart-backend/internal/domains/coupon/repository"
	couponService "shopcart-backend/internal/domains/coupon/service"
	productModel "shopcart-backend/internal/domains/product/model"
	productRepo "shopcart-backend/internal/domains/product/repository"
	"shopcart-backend/pkg/logger"
)

// CouponNotEligibleError carries the validator's rejection message so
// the API can surface it verbatim.
type CouponNotEligibleError struct {
	Message string
}

func (e *CouponNotEligibleError) Error() string {
	return e.Message
}

type cartService struct {
	carts     repository.CartRepository
	products  productRepo.ProductRepository
	coupons   couponRepo.CouponRepository
	validator couponService.ValidatorInterface
	calc      *couponService.DiscountCalculator
}

// NewCartService creates the cart service.
func NewCartService(
	carts repository.CartRepository,
	products productRepo.ProductRepository,
	coupons couponRepo.CouponRepository,
	validator couponService.ValidatorInterface,
	calc *couponService.DiscountCalculator,
) CartServiceInterface {
	return &cartService{
		carts:     carts,
		products:  products,
		coupons:   coupons,
		validator: validator,
		calc:      calc,
	}
}

// getOrCreateCart loads the user's cart, creating an empty one on
// first touch.
func (s *cartService) getOrCreateCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return s.carts.Create(ctx, userID)
	}
	return cart, nil
}

// -------------------------------------------------------------------
// READS
// -------------------------------------------------------------------

func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.buildResponse(cart), nil
}

// SnapshotForUser returns the cart contents as the coupon engine's
// read-only view. A missing cart snapshots as empty.
func (s *cartService) SnapshotForUser(ctx context.Context, userID uuid.UUID) (*couponModel.CartSnapshot, error) {
	cart, err := s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return &couponModel.CartSnapshot{Lines: []couponModel.CartLine{}}, nil
	}
	return cart.Snapshot(), nil
}

// -------------------------------------------------------------------
// ITEM MUTATIONS
// -------------------------------------------------------------------

func (s *cartService) AddItem(ctx context.Context, userID uuid.UUID, req *model.AddItemRequest) (*model.CartResponse, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, productModel.ErrProductNotFound
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, model.ErrProductNotAvailable
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	existing, err := s.carts.GetItem(ctx, cart.ID, productID)
	switch {
	case err == nil:
		newQuantity := existing.Quantity + req.Quantity
		if newQuantity > product.Stock {
			return nil, model.ErrInsufficientStock
		}
		// Merging also re-snapshots the price at the current catalog
		// value.
		if err := s.carts.RefreshItem(ctx, existing.ID, newQuantity, product.Price); err != nil {
			return nil, err
		}
	case errors.Is(err, model.ErrCartItemNotFound):
		if req.Quantity > product.Stock {
			return nil, model.ErrInsufficientStock
		}
		item := &model.CartItem{
			CartID:      cart.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			Price:       product.Price,
			Quantity:    req.Quantity,
		}
		if err := s.carts.AddItem(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.carts.Touch(ctx, cart.ID); err != nil {
		return nil, err
	}

	return s.reconcileAndRespond(ctx, userID)
}

// UpdateItem sets a line's quantity. Quantity zero removes the line.
func (s *cartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req *model.UpdateItemRequest) (*model.CartResponse, error) {
	if req.Quantity < 0 {
		return nil, model.ErrInvalidQuantity
	}
	if req.Quantity == 0 {
		return s.RemoveItem(ctx, userID, productID)
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.carts.GetItem(ctx, cart.ID, productID)
	if err != nil {
		return nil, err
	}

	product, err := s.products.FindByID(ctx, productID)
	if err == nil && req.Quantity > product.Stock {
		return nil, model.ErrInsufficientStock
	}

	if err := s.carts.UpdateItemQuantity(ctx, item.ID, req.Quantity); err != nil {
		return nil, err
	}

	if err := s.carts.Touch(ctx, cart.ID); err != nil {
		return nil, err
	}

	return s.reconcileAndRespond(ctx, userID)
}

// RemoveItem deletes the matching line. Removing an absent line
// succeeds.
func (s *cartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.DeleteItem(ctx, cart.ID, productID); err != nil && !errors.Is(err, model.ErrCartItemNotFound) {
		return nil, err
	}

	if err := s.carts.Touch(ctx, cart.ID); err != nil {
		return nil, err
	}

	return s.reconcileAndRespond(ctx, userID)
}

func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.carts.ClearItems(ctx, cart.ID); err != nil {
		return nil, err
	}

	cart, err = s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(cart), nil
}

// -------------------------------------------------------------------
// COUPON OPERATIONS
// -------------------------------------------------------------------

// ApplyCoupon validates the coupon against the current cart, then
// attaches it, records a usage row and consumes one global use
// atomically.
func (s *cartService) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*model.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Duplicates are rejected before eligibility so an attached coupon
	// that has since gone stale still reports the conflict.
	for _, ac := range cart.AppliedCoupons {
		if equalFoldCode(ac.Coupon.Code, code) {
			return nil, model.ErrCouponAlreadyApplied
		}
	}

	result, err := s.validator.Validate(ctx, code, userID, cart.Snapshot())
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		return nil, &CouponNotEligibleError{Message: result.Message}
	}

	if err := s.carts.ApplyCoupon(ctx, cart.ID, result.Coupon.ID, userID); err != nil {
		return nil, err
	}

	logger.Info("coupon applied to cart", map[string]interface{}{
		"cart_id":   cart.ID,
		"coupon_id": result.Coupon.ID,
		"code":      result.Coupon.Code,
	})

	cart, err = s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(cart), nil
}

// RemoveCoupon detaches a coupon by code. Removing a coupon that is
// not on the cart succeeds, and no usage is refunded.
func (s *cartService) RemoveCoupon(ctx context.Context, userID uuid.UUID, code string) (*model.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, ac := range cart.AppliedCoupons {
		if equalFoldCode(ac.Coupon.Code, code) {
			if err := s.carts.RemoveAppliedCoupon(ctx, cart.ID, ac.CouponID); err != nil {
				return nil, err
			}
			break
		}
	}

	cart, err = s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(cart), nil
}

// AutoApplyCoupons attaches every eligible auto-applied coupon and
// returns the repriced cart.
func (s *cartService) AutoApplyCoupons(ctx context.Context, userID uuid.UUID) (*model.CartResponse, error) {
	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.autoApplyCoupons(ctx, cart); err != nil {
		return nil, err
	}

	cart, err = s.carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.buildResponse(cart), nil
}
