package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopcart-backend/internal/domains/coupon/model"
	"shopcart-backend/internal/domains/coupon/repository"
	"shopcart-backend/pkg/cache"
	"shopcart-backend/pkg/logger"
)

const (
	activeCouponsCacheKey = "coupons:active"
	activeCouponsCacheTTL = 2 * time.Minute
)

type couponService struct {
	repo      repository.CouponRepository
	validator *CouponValidator
	cache     cache.Cache
}

// NewCouponService creates the coupon service.
func NewCouponService(repo repository.CouponRepository, validator *CouponValidator, c cache.Cache) CouponServiceInterface {
	return &couponService{
		repo:      repo,
		validator: validator,
		cache:     c,
	}
}

// -------------------------------------------------------------------
// ADMIN
// -------------------------------------------------------------------

func (s *couponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if err := validateDiscountConfig(req.DiscountType, req.DiscountValue); err != nil {
		return nil, err
	}

	coupon := &model.Coupon{
		Code:                 req.Code,
		Description:          req.Description,
		DiscountType:         req.DiscountType,
		DiscountValue:        req.DiscountValue,
		MaxDiscountAmount:    req.MaxDiscountAmount,
		IsAutoApplied:        req.IsAutoApplied,
		StartDate:            req.StartDate,
		ExpiryDate:           req.ExpiryDate,
		MinimumCartItems:     req.MinimumCartItems,
		MinimumTotalPrice:    req.MinimumTotalPrice,
		MaxTotalUses:         req.MaxTotalUses,
		MaxUsesPerUser:       req.MaxUsesPerUser,
		ApplicableProductIDs: req.ApplicableProductIDs,
		IsActive:             req.IsActive,
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}

	s.invalidateActiveCache(ctx)

	logger.Info("coupon created", map[string]interface{}{
		"coupon_id": coupon.ID,
		"code":      coupon.Code,
	})

	return coupon, nil
}

func (s *couponService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCouponRequest) (*model.Coupon, error) {
	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		coupon.Description = *req.Description
	}
	if req.DiscountType != nil {
		coupon.DiscountType = *req.DiscountType
	}
	if req.DiscountValue != nil {
		coupon.DiscountValue = *req.DiscountValue
	}
	if req.MaxDiscountAmount != nil {
		coupon.MaxDiscountAmount = req.MaxDiscountAmount
	}
	if req.IsAutoApplied != nil {
		coupon.IsAutoApplied = *req.IsAutoApplied
	}
	if req.StartDate != nil {
		coupon.StartDate = req.StartDate
	}
	if req.ExpiryDate != nil {
		coupon.ExpiryDate = req.ExpiryDate
	}
	if req.MinimumCartItems != nil {
		coupon.MinimumCartItems = req.MinimumCartItems
	}
	if req.MinimumTotalPrice != nil {
		coupon.MinimumTotalPrice = req.MinimumTotalPrice
	}
	if req.MaxTotalUses != nil {
		coupon.MaxTotalUses = req.MaxTotalUses
	}
	if req.MaxUsesPerUser != nil {
		coupon.MaxUsesPerUser = req.MaxUsesPerUser
	}
	if req.ApplicableProductIDs != nil {
		coupon.ApplicableProductIDs = req.ApplicableProductIDs
	}

	if err := validateDiscountConfig(coupon.DiscountType, coupon.DiscountValue); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}

	s.invalidateActiveCache(ctx)

	return coupon, nil
}

func (s *couponService) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *couponService) List(ctx context.Context, filter *model.ListCouponsFilter) ([]*model.Coupon, int, error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}

func (s *couponService) SetStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	if err := s.repo.UpdateStatus(ctx, id, isActive); err != nil {
		return err
	}
	s.invalidateActiveCache(ctx)
	return nil
}

func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.invalidateActiveCache(ctx)
	return nil
}

func (s *couponService) GetUsageHistory(ctx context.Context, couponID uuid.UUID, filter *model.UsageHistoryFilter) ([]*model.CouponUsageDetail, int, error) {
	if _, err := s.repo.FindByID(ctx, couponID); err != nil {
		return nil, 0, err
	}
	return s.repo.GetUsageHistory(ctx, couponID, filter)
}

// -------------------------------------------------------------------
// PUBLIC
// -------------------------------------------------------------------

// ListActive returns active coupons inside their validity window.
// Results are cached briefly; admin writes drop the cache.
func (s *couponService) ListActive(ctx context.Context) ([]*model.Coupon, error) {
	var cached []*model.Coupon
	found, err := s.cache.Get(ctx, activeCouponsCacheKey, &cached)
	if err != nil {
		logger.Warn("active coupons cache read failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if found {
		return cached, nil
	}

	active := true
	coupons, _, err := s.repo.List(ctx, &model.ListCouponsFilter{
		IsActive: &active,
		Page:     1,
		Limit:    100,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]*model.Coupon, 0, len(coupons))
	for _, c := range coupons {
		if c.WithinValidityWindow(now) {
			result = append(result, c)
		}
	}

	if err := s.cache.Set(ctx, activeCouponsCacheKey, result, activeCouponsCacheTTL); err != nil {
		logger.Warn("active coupons cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	return result, nil
}

// Validate reads the coupon straight from storage rather than the
// cache so usage counters are current.
func (s *couponService) Validate(ctx context.Context, code string, userID uuid.UUID, cart *model.CartSnapshot) (*model.ValidationResult, error) {
	return s.validator.Validate(ctx, code, userID, cart)
}

func (s *couponService) invalidateActiveCache(ctx context.Context) {
	if err := s.cache.Delete(ctx, activeCouponsCacheKey); err != nil {
		logger.Warn("active coupons cache invalidation failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func validateDiscountConfig(discountType model.DiscountType, value decimal.Decimal) error {
	if value.IsNegative() {
		return model.ErrInvalidDiscount
	}
	if discountType == model.DiscountTypePercentage && value.GreaterThan(decimal.NewFromInt(100)) {
		return model.ErrInvalidDiscount
	}
	return nil
}
