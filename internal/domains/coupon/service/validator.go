package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopcart-backend/internal/domains/coupon/model"
	"shopcart-backend/internal/domains/coupon/repository"
)

// CouponValidator runs the eligibility checks for one coupon against
// one cart. Checks run in a fixed order and the first failure wins, so
// a coupon that is both expired and under the minimum total always
// reports the expiry.
type CouponValidator struct {
	repo repository.CouponRepository
	calc *DiscountCalculator
	now  func() time.Time
}

func NewCouponValidator(repo repository.CouponRepository, calc *DiscountCalculator) *CouponValidator {
	return &CouponValidator{
		repo: repo,
		calc: calc,
		now:  time.Now,
	}
}

func invalid(message string) *model.ValidationResult {
	return &model.ValidationResult{
		IsValid:        false,
		Message:        message,
		DiscountAmount: decimal.Zero,
	}
}

// Validate checks whether the user may apply the coupon to the cart.
// An ineligible coupon yields IsValid=false with the reason; only
// infrastructure failures return a non-nil error.
func (v *CouponValidator) Validate(ctx context.Context, code string, userID uuid.UUID, cart *model.CartSnapshot) (*model.ValidationResult, error) {
	coupon, err := v.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrCouponNotFound) {
			return invalid(model.MsgCouponNotFound), nil
		}
		return nil, err
	}

	if !coupon.IsActive {
		return invalid(model.MsgCouponNotActive), nil
	}

	now := v.now()
	if coupon.StartDate != nil && now.Before(*coupon.StartDate) {
		return invalid(model.MsgCouponNotYetValid), nil
	}
	if coupon.ExpiryDate != nil && now.After(*coupon.ExpiryDate) {
		return invalid(model.MsgCouponExpired), nil
	}

	if coupon.MinimumCartItems != nil && cart.TotalItems() < *coupon.MinimumCartItems {
		return invalid(fmt.Sprintf("Minimum %d items required", *coupon.MinimumCartItems)), nil
	}

	if coupon.MinimumTotalPrice != nil && cart.TotalBeforeDiscount().LessThan(*coupon.MinimumTotalPrice) {
		return invalid(fmt.Sprintf("Minimum cart total of $%s required", coupon.MinimumTotalPrice.StringFixed(2))), nil
	}

	if coupon.MaxTotalUses != nil && coupon.CurrentTotalUses >= *coupon.MaxTotalUses {
		return invalid(model.MsgUsageLimitReached), nil
	}

	if coupon.MaxUsesPerUser != nil {
		used, err := v.repo.CountUsageForUser(ctx, coupon.ID, userID)
		if err != nil {
			return nil, err
		}
		if used >= *coupon.MaxUsesPerUser {
			return invalid(model.MsgUserLimitReached), nil
		}
	}

	if coupon.IsProductScoped() {
		matched := false
		for _, line := range cart.Lines {
			if coupon.AppliesTo(line.ProductID) {
				matched = true
				break
			}
		}
		if !matched {
			return invalid(model.MsgNoApplicableItems), nil
		}
	}

	return &model.ValidationResult{
		IsValid:        true,
		Message:        model.MsgCouponValid,
		DiscountAmount: v.calc.Calculate(coupon, cart.TotalBeforeDiscount(), cart.Lines),
		Coupon:         coupon,
	}, nil
}
