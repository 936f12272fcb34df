package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcart-backend/internal/domains/coupon/model"
)

// fakeCouponRepo serves canned coupons keyed by lowercase code.
type fakeCouponRepo struct {
	coupons    map[string]*model.Coupon
	userUsage  map[uuid.UUID]int
	usageErr   error
	findErr    error
	usageCalls int
	listCalls  int
}

func newFakeCouponRepo(coupons ...*model.Coupon) *fakeCouponRepo {
	r := &fakeCouponRepo{
		coupons:   map[string]*model.Coupon{},
		userUsage: map[uuid.UUID]int{},
	}
	for _, c := range coupons {
		r.coupons[lower(c.Code)] = c
	}
	return r
}

func lower(s string) string {
	b := []byte(s)
	for i, ch := range b {
		if ch >= 'A' && ch <= 'Z' {
			b[i] = ch + 32
		}
	}
	return string(b)
}

func (r *fakeCouponRepo) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.coupons[lower(code)]
	if !ok {
		return nil, model.ErrCouponNotFound
	}
	return c, nil
}

func (r *fakeCouponRepo) CountUsageForUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	r.usageCalls++
	if r.usageErr != nil {
		return 0, r.usageErr
	}
	return r.userUsage[userID], nil
}

func (r *fakeCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	for _, c := range r.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, model.ErrCouponNotFound
}

func (r *fakeCouponRepo) List(ctx context.Context, filter *model.ListCouponsFilter) ([]*model.Coupon, int, error) {
	r.listCalls++
	var out []*model.Coupon
	for _, c := range r.coupons {
		if filter.IsActive != nil && c.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, c)
	}
	return out, len(out), nil
}

func (r *fakeCouponRepo) ListAutoApplied(ctx context.Context) ([]*model.Coupon, error) {
	var out []*model.Coupon
	for _, c := range r.coupons {
		if c.IsAutoApplied && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCouponRepo) Create(ctx context.Context, coupon *model.Coupon) error  { return nil }
func (r *fakeCouponRepo) Update(ctx context.Context, coupon *model.Coupon) error  { return nil }
func (r *fakeCouponRepo) UpdateStatus(ctx context.Context, id uuid.UUID, a bool) error {
	return nil
}
func (r *fakeCouponRepo) SoftDelete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeCouponRepo) GetUsageHistory(ctx context.Context, couponID uuid.UUID, filter *model.UsageHistoryFilter) ([]*model.CouponUsageDetail, int, error) {
	return nil, 0, nil
}

func (r *fakeCouponRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

func intPtr(n int) *int { return &n }

func timePtr(t time.Time) *time.Time { return &t }

func newValidatorAt(repo *fakeCouponRepo, now time.Time) *CouponValidator {
	v := NewCouponValidator(repo, NewDiscountCalculator())
	v.now = func() time.Time { return now }
	return v
}

func baseCoupon(code string) *model.Coupon {
	return &model.Coupon{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: dec("20"),
		IsActive:      true,
	}
}

func snapshot(lines ...model.CartLine) *model.CartSnapshot {
	return &model.CartSnapshot{Lines: lines}
}

func TestValidate_CouponNotFound(t *testing.T) {
	v := newValidatorAt(newFakeCouponRepo(), time.Now())

	result, err := v.Validate(context.Background(), "NOPE", uuid.New(), snapshot())

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Coupon not found", result.Message)
	assert.True(t, result.DiscountAmount.IsZero())
}

func TestValidate_CodeLookupIsCaseInsensitive(t *testing.T) {
	coupon := baseCoupon("SAVE20")
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "save20", uuid.New(), snapshot(line(uuid.New(), "100.00", 1)))

	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidate_InactiveCoupon(t *testing.T) {
	coupon := baseCoupon("SAVE20")
	coupon.IsActive = false
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "SAVE20", uuid.New(), snapshot())

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Coupon is not active", result.Message)
}

func TestValidate_NotYetValid(t *testing.T) {
	now := time.Now()
	coupon := baseCoupon("FUTURE")
	coupon.StartDate = timePtr(now.Add(24 * time.Hour))
	v := newValidatorAt(newFakeCouponRepo(coupon), now)

	result, err := v.Validate(context.Background(), "FUTURE", uuid.New(), snapshot())

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Coupon is not yet valid", result.Message)
}

func TestValidate_Expired(t *testing.T) {
	now := time.Now()
	coupon := baseCoupon("OLD")
	coupon.ExpiryDate = timePtr(now.Add(-time.Hour))
	v := newValidatorAt(newFakeCouponRepo(coupon), now)

	result, err := v.Validate(context.Background(), "OLD", uuid.New(), snapshot())

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Coupon has expired", result.Message)
}

func TestValidate_TotalUsageLimitReached(t *testing.T) {
	coupon := baseCoupon("LIMITED")
	coupon.MaxTotalUses = intPtr(1)
	coupon.CurrentTotalUses = 1
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "LIMITED", uuid.New(), snapshot())

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Coupon usage limit reached", result.Message)
}

func TestValidate_PerUserLimitReached(t *testing.T) {
	coupon := baseCoupon("ONCE")
	coupon.MaxUsesPerUser = intPtr(1)

	userID := uuid.New()
	repo := newFakeCouponRepo(coupon)
	repo.userUsage[userID] = 1

	v := newValidatorAt(repo, time.Now())

	result, err := v.Validate(context.Background(), "ONCE", userID, snapshot())

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "You have reached the usage limit for this coupon", result.Message)
}

func TestValidate_PerUserLimitNotQueriedWhenUnset(t *testing.T) {
	coupon := baseCoupon("SAVE20")
	repo := newFakeCouponRepo(coupon)

	v := newValidatorAt(repo, time.Now())

	_, err := v.Validate(context.Background(), "SAVE20", uuid.New(), snapshot(line(uuid.New(), "10.00", 1)))

	require.NoError(t, err)
	assert.Zero(t, repo.usageCalls)
}

func TestValidate_MinimumItems(t *testing.T) {
	coupon := baseCoupon("BULK")
	coupon.MinimumCartItems = intPtr(3)
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "BULK", uuid.New(), snapshot(line(uuid.New(), "10.00", 2)))

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Minimum 3 items required", result.Message)
}

func TestValidate_MinimumItemsSumsQuantities(t *testing.T) {
	coupon := baseCoupon("BULK")
	coupon.MinimumCartItems = intPtr(3)
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	// 2 + 1 quantities across two lines meet the threshold.
	result, err := v.Validate(context.Background(), "BULK", uuid.New(), snapshot(
		line(uuid.New(), "10.00", 2),
		line(uuid.New(), "5.00", 1),
	))

	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestValidate_MinimumTotalPrice(t *testing.T) {
	coupon := baseCoupon("BIGSPEND")
	coupon.MinimumTotalPrice = decPtr("50.00")
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "BIGSPEND", uuid.New(), snapshot(line(uuid.New(), "49.99", 1)))

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "Minimum cart total of $50.00 required", result.Message)
}

func TestValidate_NoApplicableItems(t *testing.T) {
	coupon := baseCoupon("SCOPED")
	coupon.ApplicableProductIDs = []uuid.UUID{uuid.New()}
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "SCOPED", uuid.New(), snapshot(line(uuid.New(), "80.00", 1)))

	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, "This coupon is not applicable to the products in your cart", result.Message)
}

func TestValidate_ExpiryReportedBeforeMinimumTotal(t *testing.T) {
	now := time.Now()
	coupon := baseCoupon("BOTH")
	coupon.ExpiryDate = timePtr(now.Add(-time.Hour))
	coupon.MinimumTotalPrice = decPtr("500.00")
	v := newValidatorAt(newFakeCouponRepo(coupon), now)

	result, err := v.Validate(context.Background(), "BOTH", uuid.New(), snapshot(line(uuid.New(), "10.00", 1)))

	require.NoError(t, err)
	assert.Equal(t, "Coupon has expired", result.Message)
}

func TestValidate_MinimumItemsReportedBeforeUsageLimit(t *testing.T) {
	coupon := baseCoupon("BOTH")
	coupon.MinimumCartItems = intPtr(3)
	coupon.MaxTotalUses = intPtr(1)
	coupon.CurrentTotalUses = 1
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "BOTH", uuid.New(), snapshot(line(uuid.New(), "10.00", 1)))

	require.NoError(t, err)
	assert.Equal(t, "Minimum 3 items required", result.Message)
}

func TestValidate_MinimumTotalReportedBeforePerUserLimit(t *testing.T) {
	userID := uuid.New()
	coupon := baseCoupon("BOTH")
	coupon.MinimumTotalPrice = decPtr("100.00")
	coupon.MaxUsesPerUser = intPtr(1)

	repo := newFakeCouponRepo(coupon)
	repo.userUsage[userID] = 1
	v := newValidatorAt(repo, time.Now())

	result, err := v.Validate(context.Background(), "BOTH", userID, snapshot(line(uuid.New(), "10.00", 1)))

	require.NoError(t, err)
	assert.Equal(t, "Minimum cart total of $100.00 required", result.Message)
}

func TestValidate_ValidCouponComputesDiscount(t *testing.T) {
	coupon := baseCoupon("SAVE20")
	v := newValidatorAt(newFakeCouponRepo(coupon), time.Now())

	result, err := v.Validate(context.Background(), "SAVE20", uuid.New(), snapshot(line(uuid.New(), "100.00", 1)))

	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, "Coupon is valid", result.Message)
	assert.True(t, dec("20.00").Equal(result.DiscountAmount), "got %s", result.DiscountAmount)
	require.NotNil(t, result.Coupon)
	assert.Equal(t, coupon.ID, result.Coupon.ID)
}
