package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcart-backend/internal/domains/coupon/model"
)

// fakeCache keeps []*model.Coupon entries in memory and records
// invalidations.
type fakeCache struct {
	entries     map[string][]*model.Coupon
	deletedKeys []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]*model.Coupon{}}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	entry, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	out, ok := dest.(*[]*model.Coupon)
	if !ok {
		return false, nil
	}
	*out = entry
	return true, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if coupons, ok := value.([]*model.Coupon); ok {
		f.entries[key] = coupons
	}
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.entries, key)
		f.deletedKeys = append(f.deletedKeys, key)
	}
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error { return nil }
func (f *fakeCache) Ping(ctx context.Context) error                         { return nil }
func (f *fakeCache) Increment(ctx context.Context, key string) (int64, error) {
	return 0, nil
}
func (f *fakeCache) Exists(ctx context.Context, key string) (bool, error) { return false, nil }
func (f *fakeCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}
func (f *fakeCache) TTL(ctx context.Context, key string) (time.Duration, error) { return 0, nil }

func newCouponService(repo *fakeCouponRepo, c *fakeCache) CouponServiceInterface {
	return NewCouponService(repo, NewCouponValidator(repo, NewDiscountCalculator()), c)
}

func TestCreateCoupon_RejectsNegativeDiscount(t *testing.T) {
	svc := newCouponService(newFakeCouponRepo(), newFakeCache())

	_, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:          "BAD",
		DiscountType:  model.DiscountTypeFixed,
		DiscountValue: dec("-5"),
	})

	assert.ErrorIs(t, err, model.ErrInvalidDiscount)
}

func TestCreateCoupon_RejectsPercentageOverHundred(t *testing.T) {
	svc := newCouponService(newFakeCouponRepo(), newFakeCache())

	_, err := svc.Create(context.Background(), &model.CreateCouponRequest{
		Code:          "BAD",
		DiscountType:  model.DiscountTypePercentage,
		DiscountValue: dec("150"),
	})

	assert.ErrorIs(t, err, model.ErrInvalidDiscount)
}

func TestListActive_PopulatesCacheOnMiss(t *testing.T) {
	repo := newFakeCouponRepo(baseCoupon("SAVE20"))
	cache := newFakeCache()
	svc := newCouponService(repo, cache)

	coupons, err := svc.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, 1, repo.listCalls)
	assert.Contains(t, cache.entries, activeCouponsCacheKey)
}

func TestListActive_ServesFromCache(t *testing.T) {
	repo := newFakeCouponRepo(baseCoupon("SAVE20"))
	cache := newFakeCache()
	svc := newCouponService(repo, cache)

	_, err := svc.ListActive(context.Background())
	require.NoError(t, err)

	coupons, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, 1, repo.listCalls)
}

func TestListActive_SkipsCouponsOutsideWindow(t *testing.T) {
	expired := baseCoupon("EXPIRED")
	expired.ExpiryDate = timePtr(time.Now().Add(-time.Hour))

	repo := newFakeCouponRepo(baseCoupon("SAVE20"), expired)
	svc := newCouponService(repo, newFakeCache())

	coupons, err := svc.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, coupons, 1)
	assert.Equal(t, "SAVE20", coupons[0].Code)
}

func TestUpdateCoupon_InvalidatesActiveCache(t *testing.T) {
	coupon := baseCoupon("SAVE20")
	repo := newFakeCouponRepo(coupon)
	cache := newFakeCache()
	svc := newCouponService(repo, cache)

	_, err := svc.ListActive(context.Background())
	require.NoError(t, err)
	require.Contains(t, cache.entries, activeCouponsCacheKey)

	desc := "updated"
	_, err = svc.Update(context.Background(), coupon.ID, &model.UpdateCouponRequest{
		Description: &desc,
	})

	require.NoError(t, err)
	assert.Contains(t, cache.deletedKeys, activeCouponsCacheKey)
	assert.NotContains(t, cache.entries, activeCouponsCacheKey)
}
