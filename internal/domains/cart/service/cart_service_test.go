package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopcart-backend/internal/domains/cart/model"
	couponModel "shopcart-backend/internal/domains/coupon/model"
	couponService "shopcart-backend/internal/domains/coupon/service"
	productModel "shopcart-backend/internal/domains/product/model"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(n int) *int { return &n }

// fixture is shared in-memory state backing the fake repositories, so
// coupon counters and usage rows behave like one database.
type fixture struct {
	coupons map[uuid.UUID]*couponModel.Coupon
	usage   map[string]int
	carts   map[uuid.UUID]*cartState
}

type appliedRef struct {
	couponID  uuid.UUID
	auto      bool
	appliedAt time.Time
}

type cartState struct {
	id      uuid.UUID
	userID  uuid.UUID
	items   []model.CartItem
	applied []appliedRef
}

func newFixture() *fixture {
	return &fixture{
		coupons: map[uuid.UUID]*couponModel.Coupon{},
		usage:   map[string]int{},
		carts:   map[uuid.UUID]*cartState{},
	}
}

func (f *fixture) addCoupon(c *couponModel.Coupon) *couponModel.Coupon {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	f.coupons[c.ID] = c
	return c
}

func usageKey(couponID, userID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", couponID, userID)
}

// -------------------------------------------------------------------
// FAKE COUPON REPOSITORY
// -------------------------------------------------------------------

type fakeCouponRepo struct {
	f *fixture
}

func (r *fakeCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*couponModel.Coupon, error) {
	c, ok := r.f.coupons[id]
	if !ok || c.DeletedAt != nil {
		return nil, couponModel.ErrCouponNotFound
	}
	return c, nil
}

func (r *fakeCouponRepo) FindByCode(ctx context.Context, code string) (*couponModel.Coupon, error) {
	for _, c := range r.f.coupons {
		if strings.EqualFold(c.Code, code) && c.DeletedAt == nil {
			return c, nil
		}
	}
	return nil, couponModel.ErrCouponNotFound
}

func (r *fakeCouponRepo) List(ctx context.Context, filter *couponModel.ListCouponsFilter) ([]*couponModel.Coupon, int, error) {
	return nil, 0, nil
}

func (r *fakeCouponRepo) ListAutoApplied(ctx context.Context) ([]*couponModel.Coupon, error) {
	now := time.Now()
	var out []*couponModel.Coupon
	for _, c := range r.f.coupons {
		if c.IsAutoApplied && c.IsActive && c.DeletedAt == nil && c.WithinValidityWindow(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCouponRepo) CountUsageForUser(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	return r.f.usage[usageKey(couponID, userID)], nil
}

func (r *fakeCouponRepo) Create(ctx context.Context, c *couponModel.Coupon) error { return nil }
func (r *fakeCouponRepo) Update(ctx context.Context, c *couponModel.Coupon) error { return nil }
func (r *fakeCouponRepo) UpdateStatus(ctx context.Context, id uuid.UUID, isActive bool) error {
	return nil
}
func (r *fakeCouponRepo) SoftDelete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *fakeCouponRepo) GetUsageHistory(ctx context.Context, couponID uuid.UUID, filter *couponModel.UsageHistoryFilter) ([]*couponModel.CouponUsageDetail, int, error) {
	return nil, 0, nil
}

func (r *fakeCouponRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	return 0, nil
}

// -------------------------------------------------------------------
// FAKE CART REPOSITORY
// -------------------------------------------------------------------

type fakeCartRepo struct {
	f *fixture
}

func (r *fakeCartRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	state, ok := r.f.carts[userID]
	if !ok {
		return nil, nil
	}

	cart := &model.Cart{
		ID:     state.id,
		UserID: userID,
		Items:  append([]model.CartItem{}, state.items...),
	}
	for _, ref := range state.applied {
		coupon := r.f.coupons[ref.couponID]
		cart.AppliedCoupons = append(cart.AppliedCoupons, model.AppliedCoupon{
			ID:            uuid.New(),
			CartID:        state.id,
			CouponID:      ref.couponID,
			IsAutoApplied: ref.auto,
			AppliedAt:     ref.appliedAt,
			Coupon:        *coupon,
		})
	}

	return cart, nil
}

func (r *fakeCartRepo) Create(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	state := &cartState{id: uuid.New(), userID: userID}
	r.f.carts[userID] = state
	return &model.Cart{ID: state.id, UserID: userID}, nil
}

func (r *fakeCartRepo) Touch(ctx context.Context, cartID uuid.UUID) error { return nil }

func (r *fakeCartRepo) stateByCartID(cartID uuid.UUID) *cartState {
	for _, state := range r.f.carts {
		if state.id == cartID {
			return state
		}
	}
	return nil
}

func (r *fakeCartRepo) GetItem(ctx context.Context, cartID, productID uuid.UUID) (*model.CartItem, error) {
	state := r.stateByCartID(cartID)
	if state == nil {
		return nil, model.ErrCartItemNotFound
	}
	for i := range state.items {
		if state.items[i].ProductID == productID {
			item := state.items[i]
			return &item, nil
		}
	}
	return nil, model.ErrCartItemNotFound
}

func (r *fakeCartRepo) AddItem(ctx context.Context, item *model.CartItem) error {
	state := r.stateByCartID(item.CartID)
	item.ID = uuid.New()
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	state.items = append(state.items, *item)
	return nil
}

func (r *fakeCartRepo) UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	for _, state := range r.f.carts {
		for i := range state.items {
			if state.items[i].ID == itemID {
				state.items[i].Quantity = quantity
				return nil
			}
		}
	}
	return model.ErrCartItemNotFound
}

func (r *fakeCartRepo) RefreshItem(ctx context.Context, itemID uuid.UUID, quantity int, price decimal.Decimal) error {
	for _, state := range r.f.carts {
		for i := range state.items {
			if state.items[i].ID == itemID {
				state.items[i].Quantity = quantity
				state.items[i].Price = price
				return nil
			}
		}
	}
	return model.ErrCartItemNotFound
}

func (r *fakeCartRepo) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) error {
	state := r.stateByCartID(cartID)
	for i := range state.items {
		if state.items[i].ProductID == productID {
			state.items = append(state.items[:i], state.items[i+1:]...)
			return nil
		}
	}
	return model.ErrCartItemNotFound
}

func (r *fakeCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	state := r.stateByCartID(cartID)
	state.items = nil
	state.applied = nil
	return nil
}

func (r *fakeCartRepo) ApplyCoupon(ctx context.Context, cartID, couponID, userID uuid.UUID) error {
	state := r.stateByCartID(cartID)
	for _, ref := range state.applied {
		if ref.couponID == couponID {
			return model.ErrCouponAlreadyApplied
		}
	}

	coupon := r.f.coupons[couponID]
	if coupon.MaxTotalUses != nil && coupon.CurrentTotalUses >= *coupon.MaxTotalUses {
		return couponModel.ErrCouponUsageLimitReached
	}
	coupon.CurrentTotalUses++
	r.f.usage[usageKey(couponID, userID)]++

	state.applied = append(state.applied, appliedRef{couponID: couponID, appliedAt: time.Now()})
	return nil
}

func (r *fakeCartRepo) AttachAutoCoupon(ctx context.Context, cartID, couponID uuid.UUID) error {
	state := r.stateByCartID(cartID)
	for _, ref := range state.applied {
		if ref.couponID == couponID {
			return nil
		}
	}
	state.applied = append(state.applied, appliedRef{couponID: couponID, auto: true, appliedAt: time.Now()})
	return nil
}

func (r *fakeCartRepo) RemoveAppliedCoupon(ctx context.Context, cartID, couponID uuid.UUID) error {
	state := r.stateByCartID(cartID)
	for i, ref := range state.applied {
		if ref.couponID == couponID {
			state.applied = append(state.applied[:i], state.applied[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeCartRepo) DeleteStale(ctx context.Context, olderThan time.Time) (int64, error) {
	return 0, nil
}

// -------------------------------------------------------------------
// FAKE PRODUCT REPOSITORY
// -------------------------------------------------------------------

type fakeProductRepo struct {
	products map[uuid.UUID]*productModel.Product
}

func (r *fakeProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*productModel.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, productModel.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) List(ctx context.Context, filter *productModel.ListProductsFilter) ([]*productModel.Product, int, error) {
	return nil, 0, nil
}
func (r *fakeProductRepo) Create(ctx context.Context, p *productModel.Product) error { return nil }
func (r *fakeProductRepo) Update(ctx context.Context, p *productModel.Product) error { return nil }
func (r *fakeProductRepo) SoftDelete(ctx context.Context, id uuid.UUID) error        { return nil }

// -------------------------------------------------------------------
// SETUP
// -------------------------------------------------------------------

type testEnv struct {
	f        *fixture
	products *fakeProductRepo
	svc      CartServiceInterface
}

func newTestEnv() *testEnv {
	f := newFixture()
	couponRepo := &fakeCouponRepo{f: f}
	cartRepo := &fakeCartRepo{f: f}
	products := &fakeProductRepo{products: map[uuid.UUID]*productModel.Product{}}

	calc := couponService.NewDiscountCalculator()
	validator := couponService.NewCouponValidator(couponRepo, calc)

	return &testEnv{
		f:        f,
		products: products,
		svc:      NewCartService(cartRepo, products, couponRepo, validator, calc),
	}
}

func (e *testEnv) addProduct(price string, stock int) *productModel.Product {
	p := &productModel.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    dec(price),
		Stock:    stock,
		IsActive: true,
	}
	e.products.products[p.ID] = p
	return p
}

func activeCoupon(code string) *couponModel.Coupon {
	return &couponModel.Coupon{
		Code:          code,
		DiscountType:  couponModel.DiscountTypePercentage,
		DiscountValue: dec("20"),
		IsActive:      true,
	}
}

// -------------------------------------------------------------------
// TESTS
// -------------------------------------------------------------------

func TestAddItem_CreatesCartLazily(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("25.00", 10)

	cart, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{
		ProductID: product.ID.String(),
		Quantity:  2,
	})

	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, dec("50.00").Equal(cart.Pricing.TotalBeforeDiscount))
	assert.True(t, dec("50.00").Equal(cart.Pricing.FinalPayableAmount))
}

func TestAddItem_MergesExistingLine(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("10.00", 10)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)

	cart, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 3})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
}

func TestAddItem_MergeRefreshesPriceSnapshot(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("10.00", 10)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	product.Price = dec("12.50")

	cart, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.True(t, dec("12.50").Equal(cart.Items[0].Price))
	assert.True(t, dec("25.00").Equal(cart.Pricing.TotalBeforeDiscount))
}

func TestUpdateItem_ZeroQuantityRemovesLine(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("10.00", 10)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)

	cart, err := env.svc.UpdateItem(context.Background(), userID, product.ID, &model.UpdateItemRequest{Quantity: 0})

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestRemoveItem_AbsentLineIsNoOp(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()

	cart, err := env.svc.RemoveItem(context.Background(), userID, uuid.New())

	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestAddItem_InsufficientStock(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("10.00", 3)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 4})

	assert.ErrorIs(t, err, model.ErrInsufficientStock)
}

func TestApplyCoupon_ValidCouponDiscountsCart(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := env.f.addCoupon(activeCoupon("SAVE20"))

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	cart, err := env.svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	require.NoError(t, err)

	require.Len(t, cart.Pricing.DiscountDetails, 1)
	assert.Equal(t, "SAVE20", cart.Pricing.DiscountDetails[0].CouponCode)
	assert.True(t, dec("20.00").Equal(cart.Pricing.TotalDiscount))
	assert.True(t, dec("80.00").Equal(cart.Pricing.FinalPayableAmount))

	// One use consumed, one ledger row.
	assert.Equal(t, 1, coupon.CurrentTotalUses)
	assert.Equal(t, 1, env.f.usage[usageKey(coupon.ID, userID)])
}

func TestApplyCoupon_IneligibleReturnsValidatorMessage(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("10.00", 10)
	coupon := activeCoupon("BIG")
	coupon.MinimumTotalPrice = decPtr("50.00")
	env.f.addCoupon(coupon)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "BIG")

	var notEligible *CouponNotEligibleError
	require.ErrorAs(t, err, &notEligible)
	assert.Equal(t, "Minimum cart total of $50.00 required", notEligible.Message)
}

func TestApplyCoupon_DuplicateRejected(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	env.f.addCoupon(activeCoupon("SAVE20"))

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	assert.ErrorIs(t, err, model.ErrCouponAlreadyApplied)
}

func TestApplyCoupon_DuplicateRejectedEvenWhenStale(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := env.f.addCoupon(activeCoupon("SAVE20"))

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "save20")
	require.NoError(t, err)

	// The coupon going inactive after attachment must not change the
	// duplicate verdict into an eligibility one.
	coupon.IsActive = false

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	assert.ErrorIs(t, err, model.ErrCouponAlreadyApplied)
}

func TestApplyCoupon_LastUseRace(t *testing.T) {
	env := newTestEnv()
	product := env.addProduct("100.00", 10)
	coupon := activeCoupon("LAST")
	coupon.MaxTotalUses = intPtr(1)
	env.f.addCoupon(coupon)

	userA := uuid.New()
	userB := uuid.New()

	_, err := env.svc.AddItem(context.Background(), userA, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)
	_, err = env.svc.AddItem(context.Background(), userB, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userA, "LAST")
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userB, "LAST")
	var notEligible *CouponNotEligibleError
	require.ErrorAs(t, err, &notEligible)
	assert.Equal(t, "Coupon usage limit reached", notEligible.Message)
}

func TestRemoveCoupon_IsIdempotentAndKeepsUsage(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := env.f.addCoupon(activeCoupon("SAVE20"))

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	require.NoError(t, err)

	cart, err := env.svc.RemoveCoupon(context.Background(), userID, "save20")
	require.NoError(t, err)
	assert.Empty(t, cart.AppliedCoupons)

	// No refund on removal.
	assert.Equal(t, 1, coupon.CurrentTotalUses)
	assert.Equal(t, 1, env.f.usage[usageKey(coupon.ID, userID)])

	// Removing again, or removing an unknown code, still succeeds.
	_, err = env.svc.RemoveCoupon(context.Background(), userID, "SAVE20")
	assert.NoError(t, err)
	_, err = env.svc.RemoveCoupon(context.Background(), userID, "NEVER-APPLIED")
	assert.NoError(t, err)
}

func TestUpdateItem_RevalidationDropsCouponBelowMinimum(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("30.00", 10)
	coupon := activeCoupon("SPEND50")
	coupon.MinimumTotalPrice = decPtr("50.00")
	env.f.addCoupon(coupon)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 2})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "SPEND50")
	require.NoError(t, err)

	// Dropping to one item takes the total to 30, below the minimum.
	cart, err := env.svc.UpdateItem(context.Background(), userID, product.ID, &model.UpdateItemRequest{Quantity: 1})
	require.NoError(t, err)

	assert.Empty(t, cart.AppliedCoupons)
	assert.True(t, cart.Pricing.TotalDiscount.IsZero())

	// The consumed use stays consumed.
	assert.Equal(t, 1, env.f.coupons[coupon.ID].CurrentTotalUses)
}

func TestUpdateItem_RevalidationKeepsCouponAtUsageLimit(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := activeCoupon("ONCE")
	coupon.MaxTotalUses = intPtr(1)
	coupon.MaxUsesPerUser = intPtr(1)
	env.f.addCoupon(coupon)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "ONCE")
	require.NoError(t, err)

	// The apply itself exhausted both ceilings. A later cart mutation
	// must not evict the coupon over its own consumption.
	cart, err := env.svc.UpdateItem(context.Background(), userID, product.ID, &model.UpdateItemRequest{Quantity: 2})
	require.NoError(t, err)

	require.Len(t, cart.AppliedCoupons, 1)
	assert.Equal(t, "ONCE", cart.AppliedCoupons[0].Code)
}

func TestAddItem_AutoAppliesEligibleCoupon(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := activeCoupon("AUTO10")
	coupon.DiscountValue = dec("10")
	coupon.IsAutoApplied = true
	env.f.addCoupon(coupon)

	cart, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	require.Len(t, cart.AppliedCoupons, 1)
	assert.True(t, cart.AppliedCoupons[0].IsAutoApplied)
	assert.True(t, dec("10.00").Equal(cart.Pricing.TotalDiscount))

	// Auto attachment is free: no ledger row, no use consumed.
	assert.Equal(t, 0, env.f.coupons[coupon.ID].CurrentTotalUses)
	assert.Equal(t, 0, env.f.usage[usageKey(coupon.ID, userID)])
}

func TestAutoApply_SkipsCouponAtUsageLimit(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := activeCoupon("AUTOMAX")
	coupon.IsAutoApplied = true
	coupon.MaxTotalUses = intPtr(1)
	coupon.CurrentTotalUses = 1
	env.f.addCoupon(coupon)

	cart, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})

	require.NoError(t, err)
	assert.Empty(t, cart.AppliedCoupons)
	assert.True(t, cart.Pricing.TotalDiscount.IsZero())
}

func TestAutoApply_SkipsCouponAtPerUserLimit(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := activeCoupon("AUTOUSER")
	coupon.IsAutoApplied = true
	coupon.MaxUsesPerUser = intPtr(1)
	env.f.addCoupon(coupon)
	env.f.usage[usageKey(coupon.ID, userID)] = 1

	cart, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})

	require.NoError(t, err)
	assert.Empty(t, cart.AppliedCoupons)
}

func TestAutoApply_WaitsForMinimumThenAttaches(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("30.00", 10)
	coupon := activeCoupon("AUTO50")
	coupon.IsAutoApplied = true
	coupon.MinimumTotalPrice = decPtr("50.00")
	env.f.addCoupon(coupon)

	cart, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)
	assert.Empty(t, cart.AppliedCoupons)

	cart, err = env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)
	require.Len(t, cart.AppliedCoupons, 1)
	assert.Equal(t, "AUTO50", cart.AppliedCoupons[0].Code)
}

func TestPricing_FinalAmountFlooredAtZero(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("30.00", 10)

	first := activeCoupon("FIX20A")
	first.DiscountType = couponModel.DiscountTypeFixed
	first.DiscountValue = dec("20.00")
	env.f.addCoupon(first)

	second := activeCoupon("FIX20B")
	second.DiscountType = couponModel.DiscountTypeFixed
	second.DiscountValue = dec("20.00")
	env.f.addCoupon(second)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	_, err = env.svc.ApplyCoupon(context.Background(), userID, "FIX20A")
	require.NoError(t, err)
	cart, err := env.svc.ApplyCoupon(context.Background(), userID, "FIX20B")
	require.NoError(t, err)

	assert.True(t, dec("40.00").Equal(cart.Pricing.TotalDiscount))
	assert.True(t, cart.Pricing.FinalPayableAmount.IsZero())
}

func TestPricing_ZeroValueCouponSkippedInBreakdown(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("30.00", 10)
	coupon := activeCoupon("FREEBIE")
	coupon.DiscountType = couponModel.DiscountTypeFixed
	coupon.DiscountValue = dec("0")
	env.f.addCoupon(coupon)

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)

	cart, err := env.svc.ApplyCoupon(context.Background(), userID, "FREEBIE")
	require.NoError(t, err)

	// Still attached, but not in the breakdown.
	require.Len(t, cart.AppliedCoupons, 1)
	assert.Empty(t, cart.Pricing.DiscountDetails)
	assert.True(t, dec("30.00").Equal(cart.Pricing.FinalPayableAmount))
}

func TestClearCart_RemovesItemsAndCoupons(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("100.00", 10)
	coupon := env.f.addCoupon(activeCoupon("SAVE20"))

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)
	_, err = env.svc.ApplyCoupon(context.Background(), userID, "SAVE20")
	require.NoError(t, err)

	cart, err := env.svc.ClearCart(context.Background(), userID)
	require.NoError(t, err)

	assert.Empty(t, cart.Items)
	assert.Empty(t, cart.AppliedCoupons)
	assert.True(t, cart.Pricing.FinalPayableAmount.IsZero())

	// Usage survives the clear.
	assert.Equal(t, 1, env.f.usage[usageKey(coupon.ID, userID)])
}

func TestGetCart_PricingIsIdempotent(t *testing.T) {
	env := newTestEnv()
	userID := uuid.New()
	product := env.addProduct("47.77", 10)
	env.f.addCoupon(activeCoupon("SAVE15")).DiscountValue = dec("15")

	_, err := env.svc.AddItem(context.Background(), userID, &model.AddItemRequest{ProductID: product.ID.String(), Quantity: 1})
	require.NoError(t, err)
	_, err = env.svc.ApplyCoupon(context.Background(), userID, "SAVE15")
	require.NoError(t, err)

	first, err := env.svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	second, err := env.svc.GetCart(context.Background(), userID)
	require.NoError(t, err)

	assert.True(t, dec("7.17").Equal(first.Pricing.TotalDiscount))
	assert.True(t, first.Pricing.TotalDiscount.Equal(second.Pricing.TotalDiscount))
	assert.True(t, first.Pricing.FinalPayableAmount.Equal(second.Pricing.FinalPayableAmount))
}
