package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	couponModel "shopcart-backend/internal/domains/coupon/model"
)

// Cart is one user's cart aggregate: items plus whatever coupons are
// attached. Totals and discounts are never stored; they are recomputed
// from this state on every read.
type Cart struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	Items          []CartItem      `json:"items"`
	AppliedCoupons []AppliedCoupon `json:"applied_coupons"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalItems is the sum of item quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// TotalBeforeDiscount is the sum of item subtotals.
func (c *Cart) TotalBeforeDiscount() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// HasCoupon reports whether the coupon is already attached.
func (c *Cart) HasCoupon(couponID uuid.UUID) bool {
	for _, ac := range c.AppliedCoupons {
		if ac.CouponID == couponID {
			return true
		}
	}
	return false
}

// Snapshot converts the cart into the read-only view the coupon engine
// consumes.
func (c *Cart) Snapshot() *couponModel.CartSnapshot {
	lines := make([]couponModel.CartLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, couponModel.CartLine{
			ProductID: item.ProductID,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return &couponModel.CartSnapshot{Lines: lines}
}

// CartItem is one product line. Price is captured at add time and
// refreshed on quantity updates, not at checkout.
type CartItem struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	CartID      uuid.UUID       `json:"cart_id" db:"cart_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Quantity    int             `json:"quantity" db:"quantity"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Subtotal returns price × quantity.
func (i *CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// AppliedCoupon links a coupon to a cart. Attachment order is
// preserved; the pricing breakdown lists discounts in this order.
type AppliedCoupon struct {
	ID            uuid.UUID          `json:"id" db:"id"`
	CartID        uuid.UUID          `json:"cart_id" db:"cart_id"`
	CouponID      uuid.UUID          `json:"coupon_id" db:"coupon_id"`
	IsAutoApplied bool               `json:"is_auto_applied" db:"is_auto_applied"`
	AppliedAt     time.Time          `json:"applied_at" db:"applied_at"`
	Coupon        couponModel.Coupon `json:"coupon"`
}
