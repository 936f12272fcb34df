package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopcart-backend/internal/domains/cart/model"
	"shopcart-backend/internal/domains/cart/service"
	couponModel "shopcart-backend/internal/domains/coupon/model"
	productModel "shopcart-backend/internal/domains/product/model"
	"shopcart-backend/internal/shared/middleware"
	"shopcart-backend/internal/shared/response"
)

// CartHandler exposes the authenticated cart API.
type CartHandler struct {
	service service.CartServiceInterface
}

func NewCartHandler(service service.CartServiceInterface) *CartHandler {
	return &CartHandler{service: service}
}

func (h *CartHandler) userID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return userID, true
}

// GetCart handles GET /v1/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// AddItem handles POST /v1/cart/items
func (h *CartHandler) AddItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req model.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	cart, err := h.service.AddItem(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// UpdateItem handles PUT /v1/cart/items/:productId
func (h *CartHandler) UpdateItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req model.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	cart, err := h.service.UpdateItem(c.Request.Context(), userID, productID, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// RemoveItem handles DELETE /v1/cart/items/:productId
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	cart, err := h.service.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// ClearCart handles DELETE /v1/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	cart, err := h.service.ClearCart(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// ApplyCoupon handles POST /v1/cart/coupons
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	var req model.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	cart, err := h.service.ApplyCoupon(c.Request.Context(), userID, req.Code)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// RemoveCoupon handles DELETE /v1/cart/coupons/:code
func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "Coupon code is required")
		return
	}

	cart, err := h.service.RemoveCoupon(c.Request.Context(), userID, code)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

// AutoApplyCoupons handles POST /v1/cart/auto-apply
func (h *CartHandler) AutoApplyCoupons(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}

	cart, err := h.service.AutoApplyCoupons(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, cart)
}

func (h *CartHandler) handleError(c *gin.Context, err error) {
	var notEligible *service.CouponNotEligibleError

	switch {
	case errors.As(err, &notEligible):
		response.UnprocessableEntity(c, notEligible.Message)
	case errors.Is(err, model.ErrCouponAlreadyApplied):
		response.Conflict(c, "Coupon already applied to cart")
	case errors.Is(err, couponModel.ErrCouponUsageLimitReached):
		response.Conflict(c, "Coupon usage limit reached")
	case errors.Is(err, model.ErrCartItemNotFound):
		response.NotFound(c, "Item not found in cart")
	case errors.Is(err, productModel.ErrProductNotFound):
		response.NotFound(c, "Product not found")
	case errors.Is(err, model.ErrProductNotAvailable):
		response.UnprocessableEntity(c, "Product is not available")
	case errors.Is(err, model.ErrInsufficientStock):
		response.UnprocessableEntity(c, "Insufficient stock")
	case errors.Is(err, model.ErrInvalidQuantity):
		response.BadRequest(c, "Quantity cannot be negative")
	default:
		response.InternalServerError(c, "Something went wrong")
	}
}
