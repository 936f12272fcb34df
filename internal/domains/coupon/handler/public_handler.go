package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"shopcart-backend/internal/domains/coupon/model"
	"shopcart-backend/internal/domains/coupon/service"
	"shopcart-backend/internal/shared/middleware"
	"shopcart-backend/internal/shared/response"
)

// PublicHandler exposes the customer-facing coupon API.
type PublicHandler struct {
	service   service.CouponServiceInterface
	snapshots service.CartSnapshotProvider
}

func NewPublicHandler(svc service.CouponServiceInterface, snapshots service.CartSnapshotProvider) *PublicHandler {
	return &PublicHandler{
		service:   svc,
		snapshots: snapshots,
	}
}

// ListActiveCoupons handles GET /v1/coupons
func (h *PublicHandler) ListActiveCoupons(c *gin.Context) {
	coupons, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, "Something went wrong")
		return
	}

	response.Success(c, http.StatusOK, coupons)
}

// ValidateCoupon handles POST /v1/coupons/validate
//
// Runs the full eligibility check against the caller's current cart
// without applying anything. The response always carries a
// ValidationResult; an ineligible coupon is not an HTTP error.
func (h *PublicHandler) ValidateCoupon(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req model.ValidateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	cart, err := h.snapshots.SnapshotForUser(c.Request.Context(), userID)
	if err != nil {
		response.InternalServerError(c, "Something went wrong")
		return
	}

	result, err := h.service.Validate(c.Request.Context(), req.Code, userID, cart)
	if err != nil {
		response.InternalServerError(c, "Something went wrong")
		return
	}

	response.Success(c, http.StatusOK, result)
}
