package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"shopcart-backend/internal/domains/coupon/model"
	"shopcart-backend/internal/domains/coupon/service"
	"shopcart-backend/internal/shared/response"
	"shopcart-backend/internal/shared/utils"
)

// AdminHandler exposes the admin-only coupon management API.
type AdminHandler struct {
	service service.CouponServiceInterface
}

func NewAdminHandler(service service.CouponServiceInterface) *AdminHandler {
	return &AdminHandler{service: service}
}

// CreateCoupon handles POST /v1/admin/coupons
func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	var req model.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	coupon, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, coupon)
}

// UpdateCoupon handles PUT /v1/admin/coupons/:id
func (h *AdminHandler) UpdateCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid coupon ID")
		return
	}

	var req model.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		response.UnprocessableEntity(c, err.Error())
		return
	}

	coupon, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

// GetCoupon handles GET /v1/admin/coupons/:id
func (h *AdminHandler) GetCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid coupon ID")
		return
	}

	coupon, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

// ListCoupons handles GET /v1/admin/coupons
func (h *AdminHandler) ListCoupons(c *gin.Context) {
	var filter model.ListCouponsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter.Normalize()

	coupons, total, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, coupons, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// UpdateCouponStatus handles PATCH /v1/admin/coupons/:id/status
func (h *AdminHandler) UpdateCouponStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid coupon ID")
		return
	}

	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		response.BadRequest(c, "is_active is required")
		return
	}

	if err := h.service.SetStatus(c.Request.Context(), id, *req.IsActive); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"id": id, "is_active": *req.IsActive})
}

// DeleteCoupon handles DELETE /v1/admin/coupons/:id
func (h *AdminHandler) DeleteCoupon(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid coupon ID")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// GetUsageHistory handles GET /v1/admin/coupons/:id/usage
func (h *AdminHandler) GetUsageHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid coupon ID")
		return
	}

	filter, err := parseUsageFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	usages, total, err := h.service.GetUsageHistory(c.Request.Context(), id, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, usages, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

// ExportUsageHistory handles GET /v1/admin/coupons/:id/usage/export
func (h *AdminHandler) ExportUsageHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid coupon ID")
		return
	}

	filter, err := parseUsageFilter(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	data, filename, err := h.service.ExportUsageHistory(c.Request.Context(), id, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func parseUsageFilter(c *gin.Context) (*model.UsageHistoryFilter, error) {
	filter := &model.UsageHistoryFilter{}

	var query struct {
		StartDate *string `form:"start_date"`
		EndDate   *string `form:"end_date"`
		UserID    *string `form:"user_id"`
		Page      int     `form:"page"`
		Limit     int     `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		return nil, errors.New("invalid query parameters")
	}

	if query.StartDate != nil {
		t, err := utils.ParseDate(*query.StartDate)
		if err != nil {
			return nil, errors.New("invalid start_date")
		}
		filter.StartDate = &t
	}
	if query.EndDate != nil {
		t, err := utils.ParseDate(*query.EndDate)
		if err != nil {
			return nil, errors.New("invalid end_date")
		}
		filter.EndDate = &t
	}
	if query.UserID != nil {
		uid, err := uuid.Parse(*query.UserID)
		if err != nil {
			return nil, errors.New("invalid user_id")
		}
		filter.UserID = &uid
	}

	filter.Page = query.Page
	filter.Limit = query.Limit

	return filter, nil
}

func (h *AdminHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrCouponNotFound):
		response.NotFound(c, "Coupon not found")
	case errors.Is(err, model.ErrCouponCodeExists):
		response.Conflict(c, "Coupon code already exists")
	case errors.Is(err, model.ErrInvalidDiscount):
		response.UnprocessableEntity(c, "Invalid discount configuration")
	default:
		response.InternalServerError(c, "Something went wrong")
	}
}
