package main

import (
	"github.com/hibiken/asynq"

	cartJob "shopcart-backend/internal/domains/cart/job"
	couponJob "shopcart-backend/internal/domains/coupon/job"
	"shopcart-backend/internal/shared"
	"shopcart-backend/pkg/container"
)

// HandlerRegistry holds the task handlers for the worker.
type HandlerRegistry struct {
	deactivateExpired *couponJob.DeactivateExpiredHandler
	purgeStaleCarts   *cartJob.PurgeStaleCartsHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		deactivateExpired: couponJob.NewDeactivateExpiredHandler(c.CouponRepo),
		purgeStaleCarts:   cartJob.NewPurgeStaleCartsHandler(c.CartRepo),
	}
}

// RegisterHandlers maps task types to their handlers.
func (r *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeDeactivateExpiredCoupons, r.deactivateExpired.ProcessTask)
	mux.HandleFunc(shared.TypePurgeStaleCarts, r.purgeStaleCarts.ProcessTask)
}
