package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"shopcart-backend/internal/domains/coupon/repository"
	"shopcart-backend/internal/shared"
	"shopcart-backend/internal/shared/utils"
	"shopcart-backend/pkg/logger"
)

// DeactivateExpiredHandler flips is_active off for coupons past their
// expiry date. Scheduled hourly; the validator also checks expiry at
// read time, so this only keeps the stored flag honest.
type DeactivateExpiredHandler struct {
	couponRepo repository.CouponRepository
}

func NewDeactivateExpiredHandler(couponRepo repository.CouponRepository) *DeactivateExpiredHandler {
	return &DeactivateExpiredHandler{couponRepo: couponRepo}
}

func (h *DeactivateExpiredHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.DeactivateExpiredCouponsPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	start := time.Now()

	deactivated, err := h.couponRepo.DeactivateExpired(ctx, start)
	if err != nil {
		logger.Error("Failed to deactivate expired coupons", err)
		return err
	}

	logger.Info("Deactivate expired coupons job completed", map[string]interface{}{
		"deactivated": deactivated,
		"duration":    time.Since(start).String(),
	})

	return nil
}
