package job

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"shopcart-backend/internal/domains/cart/repository"
	"shopcart-backend/internal/shared"
	"shopcart-backend/internal/shared/utils"
	"shopcart-backend/pkg/logger"
)

// PurgeStaleCartsHandler deletes carts nobody has touched in a while.
// Scheduled daily.
type PurgeStaleCartsHandler struct {
	cartRepo repository.CartRepository
}

func NewPurgeStaleCartsHandler(cartRepo repository.CartRepository) *PurgeStaleCartsHandler {
	return &PurgeStaleCartsHandler{cartRepo: cartRepo}
}

func (h *PurgeStaleCartsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload shared.PurgeStaleCartsPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	days := payload.OlderThanDays
	if days <= 0 {
		days = 30
	}

	start := time.Now()
	cutoff := start.AddDate(0, 0, -days)

	purged, err := h.cartRepo.DeleteStale(ctx, cutoff)
	if err != nil {
		logger.Error("Failed to purge stale carts", err)
		return err
	}

	logger.Info("Purge stale carts job completed", map[string]interface{}{
		"purged":   purged,
		"cutoff":   cutoff,
		"duration": time.Since(start).String(),
	})

	return nil
}
