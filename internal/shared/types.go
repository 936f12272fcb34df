package shared

// Asynq task types, "domain:action" format.
const (
	TypeDeactivateExpiredCoupons = "coupon:deactivate_expired"
	TypePurgeStaleCarts          = "cart:purge_stale"
)

// Queue names used by the worker.
const (
	QueueHigh    = "high"
	QueueDefault = "default"
	QueueLow     = "low"
)

// DeactivateExpiredCouponsPayload is carried by the periodic coupon
// deactivation task. Empty for now; kept as a struct so fields can be
// added without changing the task type.
type DeactivateExpiredCouponsPayload struct{}

// PurgeStaleCartsPayload configures the stale cart purge task.
type PurgeStaleCartsPayload struct {
	OlderThanDays int `json:"older_than_days"`
}
