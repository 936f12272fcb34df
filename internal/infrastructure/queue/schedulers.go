package queue

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"shopcart-backend/internal/config"
	"shopcart-backend/internal/shared"
	"shopcart-backend/pkg/logger"
)

// Scheduler registers the recurring maintenance jobs.
type Scheduler struct {
	scheduler *asynq.Scheduler
	jobConfig config.JobConfig
}

func NewScheduler(redisAddress string, jobConfig config.JobConfig) *Scheduler {
	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: redisAddress},
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler: scheduler,
		jobConfig: jobConfig,
	}
}

func (s *Scheduler) RegisterMaintenanceJobs() error {
	if err := s.registerDeactivateExpiredCouponsJob(); err != nil {
		return err
	}
	if err := s.registerPurgeStaleCartsJob(); err != nil {
		return err
	}
	return nil
}

// Expired coupons are deactivated hourly. The validator also checks
// expiry at read time; this keeps the stored flag and public listings
// honest between reads.
func (s *Scheduler) registerDeactivateExpiredCouponsJob() error {
	payload, err := json.Marshal(shared.DeactivateExpiredCouponsPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeDeactivateExpiredCoupons, payload)

	_, err = s.scheduler.Register(
		"0 * * * *", // Hourly
		task,
		asynq.Queue(shared.QueueDefault),
		asynq.MaxRetry(2),
		asynq.Timeout(5*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register DeactivateExpiredCoupons job", err)
		return err
	}

	logger.Info("Registered DeactivateExpiredCoupons: hourly", map[string]interface{}{})
	return nil
}

// Stale carts are purged daily during low traffic.
func (s *Scheduler) registerPurgeStaleCartsJob() error {
	payload, err := json.Marshal(shared.PurgeStaleCartsPayload{
		OlderThanDays: s.jobConfig.StaleCartDays,
	})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypePurgeStaleCarts, payload)

	_, err = s.scheduler.Register(
		"0 4 * * *", // Daily at 4 AM
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(2),
		asynq.Timeout(10*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register PurgeStaleCarts job", err)
		return err
	}

	logger.Info("Registered PurgeStaleCarts: daily at 4 AM", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
