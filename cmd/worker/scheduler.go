package main

import (
	"log"

	"shopcart-backend/internal/config"
	"shopcart-backend/internal/infrastructure/queue"
)

func startScheduler(cfg *WorkerConfig, jobConfig config.JobConfig) *queue.Scheduler {
	scheduler := queue.NewScheduler(cfg.RedisAddr, jobConfig)

	if err := scheduler.RegisterMaintenanceJobs(); err != nil {
		log.Fatalf("Failed to register scheduled jobs: %v", err)
	}

	go func() {
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Scheduler error: %v", err)
		}
	}()

	log.Println("Scheduler started")
	return scheduler
}
