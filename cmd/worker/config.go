package main

import "os"

// WorkerConfig holds the worker process configuration.
type WorkerConfig struct {
	RedisAddr string
}

func loadWorkerConfig() *WorkerConfig {
	redisAddr := os.Getenv("REDIS_HOST")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	return &WorkerConfig{
		RedisAddr: redisAddr,
	}
}
