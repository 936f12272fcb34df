package main

import (
	"log"

	"github.com/hibiken/asynq"

	"shopcart-backend/internal/shared"
)

// asynqServer wraps the asynq server and its mux.
type asynqServer struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func newAsynqServer(cfg *WorkerConfig) *asynqServer {
	server := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 20,
			Queues: map[string]int{
				shared.QueueHigh:    20,
				shared.QueueDefault: 10,
				shared.QueueLow:     5,
			},
		},
	)

	return &asynqServer{
		server: server,
		mux:    asynq.NewServeMux(),
	}
}

func (s *asynqServer) start(registry *HandlerRegistry) error {
	registry.RegisterHandlers(s.mux)

	log.Println("Worker started")
	return s.server.Start(s.mux)
}

func (s *asynqServer) shutdown() {
	s.server.Shutdown()
}
