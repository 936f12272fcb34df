package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"shopcart-backend/pkg/container"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	c, err := container.NewContainer()
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer c.Cleanup()

	workerCfg := loadWorkerConfig()

	registry := initializeHandlers(c)

	server := newAsynqServer(workerCfg)
	if err := server.start(registry); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	scheduler := startScheduler(workerCfg, c.Config.Jobs)

	waitForShutdown()

	scheduler.Shutdown()
	server.shutdown()
	log.Println("Worker exited")
}

func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Printf("Received %s, shutting down", sig)
}
