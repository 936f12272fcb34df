package main

import (
	"log"

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

	if err := Serve(c); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
