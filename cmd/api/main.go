package main

import (
	"context"
	"log"

	"tribunal/internal/app/bootstrap"
)

// API process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (postgres, engine module, HTTP server).
// 3) Serve until the listener stops.
func main() {
	log.Println("tribunal api starting")
	app, err := bootstrap.BuildAPI()
	if err != nil {
		log.Fatalf("bootstrap api failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("api shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("tribunal api stopped with error: %v", err)
	}
}
