package main

import (
	"context"
	"log"

	"unionhub/internal/app/bootstrap"
	"unionhub/internal/platform/logging"
)

// Worker process entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring.
// 3) Start the poll loop (election scheduler + outbox relays).
func main() {
	logging.Setup()

	app, err := bootstrap.BuildWorker()
	if err != nil {
		log.Fatalf("bootstrap worker failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("worker shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("unionhub worker stopped with error: %v", err)
	}
}
