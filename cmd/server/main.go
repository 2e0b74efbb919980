package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wishloop/server/internal/app"

	_ "github.com/wishloop/server/cmd/server/docs"
)

//	@title			Wishloop API
//	@version		1.0
//	@description	Goal and habit tracking with AI-assisted idea generation.
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("server error: %v", err)
		}
	case <-quit:
		if err := a.Shutdown(context.Background()); err != nil {
			log.Fatalf("shutdown failed: %v", err)
		}
	}
}
