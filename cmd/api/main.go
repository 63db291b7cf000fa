package main

import (
	"log"

	"github.com/adaosanto/sign-pdf/internal/bootstrap"
	"github.com/adaosanto/sign-pdf/internal/shared/config"
	"github.com/adaosanto/sign-pdf/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting PDF signer API on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
