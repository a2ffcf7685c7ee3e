package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kanellos-me/console/config"
	"github.com/kanellos-me/console/internal/devserver"
	"github.com/kanellos-me/console/internal/logging"
	"github.com/kanellos-me/console/internal/tracing"
)

func main() {
	casing := flag.String("casing", "camel", "field names: camel, snake or pascal")
	envelope := flag.String("envelope", "bare", "collection wrapper: bare, data, items or named")
	grouped := flag.Bool("grouped-analytics", false, "answer the dashboard in the grouped form")
	noMine := flag.Bool("no-my-tickets", false, "answer 404 for the personal ticket listing")
	noUpload := flag.Bool("no-upload", false, "leave the showcase upload endpoint out")
	publicURL := flag.String("public-url", "", "prefix for uploaded file URLs")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Configure(cfg.App.Environment, cfg.App.LogLevel)
	devserver.SetGinMode(cfg.App.Environment)

	opts := devserver.Options{
		GroupedAnalytics: *grouped,
		DisableMyTickets: *noMine,
		DisableUpload:    *noUpload,
		PublicURL:        *publicURL,
	}
	if opts.Casing, err = devserver.ParseCasing(*casing); err != nil {
		log.Fatal(err)
	}
	if opts.Envelope, err = devserver.ParseEnvelope(*envelope); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.ServiceName == "console" {
		cfg.Tracing.ServiceName = "console-devserver"
	}
	shutdown, err := tracing.Setup(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		log.Fatalf("Failed to set up tracing: %v", err)
	}

	runErr := devserver.New(cfg.DevServer, opts).Run(ctx)
	if err := shutdown(context.Background()); err != nil {
		log.Printf("tracing flush: %v", err)
	}
	if runErr != nil {
		log.Fatalf("devserver: %v", runErr)
	}
}
