package main

import (
	"voyageiq/internal/api"
	"voyageiq/internal/health"
	"voyageiq/pkg/app"
	"voyageiq/pkg/config"
	"voyageiq/pkg/events"
	httputil "voyageiq/pkg/http"
	"voyageiq/pkg/validation"
)

const ServiceName = "voyageiq-api"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	errs := httputil.NewErrorHandler(cfg.Log, cfg.IsProduction())
	publisher := newPublisher(cfg)
	stores := api.MongoStores(cfg)

	deps := api.Deps{
		Validator:    validation.New(cfg.Log),
		Errors:       errs,
		Publisher:    publisher,
		Log:          cfg.Log,
		DefaultLimit: cfg.DefaultPageLimit,
		MaxLimit:     cfg.MaxPageLimit,
	}
	if cfg.JWTSecret != "" {
		deps.Auth = api.NewAuthenticator(cfg, stores.Users, errs)
	} else {
		cfg.Log.Warn("JWT_SECRET not set, resource routes are unauthenticated")
	}

	application := app.NewApplication(cfg, errs)
	application.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
	})
	application.SetApp(health.NewHandler(cfg.Client.Mongo, cfg.Log), api.New(stores, deps))
	application.Run()
}

func newPublisher(cfg *config.Config) events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("KAFKA_BROKERS not set, change events are disabled")
		return events.Noop{}
	}

	publisher, err := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, ServiceName, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka publisher", "error", err)
	}
	publisher.Use(events.LoggingMiddleware(cfg.Log))
	cfg.Log.Info("Change events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	return publisher
}
