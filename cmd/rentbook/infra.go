package main

import (
	"context"
	"errors"
	"log/slog"

	"rentbook/internal/app/handlers/selection"
	"rentbook/internal/app/middleware"
	appoutbox "rentbook/internal/app/outbox"
	"rentbook/internal/app/policies"
	"rentbook/internal/app/uow"
	"rentbook/internal/infra/broker/kafka"
	"rentbook/internal/infra/config"
	dbmongo "rentbook/internal/infra/db/mongo"
	"rentbook/internal/infra/obs"
	infraoutbox "rentbook/internal/infra/outbox"
	"rentbook/internal/infra/storage/memory"
	"rentbook/internal/infra/storage/s3"
)

// infrastructure holds the adapters picked from configuration.
type infrastructure struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	idempotency middleware.IdempotencyStore
	sessions    selection.Store
	photos      policies.PhotoUploader
	checks      map[string]obs.Check
	workers     []func(context.Context) error
	closers     []func(context.Context) error
}

// close releases adapters in reverse order of creation.
func (i *infrastructure) close(ctx context.Context, logger *slog.Logger) {
	for j := len(i.closers) - 1; j >= 0; j-- {
		if err := i.closers[j](ctx); err != nil {
			logger.Error("close failed", "error", err)
		}
	}
}

// buildInfrastructure uses Mongo when MONGO_URI is set and memory otherwise.
// Kafka and S3 are wired only when configured.
func buildInfrastructure(ctx context.Context, cfg config.Config, logger *slog.Logger) (*infrastructure, error) {
	inf := &infrastructure{
		sessions: memory.NewSessionStore(),
		checks:   map[string]obs.Check{},
	}

	var relay *infraoutbox.Relay
	if cfg.KafkaEnabled() {
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			return nil, err
		}
		inf.closers = append(inf.closers, func(context.Context) error { return producer.Close() })
		relay = &infraoutbox.Relay{Producer: producer, TopicPrefix: cfg.KafkaTopicPrefix}
		logger.Info("kafka relay enabled", "brokers", cfg.KafkaBrokers)
	}

	if cfg.MongoEnabled() {
		if err := inf.useMongo(ctx, cfg, relay, logger); err != nil {
			inf.close(ctx, logger)
			return nil, err
		}
	} else {
		inf.useMemory(cfg, relay, logger)
	}

	if cfg.S3Enabled() {
		client, err := s3.NewClient(s3.Options{
			Endpoint:       cfg.S3Endpoint,
			UseSSL:         cfg.S3UseSSL,
			AccessKey:      cfg.S3AccessKey,
			SecretKey:      cfg.S3SecretKey,
			Bucket:         cfg.S3Bucket,
			PublicEndpoint: cfg.S3PublicEndpoint,
		}, logger)
		if err != nil {
			inf.close(ctx, logger)
			return nil, err
		}
		inf.photos = client
		inf.checks["s3"] = client.Ping
	} else {
		logger.Warn("S3_BUCKET not set, photo uploads disabled")
	}
	return inf, nil
}

func (i *infrastructure) useMemory(cfg config.Config, relay *infraoutbox.Relay, logger *slog.Logger) {
	i.factory = memory.Factory{
		ListingsRepo:     memory.NewListingRepository(),
		AvailabilityRepo: memory.NewAvailabilityRepository(),
		BookingRepo:      memory.NewBookingRepository(),
	}
	var publisher memory.Publisher
	if relay != nil {
		publisher = relay
	}
	i.outbox = memory.NewOutbox(publisher, logger)
	i.idempotency = memory.NewIdempotencyStore(cfg.IdempotencyTTL)
	logger.Info("storage: in-memory")
}

func (i *infrastructure) useMongo(ctx context.Context, cfg config.Config, relay *infraoutbox.Relay, logger *slog.Logger) error {
	client, err := dbmongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return err
	}
	i.closers = append(i.closers, client.Close)
	i.checks["mongo"] = client.Ping

	listingsRepo := dbmongo.NewListingRepository(client.DB)
	bookingRepo := dbmongo.NewBookingRepository(client.DB)
	if err := errors.Join(listingsRepo.EnsureIndexes(ctx), bookingRepo.EnsureIndexes(ctx)); err != nil {
		return err
	}
	i.factory = dbmongo.Factory{
		DB:               client.DB,
		ListingsRepo:     listingsRepo,
		AvailabilityRepo: dbmongo.NewAvailabilityRepository(client.DB),
		BookingRepo:      bookingRepo,
	}

	store, err := infraoutbox.NewStore(ctx, client.DB)
	if err != nil {
		return err
	}
	i.outbox = store
	if i.idempotency, err = dbmongo.NewIdempotencyStore(ctx, client.DB, cfg.IdempotencyTTL); err != nil {
		return err
	}

	if relay != nil {
		worker := &infraoutbox.Worker{
			Store:    store,
			Relay:    *relay,
			Interval: cfg.OutboxPollInterval,
			Backoff:  cfg.RetryBackoff,
			Logger:   logger,
		}
		i.workers = append(i.workers, worker.Run)
	} else {
		logger.Warn("KAFKA_BROKERS not set, outbox records stay pending")
	}
	logger.Info("storage: mongo", "db", cfg.MongoDB)
	return nil
}
