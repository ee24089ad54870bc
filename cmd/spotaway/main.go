package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spotaway/internal/app/commands"
	bookingapp "spotaway/internal/app/handlers/booking"
	listingapp "spotaway/internal/app/handlers/listings"
	reviewapp "spotaway/internal/app/handlers/reviews"
	"spotaway/internal/app/middleware"
	appoutbox "spotaway/internal/app/outbox"
	"spotaway/internal/app/queries"
	authsvc "spotaway/internal/app/services/auth"
	"spotaway/internal/app/uow"
	domainauth "spotaway/internal/domain/auth"
	domainuser "spotaway/internal/domain/user"
	"spotaway/internal/infra/broker/kafka"
	"spotaway/internal/infra/config"
	mongodb "spotaway/internal/infra/db/mongo"
	ginserver "spotaway/internal/infra/http/gin"
	"spotaway/internal/infra/inbox"
	"spotaway/internal/infra/obs"
	infraoutbox "spotaway/internal/infra/outbox"
	"spotaway/internal/infra/security"
	"spotaway/internal/infra/storage/memory"
	"spotaway/internal/infra/storage/s3"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	store, err := buildStorage(cfg, logger)
	if err != nil {
		logger.Error("storage initialization failed", "error", err)
		os.Exit(1)
	}

	uploader := buildUploader(cfg, logger)
	app := buildApplication(cfg, store, uploader, logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: store.ready,
	}, app)

	if len(cfg.KafkaBrokers) > 0 && store.mongo != nil {
		runEventPipeline(ctx, cfg, store, logger)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// storage bundles the mode-dependent persistence pieces behind the
// application ports.
type storage struct {
	factory     uow.UoWFactory
	outbox      appoutbox.Outbox
	outboxStore *infraoutbox.Store
	idempotency middleware.IdempotencyStore
	users       domainuser.Repository
	sessions    domainauth.SessionStore
	mongo       *mongodb.Client
	ready       func() error
}

func buildStorage(cfg config.Config, logger *slog.Logger) (storage, error) {
	if cfg.StorageMode == "mongo" {
		client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return storage{}, err
		}
		factory := mongodb.NewFactory(client.DB)
		outboxStore := infraoutbox.NewStore(client.DB)
		logger.Info("mongo storage ready", "database", cfg.MongoDB)
		return storage{
			factory:     factory,
			outbox:      outboxStore,
			outboxStore: outboxStore,
			idempotency: mongodb.NewIdempotencyStore(client.DB),
			users:       factory.UsersRepo,
			sessions:    factory.SessionsStore,
			mongo:       client,
			ready: func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(pingCtx)
			},
		}, nil
	}

	factory := memory.NewFactory()
	return storage{
		factory:     factory,
		outbox:      memory.NewOutbox(),
		idempotency: memory.NewIdempotencyStore(),
		users:       factory.UsersRepo,
		sessions:    factory.SessionsStore,
		ready:       func() error { return nil },
	}, nil
}

func buildUploader(cfg config.Config, logger *slog.Logger) s3.Uploader {
	if cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
		logger.Warn("object storage credentials missing, uploads disabled")
		return s3.NoopUploader{}
	}
	client, err := s3.NewClient(cfg.S3Endpoint, cfg.S3UseSSL, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket, cfg.S3PublicEndpoint, logger)
	if err != nil {
		logger.Warn("object storage unavailable, uploads disabled", "error", err)
		return s3.NoopUploader{}
	}
	return client
}

func buildApplication(cfg config.Config, store storage, uploader s3.Uploader, logger *slog.Logger) ginserver.Handlers {
	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()

	commands.RegisterHandler(commandBus, bookingapp.AdmitBookingCommand{}.Key(), &bookingapp.AdmitBookingHandler{
		UoWFactory: store.factory,
		Outbox:     store.outbox,
		Encoder:    appoutbox.JSONEventEncoder{},
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, listingapp.CreateListingCommand{}.Key(), &listingapp.CreateListingHandler{
		UoWFactory: store.factory,
		Outbox:     store.outbox,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, listingapp.UpdateListingCommand{}.Key(), &listingapp.UpdateListingHandler{
		UoWFactory: store.factory,
		Outbox:     store.outbox,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, listingapp.DeleteListingCommand{}.Key(), &listingapp.DeleteListingHandler{
		UoWFactory: store.factory,
		Outbox:     store.outbox,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, listingapp.AttachListingImageCommand{}.Key(), &listingapp.AttachListingImageHandler{
		UoWFactory: store.factory,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, listingapp.DeleteListingImageCommand{}.Key(), &listingapp.DeleteListingImageHandler{
		UoWFactory: store.factory,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.AdmitReviewCommand{}.Key(), &reviewapp.AdmitReviewHandler{
		UoWFactory: store.factory,
		Precision:  cfg.RatingPrecision,
		Outbox:     store.outbox,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.UpdateReviewCommand{}.Key(), &reviewapp.UpdateReviewHandler{
		UoWFactory: store.factory,
		Precision:  cfg.RatingPrecision,
		Outbox:     store.outbox,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.DeleteReviewCommand{}.Key(), &reviewapp.DeleteReviewHandler{
		UoWFactory: store.factory,
		Outbox:     store.outbox,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.AttachReviewImageCommand{}.Key(), &reviewapp.AttachReviewImageHandler{
		UoWFactory: store.factory,
		Logger:     logger,
	})
	commands.RegisterHandler(commandBus, reviewapp.DeleteReviewImageCommand{}.Key(), &reviewapp.DeleteReviewImageHandler{
		UoWFactory: store.factory,
		Logger:     logger,
	})

	queries.RegisterHandler(queryBus, bookingapp.CheckAvailabilityQuery{}.Key(), &bookingapp.CheckAvailabilityHandler{
		UoWFactory: store.factory,
	})
	queries.RegisterHandler(queryBus, bookingapp.ListGuestBookingsQuery{}.Key(), &bookingapp.ListGuestBookingsHandler{
		UoWFactory: store.factory,
	})
	queries.RegisterHandler(queryBus, listingapp.SearchListingsQuery{}.Key(), &listingapp.SearchListingsHandler{
		UoWFactory: store.factory,
		Logger:     logger,
	})
	queries.RegisterHandler(queryBus, listingapp.GetListingDetailQuery{}.Key(), &listingapp.GetListingDetailHandler{
		UoWFactory: store.factory,
	})
	queries.RegisterHandler(queryBus, listingapp.OwnerListingsQuery{}.Key(), &listingapp.OwnerListingsHandler{
		UoWFactory: store.factory,
	})
	queries.RegisterHandler(queryBus, reviewapp.ListListingReviewsQuery{}.Key(), &reviewapp.ListListingReviewsHandler{
		UoWFactory: store.factory,
	})
	queries.RegisterHandler(queryBus, reviewapp.ListAuthorReviewsQuery{}.Key(), &reviewapp.ListAuthorReviewsHandler{
		UoWFactory: store.factory,
	})

	commandPipeline := middleware.ChainCommands(
		commandBus,
		middleware.Validation(selfValidator{}),
		middleware.Idempotency(store.idempotency, nil),
		middleware.Transaction(store.factory, nil),
		middleware.OutboxFlush(store.outbox),
	)
	queryPipeline := middleware.ChainQueries(queryBus)

	service := &authsvc.Service{
		Users:      store.users,
		Sessions:   store.sessions,
		Passwords:  security.BcryptHasher{},
		Tokens:     security.RandomTokenGenerator{},
		SessionTTL: cfg.SessionTTL,
		Logger:     logger,
	}
	authMW := ginserver.AuthMiddleware{Service: service, Logger: logger}

	return ginserver.Handlers{
		Auth:           ginserver.AuthHandler{Service: service, Logger: logger},
		Listing:        ginserver.ListingHandler{Commands: commandPipeline, Queries: queryPipeline},
		Booking:        ginserver.BookingHandler{Commands: commandPipeline, Queries: queryPipeline},
		Review:         ginserver.ReviewHandler{Commands: commandPipeline, Queries: queryPipeline},
		Upload:         ginserver.UploadHandler{Uploader: uploader},
		AuthMiddleware: authMW.Handle,
	}
}

// runEventPipeline starts the outbox relay and the audit consumer. Both stop
// with the root context.
func runEventPipeline(ctx context.Context, cfg config.Config, store storage, logger *slog.Logger) {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		logger.Error("kafka producer unavailable, events stay queued", "error", err)
		return
	}
	worker := &infraoutbox.Worker{
		Store:       store.outboxStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	audit := kafka.EventAuditHandler{
		Inbox:  inbox.NewStore(store.mongo.DB, "spotaway-audit"),
		Logger: logger,
	}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "spotaway-audit", nil, audit)
	if err != nil {
		logger.Error("kafka consumer unavailable, audit trail disabled", "error", err)
		return
	}
	topics := []string{
		cfg.KafkaTopicPrefix + "booking.events.v1",
		cfg.KafkaTopicPrefix + "review.events.v1",
		cfg.KafkaTopicPrefix + "listing.events.v1",
	}
	go func() {
		defer consumer.Close()
		if err := consumer.Run(ctx, topics); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("audit consumer stopped", "error", err)
		}
	}()
}

// selfValidator lets messages opt in to pipeline validation by implementing
// Validate.
type selfValidator struct{}

func (selfValidator) Validate(_ context.Context, message any) error {
	if v, ok := message.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return nil
}
