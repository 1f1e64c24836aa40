package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"emergencyreport/internal/adapter/api"
	"emergencyreport/internal/adapter/api/handler"
	apimiddleware "emergencyreport/internal/adapter/api/middleware"
	"emergencyreport/internal/adapter/api/router"
	"emergencyreport/internal/adapter/repository"
	domainrepo "emergencyreport/internal/domain/repository"
	"emergencyreport/internal/domain/service"
	"emergencyreport/internal/infrastructure/metrics"
	"emergencyreport/internal/infrastructure/notification"
	"emergencyreport/internal/infrastructure/storage"
	"emergencyreport/internal/infrastructure/websocket"
	"emergencyreport/internal/usecase"
	"emergencyreport/pkg/config"
	"emergencyreport/pkg/logger"
	"emergencyreport/pkg/response"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L().Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.LogPretty,
		Service: cfg.ServiceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				logger.Warn("Error releasing resource: %v", err)
			}
		}
	}()

	reportRepo, closer, err := newReportRepository(ctx, cfg)
	if err != nil {
		logger.L().Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize report store")
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	imageStore, closer, err := newImageStore(ctx, cfg)
	if err != nil {
		logger.L().Fatal().Err(err).Str("driver", cfg.ImageStore).Msg("Failed to initialize image store")
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	notifier := newNotifier(cfg)
	m := metrics.New()

	wsManager := websocket.NewManager()
	wsManager.OnConnectionChange(m.ViewerConnected, m.ViewerDisconnected)
	wsManager.Start(ctx)

	submissionUseCase := usecase.NewSubmissionUseCase(reportRepo, imageStore, notifier, wsManager, m, usecase.SubmissionOptions{
		MaxUploadBytes: cfg.MaxUploadBytes,
		NotifyTimeout:  cfg.NotifyTimeout,
	})
	queryUseCase := usecase.NewReportQueryUseCase(reportRepo, m)

	handler.Setup(submissionUseCase, queryUseCase)
	handler.SetupHealthHandler()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	submitLimiter := apimiddleware.NewRateLimiter(cfg.SubmitRateLimit)
	go submitLimiter.Cleanup(ctx)

	routerOpts := router.Options{
		SubmitLimiter: submitLimiter,
		WSHandler:     handler.NewWebSocketHandler(wsManager),
		Gatherer:      m.Registry,
	}
	if local, ok := imageStore.(*storage.LocalImageStore); ok {
		routerOpts.UploadsDir = local.Dir()
	}
	router.Setup(e, routerOpts)

	go func() {
		logger.Info("Starting server on port %s (store=%s, images=%s, notifier=%s)...",
			cfg.ServerPort, cfg.StoreDriver, cfg.ImageStore, cfg.Notifier)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during server shutdown: %v", err)
	}

	submissionUseCase.Wait()
	logger.Info("Server stopped")
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func newReportRepository(ctx context.Context, cfg *config.Config) (domainrepo.ReportRepository, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StoreFirestore:
		client, err := firestore.NewClient(ctx, cfg.FirebaseProject)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewFirestoreReportRepository(client), client, nil

	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, err
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repository.NewMongoReportRepository(client.Database(cfg.MongoDB)), closerFunc(func() error {
			return client.Disconnect(context.Background())
		}), nil

	default:
		return repository.NewFileReportRepository(cfg.ReportsDir), nil, nil
	}
}

func newImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, io.Closer, error) {
	switch cfg.ImageStore {
	case config.ImageStoreGCS:
		client, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, "uploads", "")
		if err != nil {
			return nil, nil, err
		}
		return client, client, nil

	case config.ImageStoreS3:
		client, err := storage.NewS3Client(ctx, cfg.AWSRegion)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewS3ImageStore(client, cfg.S3Bucket, cfg.S3Prefix, cfg.AWSRegion), nil, nil

	default:
		return storage.NewLocalImageStore(cfg.UploadsDir, "/uploads"), nil, nil
	}
}

func newNotifier(cfg *config.Config) service.Notifier {
	if cfg.Notifier == config.NotifierSendGrid {
		if cfg.MinistryEmail == "" {
			logger.Warn("MINISTRY_EMAIL is not set; ministry notifications will fail")
		}
		return notification.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName, cfg.MinistryEmail)
	}
	return notification.NewLogNotifier(cfg.MinistryEmail)
}
