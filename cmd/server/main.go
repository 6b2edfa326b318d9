package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/Freeeeeet/coaching_booking/internal/app"
	"github.com/Freeeeeet/coaching_booking/internal/config"
	"github.com/Freeeeeet/coaching_booking/internal/controller"
	"github.com/Freeeeeet/coaching_booking/internal/google"
	"github.com/Freeeeeet/coaching_booking/internal/httpapi"
	"github.com/Freeeeeet/coaching_booking/internal/lock"
	"github.com/Freeeeeet/coaching_booking/internal/repository"
	"github.com/Freeeeeet/coaching_booking/internal/service"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaultLoc, err := cfg.Location()
	if err != nil {
		return err
	}

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		_ = migrator.Close()
		return err
	}
	_ = migrator.Close()

	// Без Redis бронирование продолжает работать, конфликты ловит ограничение в БД
	var locker service.SlotLocker
	redisLock, err := lock.NewRedisLock(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("Redis is unavailable, slot locking disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	} else {
		defer redisLock.Close()
		locker = redisLock
	}

	var (
		calendar   service.CalendarClient
		recordings service.RecordingSource
	)
	if cfg.GoogleEnabled() {
		calendarClient, err := google.NewCalendarClient(ctx, logger, google.TokenOption(cfg.GoogleAccessToken))
		if err != nil {
			return err
		}
		driveRecordings, err := google.NewDriveRecordings(ctx, logger, google.TokenOption(cfg.GoogleAccessToken))
		if err != nil {
			return err
		}
		calendar, recordings = calendarClient, driveRecordings
	} else {
		logger.Info("GOOGLE_ACCESS_TOKEN is not set, calendar and recordings disabled")
	}

	var (
		telegram *bot.Bot
		notifier service.Notifier = controller.NewLogNotifier(logger)
	)
	if cfg.TelegramEnabled() {
		telegram, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}
		notifier = controller.NewTelegramNotifier(telegram, defaultLoc, logger)
	} else {
		logger.Info("TELEGRAM_TOKEN is not set, bot disabled")
	}

	offeringRepo := repository.NewOfferingRepository(pool)
	packageRepo := repository.NewPackageRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	reconciliationRepo := repository.NewReconciliationRepository(pool)

	ledger := service.NewPackageLedger(packageRepo, logger)
	availabilityService := service.NewAvailabilityService(offeringRepo, reservationRepo, calendar, defaultLoc, logger)
	bookingService := service.NewBookingService(offeringRepo, reservationRepo, ledger, reconciliationRepo, calendar, locker, notifier, cfg.SlotLockTTL, logger)
	cancellationService := service.NewCancellationService(offeringRepo, reservationRepo, calendar, notifier, logger)
	reservationService := service.NewReservationService(reservationRepo, logger)
	recordingService := service.NewRecordingService(offeringRepo, reservationRepo, recordings, notifier, defaultLoc, logger)
	reconciliationService := service.NewReconciliationService(ledger, reconciliationRepo, logger)

	var matcher app.RecordingMatcher
	if cfg.RecordingSweepEnabled() {
		matcher = recordingService
	}
	scheduler := app.NewScheduler(
		reconciliationService,
		matcher,
		app.RecordingSweep{InstructorID: cfg.RecordingsInstructorID, FolderRef: cfg.RecordingsFolder},
		cfg.SweepInterval,
		logger,
	)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if telegram != nil {
		botController := controller.NewBotController(telegram, availabilityService, recordingService, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Failed to register bot commands", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	handler := httpapi.NewHandler(availabilityService, ledger, bookingService, cancellationService, reservationService, recordingService, logger)
	srv := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      httpapi.NewRouter(handler, cfg.HTTP.Timeout, logger),
		ReadTimeout:  cfg.HTTP.Timeout,
		WriteTimeout: cfg.HTTP.Timeout * 2,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTP.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
