package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flight_booker/internal/api"
	"flight_booker/internal/apperr"
	"flight_booker/internal/bookingform"
	"flight_booker/internal/bookinglist"
	"flight_booker/internal/config"
	"flight_booker/internal/handlers"
	"flight_booker/internal/kafka"
	"flight_booker/internal/metrics"
	"flight_booker/internal/models"
	"flight_booker/internal/service"

	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------- config ----------
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("config")
	}

	logger, err := cfg.NewLogger()
	if err != nil {
		logrus.WithError(err).Fatal("logger")
	}
	logger.WithField("env", cfg.AppEnv).Info("config loaded")

	// ---------- metrics ----------
	metrics.Register()

	// ---------- remote api ----------
	client, err := api.New(cfg.APIBaseURL, cfg.APIAuthToken, api.WithLogger(logger))
	if err != nil {
		logger.WithError(err).Fatal("api client")
	}
	norm := apperr.New(cfg.IsDev(), logger)

	// ---------- kafka producer + async channel ----------
	var notifier *service.Notifier
	var kafkaDone <-chan struct{}
	var kafkaChan chan service.KafkaJob

	if cfg.KafkaEnabled() {
		producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			logger.WithError(err).Fatal("kafka producer")
		}
		defer producer.Close()

		kafkaChan = make(chan service.KafkaJob, 100)
		kafkaDone = service.StartKafkaWorker(kafkaChan, producer, logger)
		notifier = service.NewNotifier(kafkaChan)
		logger.WithField("topic", cfg.KafkaTopic).Info("booking events enabled")
	}

	// ---------- sessions ----------
	sessions := handlers.NewSessionStore(cfg.SessionTTL, handlers.Controllers{
		NewForm: func(onCreated func(models.Booking)) *bookingform.Controller {
			return bookingform.New(client, norm,
				bookingform.WithLogger(logger),
				bookingform.WithOnCreated(func(b models.Booking) {
					onCreated(b)
					notifier.BookingCreated(b)
				}),
			)
		},
		NewList: func() *bookinglist.Controller {
			return bookinglist.New(client, norm,
				bookinglist.WithPageSize(cfg.PageSize),
				bookinglist.WithThreshold(cfg.ScrollThreshold),
				bookinglist.WithOnDeleted(notifier.BookingDeleted),
				bookinglist.WithLogger(logger),
			)
		},
	}, logger)
	go sessions.Run(ctx, time.Minute)

	// ---------- handlers ----------
	h, err := handlers.NewBookingHandler(sessions, client, norm, cfg.ScrollThreshold, logger)
	if err != nil {
		logger.WithError(err).Fatal("handlers")
	}

	// ---------- start server ----------
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handlers.NewRouter(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", srv.Addr).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("listen")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}

	sessions.CloseAll()

	if kafkaChan != nil {
		close(kafkaChan)
		<-kafkaDone
	}
}
