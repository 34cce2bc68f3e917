package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Acurioustractor/empathy-ledger-syndication/internal/config"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/dao"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/database"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/handlers"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/migrate"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/router"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/scheduler"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/service"
	"github.com/Acurioustractor/empathy-ledger-syndication/internal/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		logger.SetLevel(level)
	}
	if cfg.Logging.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	db, err := database.Initialize(&cfg.Database.Syndication, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	if err := migrate.Up(context.Background(), db, logger); err != nil {
		logger.WithError(err).Fatal("Failed to apply database migrations")
	}

	consentDAO := dao.NewConsentDAO(db, logger)
	siteDAO := dao.NewSiteDAO(db, logger)
	storyDAO := dao.NewStoryDAO(db, logger)
	tokenDAO := dao.NewEmbedTokenDAO(db, logger)
	engagementDAO := dao.NewEngagementDAO(db, logger)
	revenueDAO := dao.NewRevenueDAO(db, logger)

	var notifier service.Notifier
	var dispatcher *webhook.Dispatcher
	if cfg.Webhook.Enabled {
		dispatcher = webhook.NewDispatcher(cfg.Webhook, logger)
		dispatcher.Start()
		notifier = dispatcher
	} else {
		notifier = webhook.NoopNotifier{}
	}

	consentSvc := service.NewConsentService(consentDAO, siteDAO, storyDAO, tokenDAO,
		notifier, logger, cfg.Syndication.ConflictRetries, cfg.Syndication.SweepBatchSize)
	permissionSvc := service.NewPermissionService(consentDAO, siteDAO, logger)
	tokenSvc := service.NewTokenService(tokenDAO, consentDAO, siteDAO, permissionSvc,
		logger, cfg.Syndication.TokenTTL)
	engagementSvc := service.NewEngagementService(engagementDAO, tokenSvc, logger,
		cfg.Syndication.DedupWindow)
	revenueSvc := service.NewRevenueService(revenueDAO, engagementDAO, siteDAO, logger,
		cfg.Revenue.PerEventRateCents)
	siteSvc := service.NewSiteService(siteDAO, logger)
	storySvc := service.NewStoryService(storyDAO, logger)

	engine := router.New(&router.Handlers{
		Consents: handlers.NewConsentHandler(consentSvc, tokenSvc, logger),
		Sites:    handlers.NewSiteHandler(siteSvc, logger),
		Stories:  handlers.NewStoryHandler(storySvc, logger),
		Embed:    handlers.NewEmbedHandler(permissionSvc, tokenSvc, engagementSvc, logger),
		Revenue:  handlers.NewRevenueHandler(revenueSvc, logger),
	}, db, logger)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	sweeper := scheduler.NewSweeper(consentSvc, cfg.Syndication.SweepInterval, logger)
	go sweeper.Run(sweepCtx)

	server := &http.Server{
		Addr:         cfg.Server.GetServerAddress(),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.WithField("address", server.Addr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopSweep()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	if dispatcher != nil {
		dispatcher.Stop()
	}

	logger.Info("Server stopped")
}
