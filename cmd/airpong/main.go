package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/sirupsen/logrus"

	"airpong/config"
	"airpong/network"
	"airpong/table"
)

func main() {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{ForceColors: true}

	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("reading .env")
	}
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	log.Level = cfg.LogLevel

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.WithError(err).Warn("sentry disabled")
		}
		defer sentry.Flush(5 * time.Second)
	}

	if cfg.StatsAddr != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(cfg.StatsAddr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
		log.WithField("addr", cfg.StatsAddr).Info("stats viewer enabled")
	}

	tuning, created, err := config.LoadOrCreateTuning(cfg.TuningFile)
	if err != nil {
		log.WithError(err).Fatal("loading tuning")
	}
	if created {
		log.WithField("file", cfg.TuningFile).Info("wrote default tuning")
	}

	tables := table.NewManager(table.Options{
		Tuning: tuning,
		Logger: log,
		Debug:  cfg.Debug,
	})
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: network.NewServer(tables, log).Handler(),
	}

	ctx := SetupSignalHandler(log, func(ctx context.Context) {
		shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("http shutdown")
		}
		tables.Shutdown()
	})

	log.WithFields(logrus.Fields{"addr": cfg.Addr, "debug": cfg.Debug}).Info("listening (ws endpoint: /ws)")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("server stopped")
		os.Exit(1)
	}
	<-ctx.Done()
	log.Info("shutdown complete")
}
