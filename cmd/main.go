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

	"outlook-email-extractor/internal/archive"
	"outlook-email-extractor/internal/browser"
	"outlook-email-extractor/internal/config"
	"outlook-email-extractor/internal/console"
	"outlook-email-extractor/internal/export"
	"outlook-email-extractor/internal/handler"
	imapclient "outlook-email-extractor/internal/imap"
	"outlook-email-extractor/internal/logging"
	"outlook-email-extractor/internal/models"
	"outlook-email-extractor/internal/session"
	"outlook-email-extractor/internal/view"

	"github.com/joho/godotenv"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	snapshot := flag.String("snapshot", "", "capture from a saved HTML page instead of a live browser")
	location := flag.String("location", "", "location reported for -snapshot")
	flag.Parse()

	// stdout belongs to the console prompt and tables
	logging.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil {
		logging.Log.Debug("No .env file loaded")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Log.Fatalf("Error reading configuration file: %v", err)
	}
	logging.SetDebug(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := session.Options{
		Saver: export.DirSaver{Dir: cfg.Export.Dir},
	}

	if cfg.Archive.Enabled {
		opts.Archiver = archive.NewArchiver(func() imapclient.Client {
			return imapclient.NewStandardClient()
		}, cfg.Archive)
	}

	var live *browser.Session
	if *snapshot != "" {
		opts.Source = view.FileSource{Path: *snapshot, Location: *location}
		logging.Log.Infof("Reading mail view from %s", *snapshot)
	} else {
		browser.StartCleanup()

		live, err = browser.Open(cfg.Browser)
		if err != nil {
			logging.Log.Fatalf("Error launching browser: %v", err)
		}
		defer func() {
			if err := live.Close(); err != nil {
				logging.Log.WithError(err).Warn("Error closing browser")
			}
		}()
		opts.Source = live
		opts.Notifier = live
	}

	sess, err := session.New(cfg, opts)
	if err != nil {
		logging.Log.Fatalf("Error creating capture session: %v", err)
	}

	if live != nil {
		if err := sess.Start(); err != nil {
			logging.Log.Fatalf("Error starting monitor: %v", err)
		}
		defer sess.Stop()
	}

	if cfg.HTTP.Addr != "" {
		srv := startServer(cfg.HTTP, sess)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Log.WithError(err).Warn("HTTP server shutdown failed")
			}
		}()
	}

	done := make(chan error, 1)
	go func() {
		done <- console.New(sess, os.Stdin, os.Stdout).Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logging.Log.Info("Shutting down")
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Log.WithError(err).Error("Console stopped")
		}
	}
}

// startServer serves the control API and the capture feed in the background
func startServer(cfg models.HTTPConfig, sess *session.Session) *http.Server {
	feed := handler.NewFeed(cfg.AllowedOrigins)
	sess.OnCapture(feed.Publish)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(sess, feed),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Log.Infof("Control API listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Log.WithError(err).Error("HTTP server stopped")
		}
	}()

	return srv
}
