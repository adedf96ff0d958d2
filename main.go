package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/brettboylen/post-index/api"
	"github.com/brettboylen/post-index/db"
	"github.com/brettboylen/post-index/generator"
	"github.com/brettboylen/post-index/menu"
	"github.com/brettboylen/post-index/stats"
	"github.com/brettboylen/post-index/store"
	"github.com/brettboylen/post-index/utils"
)

func main() {
	envPath := flag.String("env", ".env", "Path to .env file")
	logLevel := flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
	mode := flag.String("mode", "menu", "Run mode (menu, serve)")
	flag.Parse()

	log := setupLogger(*logLevel)
	log.Info("Starting Post Index")

	config, err := utils.LoadConfig(*envPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	log.WithFields(logrus.Fields{
		"mode":          *mode,
		"initial_posts": config.Generator.InitialPosts,
		"database_path": config.Database.Path,
		"server_port":   config.Server.Port,
		"feed_interval": config.Feed.Interval,
	}).Info("Configuration loaded")

	var postStore *store.Store
	if config.Database.Path != "" {
		database, err := db.NewDatabase(config.Database.Path, log)
		if err != nil {
			log.WithError(err).Fatal("Failed to connect to database")
		}
		defer database.Close()

		postStore = store.NewStore(log, store.WithInsertHook(database.Hook(log)))
		if _, err := database.Restore(postStore); err != nil {
			log.WithError(err).Fatal("Failed to restore archived posts")
		}
	} else {
		postStore = store.NewStore(log)
	}

	gen := generator.NewGenerator(config.Generator.StartDate, config.Generator.Seed)
	collector := stats.NewCollector(
		postStore,
		gen,
		config.Feed.Interval,
		config.Feed.BatchSize,
		log,
	)

	log.WithField("count", config.Generator.InitialPosts).Info("Initializing with random posts")
	collector.Feed(config.Generator.InitialPosts)

	switch *mode {
	case "menu":
		m := menu.NewMenu(postStore, collector, os.Stdin, os.Stdout, log)
		if err := m.Run(); err != nil && !menu.IsEndOfInput(err) {
			log.WithError(err).Fatal("Menu stopped unexpectedly")
		}
	case "serve":
		serve(config, postStore, collector, log)
	default:
		log.WithField("mode", *mode).Fatal("Unknown mode")
	}
}

// setupLogger sets up the logger with the specified log level
func setupLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// serve runs the feeder and the API server until a shutdown signal arrives
func serve(config *utils.Config, postStore *store.Store, collector *stats.Collector, log *logrus.Logger) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server := api.NewServer(postStore, collector, config.Server.MaxRequestsPerMinute, log)

	go func() {
		if err := server.Run(ctx, config.Server.Port); err != nil {
			log.WithError(err).Error("API server stopped unexpectedly")
			cancel()
		}
	}()

	go func() {
		if err := collector.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.WithError(err).Error("Stats collector stopped unexpectedly")
		}
	}()

	waitForShutdown(ctx, cancel, log)
}

// waitForShutdown waits for a shutdown signal
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.WithField("signal", sig.String()).Info("Shutdown signal received")
	case <-ctx.Done():
	}

	cancel()

	time.Sleep(1 * time.Second)
	log.Info("Post Index stopped")
}
