package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"venue-collections/src/aggregator"
	"venue-collections/src/config"
	"venue-collections/src/interfaces"
	"venue-collections/src/logger"
	"venue-collections/src/server"
	"venue-collections/src/storage"
)

// -----------------------------------------------------------------------------

func main() {
	os.Exit(run())
}

// -----------------------------------------------------------------------------

func run() int {
	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	once := flag.Bool("once", false, "build the collections once, write the documents and exit")
	flag.Parse()

	// Load config from YAML file
	conf, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return 1
	}

	// Setup logger
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	// Setup Components
	stores, table, err := setupStores(conf.MConfig, appLogger)
	if err != nil {
		appLogger.Error("Failed to init storage: %v", err)
		return 1
	}
	defer closeStores(stores, appLogger)

	networkManager := setupNetwork(conf.MConfig, appLogger)
	venues, err := setupVenues(conf.MConfig, networkManager, table, appLogger)
	if err != nil {
		appLogger.Error("Failed to init venues: %v", err)
		return 1
	}

	writer := storage.NewDocumentWriter(
		conf.Storage.OutputDir,
		conf.Storage.CollectionsFile,
		conf.Storage.SingularFile,
		appLogger.Named("DocumentWriter"),
	)
	builder := setupBuilder(conf.MConfig, venues, writer, stores, appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once {
		return runOnce(ctx, builder, writer, appLogger)
	}
	return runService(ctx, conf, *configPath, builder, writer, stores, appLogger)
}

// -----------------------------------------------------------------------------

// runOnce builds the collections a single time. Any failure exits non-zero
// and, for a failed run, leaves the documents untouched.
func runOnce(ctx context.Context, builder *aggregator.Builder, writer interfaces.IDocumentWriter, appLogger *logger.Logger) int {
	result, err := builder.Build(ctx)
	if err != nil {
		appLogger.Error("Build failed: %v", err)
		return 1
	}
	if err := writer.Wait(); err != nil {
		appLogger.Error("Failed to write documents: %v", err)
		return 1
	}

	appLogger.Info("Built collections: %d shared symbols, %d singular symbols, %d failed venues",
		len(result.Collections), len(result.SinglyAvailable), len(result.Failures))
	return 0
}

// -----------------------------------------------------------------------------

// runService serves the latest collections and rebuilds them periodically
// until the process is signalled.
func runService(
	ctx context.Context,
	conf *config.Config,
	configPath string,
	builder *aggregator.Builder,
	writer interfaces.IDocumentWriter,
	stores []interfaces.IDatabase,
	appLogger *logger.Logger,
) int {
	srv := server.NewAPIServer(conf.MConfig, appLogger.Named("APIServer"))
	if conf.Port != 0 {
		builder.Exchanger = srv
	}

	// Seed server state from the last stored snapshot
	if len(stores) > 0 {
		stored, err := stores[0].LoadCollections()
		if err != nil {
			appLogger.Warning("Failed to load stored collections: %v", err)
		} else if stored.BuiltAt > 0 {
			builder.Seed(stored)
			appLogger.Info("Loaded stored collections built at %d", stored.BuiltAt)
		}
	}

	shutdown := startServers(srv, conf, configPath, builder, appLogger)
	defer shutdown()

	if _, err := builder.Build(ctx); err != nil {
		appLogger.Error("Initial build failed: %v", err)
	}

	if interval := conf.Aggregation.RebuildIntervalSeconds; interval > 0 {
		appLogger.Info("Rebuilding every %d seconds", interval)
		go builder.Run(ctx, time.Duration(interval)*time.Second)
	}

	<-ctx.Done()
	appLogger.Info("Shutting down...")

	if err := writer.Wait(); err != nil {
		appLogger.Error("Failed to write documents: %v", err)
		return 1
	}
	return 0
}
