package main

import (
	"fmt"

	"venue-collections/src/aggregator"
	"venue-collections/src/interfaces"
	"venue-collections/src/logger"
	"venue-collections/src/models"
	"venue-collections/src/network"
	"venue-collections/src/storage"
	"venue-collections/src/venue"
)

// -----------------------------------------------------------------------------

// setupStores opens the configured snapshot stores. The SQL store, if any,
// comes first and doubles as the symbol table for "table" venues.
func setupStores(config *models.MConfig, appLogger *logger.Logger) ([]interfaces.IDatabase, venue.SymbolTable, error) {
	var stores []interfaces.IDatabase
	var table venue.SymbolTable

	switch config.Storage.DBType {
	case "postgres":
		db, err := storage.NewPostgresDB(config, appLogger.Named("PostgresDB"))
		if err != nil {
			return nil, nil, err
		}
		if err := db.Initialize(); err != nil {
			return nil, nil, err
		}
		stores = append(stores, db)
		table = db
	case "sqlite":
		db, err := storage.NewSQLiteDB(config, appLogger.Named("SQLiteDB"))
		if err != nil {
			return nil, nil, err
		}
		if err := db.Initialize(); err != nil {
			return nil, nil, err
		}
		stores = append(stores, db)
		table = db
	}

	if config.Storage.RedisAddr != "" {
		rs := storage.NewRedisStore(config, appLogger.Named("RedisStore"))
		if err := rs.Initialize(); err != nil {
			closeStores(stores, appLogger)
			rs.Close()
			return nil, nil, err
		}
		stores = append(stores, rs)
	}

	return stores, table, nil
}

// -----------------------------------------------------------------------------

func closeStores(stores []interfaces.IDatabase, appLogger *logger.Logger) {
	for _, s := range stores {
		if err := s.Close(); err != nil {
			appLogger.Warning("Failed to close store: %v", err)
		}
	}
}

// -----------------------------------------------------------------------------

// setupNetwork initializes the network manager
func setupNetwork(config *models.MConfig, appLogger *logger.Logger) interfaces.INetworkManager {
	return network.NewAsyncNetworkManager(config, appLogger.Named("NetworkManager"))
}

// -----------------------------------------------------------------------------

// setupVenues builds the configured venues in configuration order
func setupVenues(
	config *models.MConfig,
	networkManager interfaces.INetworkManager,
	table venue.SymbolTable,
	appLogger *logger.Logger,
) ([]interfaces.IVenue, error) {
	deps := venue.Deps{Network: networkManager, Table: table, Logger: appLogger}

	venues := make([]interfaces.IVenue, 0, len(config.Venues))
	for _, vCfg := range config.Venues {
		v, err := venue.NewFromConfig(vCfg, deps)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
		appLogger.Info("Added venue: %s (%s)", vCfg.Name, vCfg.Type)
	}

	if len(venues) == 0 {
		return nil, fmt.Errorf("no venues configured")
	}
	return venues, nil
}

// -----------------------------------------------------------------------------

// setupBuilder wires the aggregator and its persistence targets
func setupBuilder(
	config *models.MConfig,
	venues []interfaces.IVenue,
	writer interfaces.IDocumentWriter,
	stores []interfaces.IDatabase,
	appLogger *logger.Logger,
) *aggregator.Builder {
	agg := aggregator.NewAggregator(aggregator.Options{
		Policy:      config.Aggregation.FailurePolicy,
		Concurrency: config.Aggregation.Concurrency,
	}, appLogger.Named("Aggregator"))

	builder := aggregator.NewBuilder(agg, venues, config.Aggregation.Rules, appLogger.Named("Builder"))
	builder.Writer = writer
	builder.Stores = stores
	return builder
}
