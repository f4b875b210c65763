package storage

import (
	"database/sql"

	"venue-collections/src/helpers"
	"venue-collections/src/logger"
	"venue-collections/src/models"

	_ "modernc.org/sqlite"
)

var sqliteQueries = snapshotQueries{
	schema: []string{
		`CREATE TABLE IF NOT EXISTS collections (
			symbol TEXT,
			position INTEGER,
			venue TEXT,
			PRIMARY KEY (symbol, position)
		);`,
		`CREATE TABLE IF NOT EXISTS singular_markets (
			symbol TEXT PRIMARY KEY,
			venue TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS venue_failures (
			venue TEXT,
			position INTEGER,
			error TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			built_at INTEGER,
			venue_count INTEGER
		);`,
	},
	clear: []string{
		"DELETE FROM collections",
		"DELETE FROM singular_markets",
		"DELETE FROM venue_failures",
		"DELETE FROM runs",
	},
	insertShared:   "INSERT INTO collections (symbol, position, venue) VALUES (?, ?, ?)",
	insertSingular: "INSERT INTO singular_markets (symbol, venue) VALUES (?, ?)",
	insertFailure:  "INSERT INTO venue_failures (venue, position, error) VALUES (?, ?, ?)",
	insertRun:      "INSERT INTO runs (id, built_at, venue_count) VALUES (1, ?, ?)",
	selectShared:   "SELECT symbol, venue FROM collections ORDER BY symbol, position",
	selectSingular: "SELECT symbol, venue FROM singular_markets",
	selectFailures: "SELECT venue, position, error FROM venue_failures ORDER BY position",
	selectRun:      "SELECT built_at, venue_count FROM runs WHERE id = 1",
}

// -----------------------------------------------------------------------------

type SQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*SQLiteDB, error) {
	if cfg.Storage.DBPath == "" {
		return nil, helpers.NewDatabaseError("sqlite db_path is empty", nil)
	}
	return &SQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return helpers.NewDatabaseError("failed to open sqlite", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("failed to ping sqlite", err)
	}

	// One writer at a time
	db.SetMaxOpenConns(1)
	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	if err := createSnapshotTables(db, sqliteQueries); err != nil {
		return err
	}

	d.Logger.Info("SQLiteDB initialized at %s", d.Config.Storage.DBPath)
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) SaveCollections(result *models.MCollections) error {
	if err := saveSnapshot(d.DB, sqliteQueries, result); err != nil {
		return err
	}
	d.Logger.Debug("Saved snapshot: %d shared, %d singular", len(result.Collections), len(result.SinglyAvailable))
	return nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) LoadCollections() (*models.MCollections, error) {
	return loadSnapshot(d.DB, sqliteQueries)
}

// -----------------------------------------------------------------------------

func (d *SQLiteDB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
