package storage

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"venue-collections/src/helpers"
	"venue-collections/src/logger"
	"venue-collections/src/models"

	_ "github.com/lib/pq"
)

var nonIdentifierChars = regexp.MustCompile(`\W+`)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config  *models.MConfig
	DB      *sql.DB
	Schema  string
	Logger  *logger.Logger
	queries snapshotQueries
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	if cfg.Storage.DBConnectionString == "" {
		return nil, helpers.NewDatabaseError("postgres db_connection_string is empty", nil)
	}

	schema := SchemaName(cfg.Name)
	return &PostgresDB{
		Config:  cfg,
		Schema:  schema,
		Logger:  log,
		queries: postgresQueries(schema),
	}, nil
}

// -----------------------------------------------------------------------------

// SchemaName turns an application name into a lower case identifier.
func SchemaName(name string) string {
	s := strings.Trim(nonIdentifierChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if s == "" {
		return "venue_collections"
	}
	return s
}

// -----------------------------------------------------------------------------

func postgresQueries(schema string) snapshotQueries {
	t := func(name string) string {
		return fmt.Sprintf(`"%s"."%s"`, schema, name)
	}

	return snapshotQueries{
		schema: []string{
			fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, schema),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT,
				position INTEGER,
				venue TEXT,
				PRIMARY KEY (symbol, position)
			);`, t("collections")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				symbol TEXT PRIMARY KEY,
				venue TEXT
			);`, t("singular_markets")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				venue TEXT,
				position INTEGER,
				error TEXT
			);`, t("venue_failures")),
			fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				built_at BIGINT,
				venue_count INTEGER,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);`, t("runs")),
		},
		clear: []string{
			fmt.Sprintf("TRUNCATE %s, %s, %s, %s", t("collections"), t("singular_markets"), t("venue_failures"), t("runs")),
		},
		insertShared:   fmt.Sprintf("INSERT INTO %s (symbol, position, venue) VALUES ($1, $2, $3)", t("collections")),
		insertSingular: fmt.Sprintf("INSERT INTO %s (symbol, venue) VALUES ($1, $2)", t("singular_markets")),
		insertFailure:  fmt.Sprintf("INSERT INTO %s (venue, position, error) VALUES ($1, $2, $3)", t("venue_failures")),
		insertRun:      fmt.Sprintf("INSERT INTO %s (id, built_at, venue_count) VALUES (1, $1, $2)", t("runs")),
		selectShared:   fmt.Sprintf("SELECT symbol, venue FROM %s ORDER BY symbol, position", t("collections")),
		selectSingular: fmt.Sprintf("SELECT symbol, venue FROM %s", t("singular_markets")),
		selectFailures: fmt.Sprintf("SELECT venue, position, error FROM %s ORDER BY position", t("venue_failures")),
		selectRun:      fmt.Sprintf("SELECT built_at, venue_count FROM %s WHERE id = 1", t("runs")),
	}
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	db, err := sql.Open("postgres", d.Config.Storage.DBConnectionString)
	if err != nil {
		return helpers.NewDatabaseError("failed to open postgres", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return helpers.NewDatabaseError("failed to ping postgres", err)
	}

	d.DB = db

	if err := createSnapshotTables(db, d.queries); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveCollections(result *models.MCollections) error {
	if err := saveSnapshot(d.DB, d.queries, result); err != nil {
		return err
	}
	d.Logger.Debug("Saved snapshot: %d shared, %d singular", len(result.Collections), len(result.SinglyAvailable))
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) LoadCollections() (*models.MCollections, error) {
	return loadSnapshot(d.DB, d.queries)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
