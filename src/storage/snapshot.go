package storage

import (
	"database/sql"
	"fmt"

	"venue-collections/src/helpers"
	"venue-collections/src/models"
)

// snapshotQueries holds the dialect specific statements of a snapshot store.
// A snapshot is the whole result of the last successful run.
type snapshotQueries struct {
	schema         []string
	clear          []string
	insertShared   string // symbol, position, venue
	insertSingular string // symbol, venue
	insertFailure  string // venue, position, error
	insertRun      string // built_at, venue_count
	selectShared   string
	selectSingular string
	selectFailures string
	selectRun      string
}

// -----------------------------------------------------------------------------

func createSnapshotTables(db *sql.DB, q snapshotQueries) error {
	for _, stmt := range q.schema {
		if _, err := db.Exec(stmt); err != nil {
			return helpers.NewDatabaseError("failed to create snapshot tables", err)
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func saveSnapshot(db *sql.DB, q snapshotQueries, result *models.MCollections) error {
	tx, err := db.Begin()
	if err != nil {
		return helpers.NewDatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	for _, stmt := range q.clear {
		if _, err := tx.Exec(stmt); err != nil {
			return helpers.NewDatabaseError("failed to clear snapshot", err)
		}
	}

	shared, err := tx.Prepare(q.insertShared)
	if err != nil {
		return helpers.NewDatabaseError("failed to prepare insert", err)
	}
	defer shared.Close()

	for symbol, venues := range result.Collections {
		for position, venue := range venues {
			if _, err := shared.Exec(symbol, position, venue); err != nil {
				return helpers.NewDatabaseError(fmt.Sprintf("failed to save collection %s", symbol), err)
			}
		}
	}

	singular, err := tx.Prepare(q.insertSingular)
	if err != nil {
		return helpers.NewDatabaseError("failed to prepare insert", err)
	}
	defer singular.Close()

	for symbol, venue := range result.SinglyAvailable {
		if _, err := singular.Exec(symbol, venue); err != nil {
			return helpers.NewDatabaseError(fmt.Sprintf("failed to save singular market %s", symbol), err)
		}
	}

	for _, f := range result.Failures {
		if _, err := tx.Exec(q.insertFailure, f.Venue, f.Position, f.Error); err != nil {
			return helpers.NewDatabaseError("failed to save venue failure", err)
		}
	}

	if _, err := tx.Exec(q.insertRun, result.BuiltAt, result.VenueCount); err != nil {
		return helpers.NewDatabaseError("failed to save run metadata", err)
	}

	if err := tx.Commit(); err != nil {
		return helpers.NewDatabaseError("failed to commit snapshot", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func loadSnapshot(db *sql.DB, q snapshotQueries) (*models.MCollections, error) {
	result := models.NewMCollections()

	// Ordered by symbol then position, so appends rebuild discovery order.
	rows, err := db.Query(q.selectShared)
	if err != nil {
		return nil, helpers.NewDatabaseError("failed to load collections", err)
	}
	for rows.Next() {
		var symbol, venue string
		if err := rows.Scan(&symbol, &venue); err != nil {
			rows.Close()
			return nil, helpers.NewDatabaseError("failed to scan collection", err)
		}
		result.Collections[symbol] = append(result.Collections[symbol], venue)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("failed to load collections", err)
	}

	rows, err = db.Query(q.selectSingular)
	if err != nil {
		return nil, helpers.NewDatabaseError("failed to load singular markets", err)
	}
	for rows.Next() {
		var symbol, venue string
		if err := rows.Scan(&symbol, &venue); err != nil {
			rows.Close()
			return nil, helpers.NewDatabaseError("failed to scan singular market", err)
		}
		result.SinglyAvailable[symbol] = venue
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("failed to load singular markets", err)
	}

	rows, err = db.Query(q.selectFailures)
	if err != nil {
		return nil, helpers.NewDatabaseError("failed to load venue failures", err)
	}
	for rows.Next() {
		var f models.MVenueFailure
		if err := rows.Scan(&f.Venue, &f.Position, &f.Error); err != nil {
			rows.Close()
			return nil, helpers.NewDatabaseError("failed to scan venue failure", err)
		}
		result.Failures = append(result.Failures, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, helpers.NewDatabaseError("failed to load venue failures", err)
	}

	err = db.QueryRow(q.selectRun).Scan(&result.BuiltAt, &result.VenueCount)
	if err != nil && err != sql.ErrNoRows {
		return nil, helpers.NewDatabaseError("failed to load run metadata", err)
	}

	return result, nil
}
