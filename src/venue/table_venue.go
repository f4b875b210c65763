package venue

import (
	"context"
	"fmt"
	"sync/atomic"

	"venue-collections/src/models"
	"venue-collections/src/storage"
)

// SymbolTable is a database able to list symbols from a table column.
type SymbolTable interface {
	GetSymbolsFromTable(ctx context.Context, ref storage.TableRef) ([]string, error)
}

// TableVenue reads its listing from a database column ("schema.table.field").
type TableVenue struct {
	Config  models.MVenueConfig
	Ref     storage.TableRef
	DB      SymbolTable
	symbols atomic.Value // Stores []string safely
}

// -----------------------------------------------------------------------------

func NewTableVenue(cfg models.MVenueConfig, db SymbolTable) (*TableVenue, error) {
	ref, err := storage.ParseTableRef(cfg.Table)
	if err != nil {
		return nil, fmt.Errorf("venue %s: %w", cfg.Name, err)
	}
	return &TableVenue{Config: cfg, Ref: ref, DB: db}, nil
}

// -----------------------------------------------------------------------------

func (v *TableVenue) Name() string {
	return v.Config.Name
}

// -----------------------------------------------------------------------------

func (v *TableVenue) Info() models.MVenueInfo {
	return infoFromConfig(v.Config)
}

// -----------------------------------------------------------------------------

func (v *TableVenue) RefreshListing(ctx context.Context) error {
	symbols, err := v.DB.GetSymbolsFromTable(ctx, v.Ref)
	if err != nil {
		return fmt.Errorf("load symbols from %s: %w", v.Config.Table, err)
	}
	v.symbols.Store(symbols)
	return nil
}

// -----------------------------------------------------------------------------

func (v *TableVenue) Symbols() []string {
	symbols, _ := v.symbols.Load().([]string)
	return symbols
}
