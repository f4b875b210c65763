package aggregator

import (
	"context"
	"sync"
	"time"

	"venue-collections/src/helpers"
	"venue-collections/src/interfaces"
	"venue-collections/src/logger"
	"venue-collections/src/models"
)

// Builder drives complete runs: venue selection, aggregation, persistence
// and publication of the result. One run executes at a time.
type Builder struct {
	Aggregator *Aggregator
	Venues     []interfaces.IVenue
	Rules      models.MVenueRules
	Writer     interfaces.IDocumentWriter // Optional
	Stores     []interfaces.IDatabase
	Exchanger  interfaces.IDataExchanger // Optional
	Logger     *logger.Logger

	errors *helpers.ErrorHandler
	runMu  sync.Mutex
	mu     sync.RWMutex
	latest *models.MCollections
}

// -----------------------------------------------------------------------------

func NewBuilder(agg *Aggregator, venues []interfaces.IVenue, rules models.MVenueRules, log *logger.Logger) *Builder {
	return &Builder{
		Aggregator: agg,
		Venues:     venues,
		Rules:      rules,
		Logger:     log,
		errors:     helpers.NewErrorHandler(log),
	}
}

// -----------------------------------------------------------------------------

// Build runs one aggregation. Nothing is persisted or published when the
// run fails.
func (b *Builder) Build(ctx context.Context) (*models.MCollections, error) {
	b.runMu.Lock()
	defer b.runMu.Unlock()

	start := time.Now()

	venues, err := SelectVenues(b.Venues, b.Rules)
	if err != nil {
		return nil, err
	}
	b.Logger.Info("Building collections from %d of %d venues", len(venues), len(b.Venues))

	result, err := b.Aggregator.Aggregate(ctx, venues)
	if err != nil {
		return nil, err
	}

	if b.Writer != nil {
		b.Writer.Write(result)
	}
	for _, store := range b.Stores {
		b.errors.Handle(store.SaveCollections(result), "SaveCollections")
	}

	b.setLatest(result)

	if b.Exchanger != nil {
		b.Exchanger.Broadcast(NewState("UPDATE", result, time.Since(start)))
	}
	return result, nil
}

// -----------------------------------------------------------------------------

// Seed installs a previously stored result as the latest one.
func (b *Builder) Seed(result *models.MCollections) {
	if result == nil {
		return
	}
	b.setLatest(result)
	if b.Exchanger != nil {
		b.Exchanger.UpdateState(NewState("INITIAL", result, 0))
	}
}

// -----------------------------------------------------------------------------

// UpdateRules changes the selection rules used by subsequent runs.
func (b *Builder) UpdateRules(update func(rules *models.MVenueRules)) models.MVenueRules {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	update(&b.Rules)
	return b.Rules
}

// -----------------------------------------------------------------------------

// HasVenue reports whether a venue with the given name is configured.
func (b *Builder) HasVenue(name string) bool {
	for _, v := range b.Venues {
		if v.Name() == name {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// Latest returns the most recent result, or nil before the first run.
func (b *Builder) Latest() *models.MCollections {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest
}

func (b *Builder) setLatest(result *models.MCollections) {
	b.mu.Lock()
	b.latest = result
	b.mu.Unlock()
}

// -----------------------------------------------------------------------------

// Run rebuilds every interval until ctx is cancelled. Failed runs are logged
// and the previous result stays in place.
func (b *Builder) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Build(ctx); err != nil && ctx.Err() == nil {
				b.errors.Handle(err, "scheduled rebuild")
			}
		}
	}
}

// -----------------------------------------------------------------------------

// NewState wraps a result into the server state pushed to listeners.
func NewState(kind string, result *models.MCollections, elapsed time.Duration) *models.MLatestData {
	return &models.MLatestData{
		Type:        kind,
		Collections: result,
		Timestamp:   time.Now().UTC().Unix(),
		Metrics: models.MRunMetrics{
			BuildTimeSeconds: elapsed.Seconds(),
			Venues:           result.VenueCount,
			FailedVenues:     len(result.Failures),
			Symbols:          result.SymbolCount(),
			SharedSymbols:    len(result.Collections),
		},
	}
}
