package aggregator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"venue-collections/src/helpers"
	"venue-collections/src/interfaces"
	"venue-collections/src/logger"
	"venue-collections/src/models"

	"golang.org/x/sync/errgroup"
)

// Options configures an Aggregator.
type Options struct {
	// Policy decides between aborting the run and skipping a failed venue. Required.
	Policy models.FailurePolicy
	// Concurrency bounds how many venues refresh at once. Values <= 1 refresh
	// strictly one venue at a time.
	Concurrency int
}

// Aggregator classifies symbols by the number of venues listing them.
type Aggregator struct {
	Options Options
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAggregator(opts Options, log *logger.Logger) *Aggregator {
	return &Aggregator{
		Options: opts,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// Aggregate refreshes every venue once, in input order, and returns the
// symbols listed on two or more venues alongside those listed on exactly one.
//
// Under PolicyAbort the first failing venue (lowest input position) ends the
// run and its *helpers.VenueRefreshError or *helpers.MalformedSymbolError is
// returned with no result. Under PolicySkip failed venues are reported in
// the result's Failures and none of their symbols are counted.
func (a *Aggregator) Aggregate(ctx context.Context, venues []interfaces.IVenue) (*models.MCollections, error) {
	if err := a.validate(venues); err != nil {
		return nil, err
	}

	result := models.NewMCollections()

	var err error
	if a.Options.Concurrency > 1 && len(venues) > 1 {
		err = a.aggregateConcurrent(ctx, venues, result)
	} else {
		err = a.aggregateSequential(ctx, venues, result)
	}
	if err != nil {
		return nil, err
	}

	result.BuiltAt = time.Now().UTC().Unix()
	a.Logger.Info("Aggregated %d venues: %d shared symbols, %d singular symbols, %d failed venues",
		result.VenueCount, len(result.Collections), len(result.SinglyAvailable), len(result.Failures))
	return result, nil
}

// -----------------------------------------------------------------------------

func (a *Aggregator) validate(venues []interfaces.IVenue) error {
	switch a.Options.Policy {
	case models.PolicyAbort, models.PolicySkip:
	default:
		return helpers.NewValidationError("failure policy must be %q or %q, got %q",
			models.PolicyAbort, models.PolicySkip, a.Options.Policy)
	}

	seen := make(map[string]int, len(venues))
	for i, v := range venues {
		if v == nil {
			return helpers.NewValidationError("venue at position %d is nil", i)
		}
		if prev, ok := seen[v.Name()]; ok {
			return helpers.NewValidationError("venue %s appears at positions %d and %d", v.Name(), prev, i)
		}
		seen[v.Name()] = i
	}
	return nil
}

// -----------------------------------------------------------------------------

func (a *Aggregator) aggregateSequential(ctx context.Context, venues []interfaces.IVenue, result *models.MCollections) error {
	for i, v := range venues {
		if err := ctx.Err(); err != nil {
			return err
		}

		symbols, err := a.refresh(ctx, i, v)
		if err == nil {
			err = commit(result, i, v.Name(), symbols)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !a.skip(result, i, v.Name(), err) {
				return err
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

type fetched struct {
	symbols []string
	err     error
}

// aggregateConcurrent overlaps the refreshes but commits venues one by one in
// input order, so the output matches aggregateSequential.
func (a *Aggregator) aggregateConcurrent(ctx context.Context, venues []interfaces.IVenue, result *models.MCollections) error {
	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(a.Options.Concurrency)

	results := make([]fetched, len(venues))
	ready := make([]chan struct{}, len(venues))
	for i := range ready {
		ready[i] = make(chan struct{})
	}

	var dispatch sync.WaitGroup
	dispatch.Add(1)
	go func() {
		defer dispatch.Done()
		for i, v := range venues {
			if err := gctx.Err(); err != nil {
				results[i] = fetched{err: err}
				close(ready[i])
				continue
			}
			g.Go(func() error {
				defer close(ready[i])
				symbols, err := a.refresh(gctx, i, v)
				results[i] = fetched{symbols: symbols, err: err}
				return nil
			})
		}
	}()

	defer func() {
		cancel()
		dispatch.Wait()
		g.Wait()
	}()

	for i, v := range venues {
		select {
		case <-ready[i]:
		case <-ctx.Done():
			return ctx.Err()
		}

		err := results[i].err
		if err == nil {
			err = commit(result, i, v.Name(), results[i].symbols)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if !a.skip(result, i, v.Name(), err) {
				return err
			}
		}
	}
	return nil
}

// -----------------------------------------------------------------------------

func (a *Aggregator) refresh(ctx context.Context, position int, v interfaces.IVenue) ([]string, error) {
	a.Logger.Debug("Refreshing listing of %s (position %d)", v.Name(), position)
	if err := v.RefreshListing(ctx); err != nil {
		return nil, &helpers.VenueRefreshError{Venue: v.Name(), Position: position, Cause: err}
	}
	return v.Symbols(), nil
}

// -----------------------------------------------------------------------------

// skip records a failed venue and reports whether the run may continue.
func (a *Aggregator) skip(result *models.MCollections, position int, name string, err error) bool {
	if a.Options.Policy != models.PolicySkip {
		a.Logger.Error("Aborting run: %v", err)
		return false
	}
	a.Logger.Warning("Skipping venue: %v", err)
	result.Failures = append(result.Failures, models.MVenueFailure{
		Venue:    name,
		Position: position,
		Error:    err.Error(),
	})
	return true
}

// -----------------------------------------------------------------------------

// commit classifies one venue's listing. The listing is checked in full
// before any symbol is recorded, so a rejected venue leaves result untouched.
func commit(result *models.MCollections, position int, name string, symbols []string) error {
	if err := checkListing(position, name, symbols); err != nil {
		return err
	}

	for _, symbol := range symbols {
		if listed, ok := result.Collections[symbol]; ok {
			result.Collections[symbol] = append(listed, name)
		} else if previous, ok := result.SinglyAvailable[symbol]; ok {
			result.Collections[symbol] = []string{previous, name}
			delete(result.SinglyAvailable, symbol)
		} else {
			result.SinglyAvailable[symbol] = name
		}
	}
	result.VenueCount++
	return nil
}

// -----------------------------------------------------------------------------

func checkListing(position int, name string, symbols []string) error {
	seen := make(map[string]int, len(symbols))
	for i, symbol := range symbols {
		if symbol == "" {
			return &helpers.MalformedSymbolError{Venue: name, Position: position, Index: i, Reason: "empty symbol"}
		}
		if first, ok := seen[symbol]; ok {
			return &helpers.MalformedSymbolError{
				Venue:    name,
				Position: position,
				Index:    i,
				Symbol:   symbol,
				Reason:   fmt.Sprintf("already listed at index %d", first),
			}
		}
		seen[symbol] = i
	}
	return nil
}
