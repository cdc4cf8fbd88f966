// Package query turns a sort/filter selection into a list of satellites,
// choosing between the remote API and the local cache by the connectivity
// snapshot taken at the start of each call.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mariavieira99/Satellites/internal/connectivity"
	"github.com/mariavieira99/Satellites/internal/filter"
	"github.com/mariavieira99/Satellites/internal/metrics"
	"github.com/mariavieira99/Satellites/internal/satellite"
	"github.com/mariavieira99/Satellites/internal/tle"
)

// Source names where a result came from.
type Source string

const (
	SourceRemote Source = "remote"
	SourceLocal  Source = "local"
)

// RemoteSource is the remote TLE API.
type RemoteSource interface {
	Collection(ctx context.Context, params filter.QueryParameters) ([]satellite.RemoteRecord, error)
	ByID(ctx context.Context, id int) (satellite.RemoteRecord, error)
}

// Cache is the local satellite store.
type Cache interface {
	InsertAll(ctx context.Context, sats []satellite.Satellite) (int64, error)
	Default(ctx context.Context, limit int) ([]satellite.CachedRow, error)
	Query(ctx context.Context, p filter.Predicate) ([]satellite.CachedRow, error)
	ByID(ctx context.Context, id int) (satellite.CachedRow, error)
}

// Result is the outcome of a query or lookup. Satellites is never nil. Err is
// set when the source failed, which lets a caller tell "no match" from
// "upstream failed"; Execute and Lookup discard it.
type Result struct {
	Satellites []satellite.Satellite
	Source     Source
	Err        error
}

// Executor runs list queries and single-record lookups.
type Executor struct {
	remote RemoteSource
	cache  Cache
	signal connectivity.Signal
	logger *slog.Logger

	writes sync.WaitGroup
}

// NewExecutor creates an Executor.
func NewExecutor(remote RemoteSource, cache Cache, signal connectivity.Signal, logger *slog.Logger) *Executor {
	return &Executor{
		remote: remote,
		cache:  cache,
		signal: signal,
		logger: logger,
	}
}

// Execute returns the satellites matching sel, or an empty list on any
// failure.
func (e *Executor) Execute(ctx context.Context, sel filter.Selection) []satellite.Satellite {
	return e.ExecuteResult(ctx, sel).Satellites
}

// ExecuteResult is Execute with the source and failure reported.
func (e *Executor) ExecuteResult(ctx context.Context, sel filter.Selection) Result {
	source := SourceLocal
	if e.signal.Connected() {
		source = SourceRemote
	}

	var (
		sats []satellite.Satellite
		err  error
	)
	if source == SourceRemote {
		sats, err = e.fromRemote(ctx, sel)
	} else {
		sats, err = e.fromCache(ctx, sel)
	}

	res := Result{Satellites: sats, Source: source, Err: err}
	switch {
	case err != nil:
		res.Satellites = []satellite.Satellite{}
		metrics.IncQuery(string(source), "error")
		e.logger.Warn("satellite query failed",
			"component", "query",
			"source", source,
			"sort", sel.Sort,
			"inclination", sel.Inclination,
			"eccentricity", sel.Eccentricity,
			"error", err,
		)
	case len(sats) == 0:
		metrics.IncQuery(string(source), "empty")
	default:
		metrics.IncQuery(string(source), "ok")
	}
	return res
}

func (e *Executor) fromRemote(ctx context.Context, sel filter.Selection) ([]satellite.Satellite, error) {
	records, err := e.remote.Collection(ctx, filter.ToRemoteParams(sel))
	if err != nil {
		return nil, err
	}
	sats, err := satellite.NormalizeRemote(records)
	if err != nil {
		return nil, err
	}
	if len(sats) > 0 {
		e.persist(ctx, sats)
	}
	return sats, nil
}

func (e *Executor) fromCache(ctx context.Context, sel filter.Selection) ([]satellite.Satellite, error) {
	var (
		rows []satellite.CachedRow
		err  error
	)
	if sel.IsDefault() {
		rows, err = e.cache.Default(ctx, filter.PageSize)
	} else {
		rows, err = e.cache.Query(ctx, filter.ToLocalPredicate(sel))
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache: %w", err)
	}
	return satellite.NormalizeCached(rows), nil
}

// persist writes every record in sats to the cache in the background. The
// write outlives the caller's context; failures are logged and dropped.
// Records whose element set fails validation are cached all the same and
// only reported.
func (e *Executor) persist(ctx context.Context, sats []satellite.Satellite) {
	ctx = context.WithoutCancel(ctx)

	e.writes.Add(1)
	go func() {
		defer e.writes.Done()

		suspect := 0
		for _, s := range sats {
			if err := tle.Check(s.Line1, s.Line2); err != nil {
				suspect++
				e.logger.Warn("caching suspect element set",
					"component", "query",
					"satellite_id", s.SatelliteID,
					"error", err,
				)
			}
		}
		metrics.AddSuspectRows(suspect)

		inserted, err := e.cache.InsertAll(ctx, sats)
		metrics.RecordCacheWrite(inserted, err)
		if err != nil {
			e.logger.Warn("cache write failed", "component", "query", "rows", len(sats), "error", err)
			return
		}
		e.logger.Debug("cache write complete",
			"component", "query",
			"rows", len(sats),
			"inserted", inserted,
			"suspect", suspect,
		)
	}()
}

// Wait blocks until every background cache write has finished.
func (e *Executor) Wait() {
	e.writes.Wait()
}
