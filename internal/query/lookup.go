package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/mariavieira99/Satellites/internal/metrics"
	"github.com/mariavieira99/Satellites/internal/remote"
	"github.com/mariavieira99/Satellites/internal/satellite"
	"github.com/mariavieira99/Satellites/internal/store"
)

// Lookup returns the satellite with the given catalog number. Any failure,
// including a missing record, reports not found.
func (e *Executor) Lookup(ctx context.Context, id int) (satellite.Satellite, bool) {
	res := e.LookupResult(ctx, id)
	if len(res.Satellites) == 0 {
		return satellite.Satellite{}, false
	}
	return res.Satellites[0], true
}

// LookupResult is Lookup with the source and failure reported. Satellites
// holds at most one element. A missing record is not an error.
func (e *Executor) LookupResult(ctx context.Context, id int) Result {
	res := Result{Satellites: []satellite.Satellite{}, Source: SourceLocal}
	if e.signal.Connected() {
		res.Source = SourceRemote
	}

	var (
		sat satellite.Satellite
		err error
	)
	if res.Source == SourceRemote {
		sat, err = e.lookupRemote(ctx, id)
	} else {
		sat, err = e.lookupCache(ctx, id)
	}

	switch {
	case errors.Is(err, remote.ErrNotFound), errors.Is(err, store.ErrNotFound):
		metrics.IncLookup(string(res.Source), "not_found")
	case err != nil:
		res.Err = err
		metrics.IncLookup(string(res.Source), "error")
		e.logger.Warn("satellite lookup failed",
			"component", "query",
			"source", res.Source,
			"satellite_id", id,
			"error", err,
		)
	default:
		res.Satellites = append(res.Satellites, sat)
		metrics.IncLookup(string(res.Source), "ok")
	}
	return res
}

func (e *Executor) lookupRemote(ctx context.Context, id int) (satellite.Satellite, error) {
	rec, err := e.remote.ByID(ctx, id)
	if err != nil {
		return satellite.Satellite{}, err
	}
	return satellite.Normalize(rec)
}

func (e *Executor) lookupCache(ctx context.Context, id int) (satellite.Satellite, error) {
	row, err := e.cache.ByID(ctx, id)
	if err != nil {
		return satellite.Satellite{}, fmt.Errorf("reading cache: %w", err)
	}
	return satellite.Normalize(row)
}
