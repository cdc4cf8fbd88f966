package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariavieira99/Satellites/internal/connectivity"
	"github.com/mariavieira99/Satellites/internal/filter"
	"github.com/mariavieira99/Satellites/internal/remote"
	"github.com/mariavieira99/Satellites/internal/satellite"
	"github.com/mariavieira99/Satellites/internal/store"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

const (
	issLine1   = "1 25544U 98067A   25119.19035294  .00013779  00000+0  25440-3 0  9995"
	issLine2   = "2 25544  51.6352 189.7367 0002491  81.0639 279.0631 15.49383308507563"
	swiftLine1 = "1 28485U 04047A   25121.93806390  .00032478  00000+0  85683-3 0  9997"
	swiftLine2 = "2 28485  18.5564  31.4632 0005388 125.6481 234.4461 15.36622984123119"
)

func issRecord() satellite.RemoteRecord {
	return satellite.RemoteRecord{
		ID:          "https://tle.ivanstanojevic.me/api/tle/25544",
		SatelliteID: 25544,
		Name:        "ISS (ZARYA)",
		Date:        "2025-04-29T04:34:06+00:00",
		Line1:       issLine1,
		Line2:       issLine2,
		Type:        satellite.TypeTLE,
	}
}

func swiftRecord() satellite.RemoteRecord {
	return satellite.RemoteRecord{
		ID:          "https://tle.ivanstanojevic.me/api/tle/28485",
		SatelliteID: 28485,
		Name:        "SWIFT",
		Date:        "2025-05-01T22:30:48+00:00",
		Line1:       swiftLine1,
		Line2:       swiftLine2,
		Type:        satellite.TypeTLE,
	}
}

type fakeRemote struct {
	records []satellite.RemoteRecord
	err     error

	mu     sync.Mutex
	params []filter.QueryParameters
	ids    []int
}

func (f *fakeRemote) Collection(_ context.Context, p filter.QueryParameters) ([]satellite.RemoteRecord, error) {
	f.mu.Lock()
	f.params = append(f.params, p)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func (f *fakeRemote) ByID(_ context.Context, id int) (satellite.RemoteRecord, error) {
	f.mu.Lock()
	f.ids = append(f.ids, id)
	f.mu.Unlock()
	if f.err != nil {
		return satellite.RemoteRecord{}, f.err
	}
	for _, r := range f.records {
		if r.SatelliteID == id {
			return r, nil
		}
	}
	return satellite.RemoteRecord{}, remote.ErrNotFound
}

func (f *fakeRemote) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.params) + len(f.ids)
}

type fakeCache struct {
	rows      []satellite.CachedRow
	err       error
	insertErr error

	mu         sync.Mutex
	inserted   [][]satellite.Satellite
	insertCtx  []error
	defaults   []int
	predicates []filter.Predicate
}

func (f *fakeCache) InsertAll(ctx context.Context, sats []satellite.Satellite) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, sats)
	f.insertCtx = append(f.insertCtx, ctx.Err())
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return int64(len(sats)), nil
}

func (f *fakeCache) Default(_ context.Context, limit int) ([]satellite.CachedRow, error) {
	f.mu.Lock()
	f.defaults = append(f.defaults, limit)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeCache) Query(_ context.Context, p filter.Predicate) ([]satellite.CachedRow, error) {
	f.mu.Lock()
	f.predicates = append(f.predicates, p)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func (f *fakeCache) ByID(_ context.Context, id int) (satellite.CachedRow, error) {
	if f.err != nil {
		return satellite.CachedRow{}, f.err
	}
	for _, r := range f.rows {
		if r.SatelliteID == id {
			return r, nil
		}
	}
	return satellite.CachedRow{}, store.ErrNotFound
}

type countingSignal struct {
	connected bool
	reads     atomic.Int32
}

func (s *countingSignal) Connected() bool {
	s.reads.Add(1)
	return s.connected
}

func cachedRows() []satellite.CachedRow {
	return []satellite.CachedRow{
		{SatelliteID: 25544, Name: "ISS (ZARYA)", Line1: issLine1, Line2: issLine2, Type: satellite.TypeTLE, Inclination: 51.6352, Eccentricity: 0.0002491},
		{SatelliteID: 28485, Name: "SWIFT", Line1: swiftLine1, Line2: swiftLine2, Type: satellite.TypeTLE, Inclination: 18.5564, Eccentricity: 0.0005388},
	}
}

func TestExecuteRemotePersistsEveryRecord(t *testing.T) {
	rem := &fakeRemote{records: []satellite.RemoteRecord{issRecord(), swiftRecord()}}
	cache := &fakeCache{}
	e := NewExecutor(rem, cache, connectivity.Static(true), testLogger)

	res := e.ExecuteResult(context.Background(), filter.Selection{})
	e.Wait()

	require.NoError(t, res.Err)
	assert.Equal(t, SourceRemote, res.Source)
	require.Len(t, res.Satellites, 2)
	assert.Equal(t, 51.6352, res.Satellites[0].Inclination)
	assert.Equal(t, 0.0005388, res.Satellites[1].Eccentricity)

	require.Len(t, cache.inserted, 1)
	assert.Equal(t, res.Satellites, cache.inserted[0])
	assert.Empty(t, cache.defaults)
	assert.Empty(t, cache.predicates)
}

func TestExecuteRemoteSendsSelectionParams(t *testing.T) {
	rem := &fakeRemote{}
	e := NewExecutor(rem, &fakeCache{}, connectivity.Static(true), testLogger)

	sel := filter.Selection{
		Sort:         filter.SortInclination,
		Inclination:  filter.InclinationBetween20And60,
		Eccentricity: filter.EccentricityCircular,
	}
	got := e.Execute(context.Background(), sel)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	require.Len(t, rem.params, 1)
	assert.Equal(t, filter.ToRemoteParams(sel), rem.params[0])
}

func TestExecuteRemoteFailureIsEmpty(t *testing.T) {
	upstream := errors.New("connection reset")
	rem := &fakeRemote{err: upstream}
	cache := &fakeCache{rows: cachedRows()}
	e := NewExecutor(rem, cache, connectivity.Static(true), testLogger)

	res := e.ExecuteResult(context.Background(), filter.Selection{})
	e.Wait()

	assert.ErrorIs(t, res.Err, upstream)
	assert.NotNil(t, res.Satellites)
	assert.Empty(t, res.Satellites)
	assert.Empty(t, e.Execute(context.Background(), filter.Selection{}))

	// A failed remote query never falls back to the cache.
	assert.Empty(t, cache.defaults)
	assert.Empty(t, cache.predicates)
	assert.Empty(t, cache.inserted)
}

func TestExecuteRemoteMalformedRecordFailsBatch(t *testing.T) {
	bad := swiftRecord()
	bad.Line2 = "2 28485  18.5564"
	rem := &fakeRemote{records: []satellite.RemoteRecord{issRecord(), bad}}
	cache := &fakeCache{}
	e := NewExecutor(rem, cache, connectivity.Static(true), testLogger)

	res := e.ExecuteResult(context.Background(), filter.Selection{})
	e.Wait()

	assert.Error(t, res.Err)
	assert.Empty(t, res.Satellites)
	assert.Empty(t, cache.inserted)
}

func TestExecuteRemoteCachesSuspectRows(t *testing.T) {
	short := swiftRecord()
	short.Line1 = "1 28485U"

	// Same 69 columns as the ISS line, with an unparsable BSTAR field.
	corrupt := issRecord()
	corrupt.SatelliteID = 25545
	corrupt.Line1 = issLine1[:54] + "2X440" + issLine1[59:]

	rem := &fakeRemote{records: []satellite.RemoteRecord{issRecord(), short, corrupt}}
	cache := &fakeCache{}
	e := NewExecutor(rem, cache, connectivity.Static(true), testLogger)

	got := e.Execute(context.Background(), filter.Selection{})
	e.Wait()

	require.Len(t, got, 3)
	require.Len(t, cache.inserted, 1)
	assert.Equal(t, got, cache.inserted[0])
}

func TestExecuteCacheWriteOutlivesCaller(t *testing.T) {
	rem := &fakeRemote{records: []satellite.RemoteRecord{issRecord()}}
	cache := &fakeCache{}
	e := NewExecutor(rem, cache, connectivity.Static(true), testLogger)

	ctx, cancel := context.WithCancel(context.Background())
	got := e.Execute(ctx, filter.Selection{})
	cancel()
	e.Wait()

	assert.Len(t, got, 1)
	require.Len(t, cache.insertCtx, 1)
	assert.NoError(t, cache.insertCtx[0])
}

func TestExecuteCacheWriteFailureIsDropped(t *testing.T) {
	rem := &fakeRemote{records: []satellite.RemoteRecord{issRecord()}}
	cache := &fakeCache{insertErr: errors.New("disk full")}
	e := NewExecutor(rem, cache, connectivity.Static(true), testLogger)

	res := e.ExecuteResult(context.Background(), filter.Selection{})
	e.Wait()

	assert.NoError(t, res.Err)
	assert.Len(t, res.Satellites, 1)
}

func TestExecuteOfflineDefault(t *testing.T) {
	rem := &fakeRemote{}
	cache := &fakeCache{rows: cachedRows()}
	e := NewExecutor(rem, cache, connectivity.Static(false), testLogger)

	res := e.ExecuteResult(context.Background(), filter.Selection{})

	require.NoError(t, res.Err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, satellite.NormalizeCached(cachedRows()), res.Satellites)
	assert.Equal(t, []int{filter.PageSize}, cache.defaults)
	assert.Empty(t, cache.predicates)
	assert.Zero(t, rem.calls())
}

func TestExecuteOfflineFiltered(t *testing.T) {
	cache := &fakeCache{rows: cachedRows()[:1]}
	e := NewExecutor(&fakeRemote{}, cache, connectivity.Static(false), testLogger)

	sel := filter.Selection{Inclination: filter.InclinationBetween20And60}
	got := e.Execute(context.Background(), sel)

	assert.Len(t, got, 1)
	assert.Empty(t, cache.defaults)
	require.Len(t, cache.predicates, 1)
	assert.Equal(t,
		"WHERE 1 = 1 AND inclination BETWEEN 20.0 AND 60.0 ORDER BY name ASC LIMIT 35",
		cache.predicates[0].String(),
	)
}

func TestExecuteOfflineCacheFailureIsEmpty(t *testing.T) {
	cache := &fakeCache{err: errors.New("database is locked")}
	e := NewExecutor(&fakeRemote{}, cache, connectivity.Static(false), testLogger)

	res := e.ExecuteResult(context.Background(), filter.Selection{Sort: filter.SortEccentricity})

	assert.Error(t, res.Err)
	assert.NotNil(t, res.Satellites)
	assert.Empty(t, res.Satellites)
}

func TestExecuteReadsConnectivityOnce(t *testing.T) {
	for _, connected := range []bool{true, false} {
		sig := &countingSignal{connected: connected}
		e := NewExecutor(&fakeRemote{}, &fakeCache{}, sig, testLogger)

		e.Execute(context.Background(), filter.Selection{})
		e.Wait()

		assert.Equal(t, int32(1), sig.reads.Load(), "connected=%v", connected)
	}
}
