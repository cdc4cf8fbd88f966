package satellite

import (
	"fmt"

	"github.com/mariavieira99/Satellites/internal/tle"
)

// Record is a raw satellite record awaiting normalization. It is implemented
// only by RemoteRecord and CachedRow.
type Record interface {
	isRecord()
}

// RemoteRecord is a member of the remote API collection. It carries the raw
// TLE lines but none of the derived elements.
type RemoteRecord struct {
	ID          string
	SatelliteID int
	Name        string
	Date        string
	Line1       string
	Line2       string
	Type        string
}

// CachedRow is a satellite read back from the local cache, with elements
// derived at ingestion time.
type CachedRow struct {
	ID           string
	SatelliteID  int
	Name         string
	Date         string
	Line1        string
	Line2        string
	Type         string
	Inclination  float64
	Eccentricity float64
}

func (RemoteRecord) isRecord() {}
func (CachedRow) isRecord() {}

// Normalize maps a raw record to a Satellite. Remote records have their
// elements parsed from Line2; cached rows are copied through unchanged.
func Normalize(r Record) (Satellite, error) {
	switch rec := r.(type) {
	case RemoteRecord:
		return fromRemote(rec)
	case CachedRow:
		return fromCached(rec), nil
	default:
		return Satellite{}, fmt.Errorf("unsupported record type %T", r)
	}
}

// NormalizeRemote normalizes a whole remote batch. One malformed record fails
// the batch: it signals a contract violation by the upstream source.
func NormalizeRemote(records []RemoteRecord) ([]Satellite, error) {
	out := make([]Satellite, 0, len(records))
	for _, rec := range records {
		sat, err := fromRemote(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, sat)
	}
	return out, nil
}

// NormalizeCached normalizes rows read from the cache.
func NormalizeCached(rows []CachedRow) []Satellite {
	out := make([]Satellite, 0, len(rows))
	for _, row := range rows {
		out = append(out, fromCached(row))
	}
	return out
}

// ToCachedRow converts a normalized satellite into its cache shape.
func ToCachedRow(s Satellite) CachedRow {
	return CachedRow(s)
}

func fromRemote(rec RemoteRecord) (Satellite, error) {
	el, err := tle.ParseLine2(rec.Line2)
	if err != nil {
		return Satellite{}, fmt.Errorf("satellite %d: %w", rec.SatelliteID, err)
	}
	typ := rec.Type
	if typ == "" {
		typ = TypeTLE
	}
	return Satellite{
		ID:           rec.ID,
		SatelliteID:  rec.SatelliteID,
		Name:         rec.Name,
		Date:         rec.Date,
		Line1:        rec.Line1,
		Line2:        rec.Line2,
		Type:         typ,
		Inclination:  el.Inclination,
		Eccentricity: el.Eccentricity,
	}, nil
}

func fromCached(row CachedRow) Satellite {
	return Satellite(row)
}
