package satellite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mariavieira99/Satellites/internal/tle"
)

func issRemote() RemoteRecord {
	return RemoteRecord{
		ID:          "https://tle.ivanstanojevic.me/api/tle/25544",
		SatelliteID: 25544,
		Name:        "ISS (ZARYA)",
		Date:        "2025-04-29T04:34:06+00:00",
		Line1:       "1 25544U 98067A   25119.19035294  .00013779  00000+0  25440-3 0  9995",
		Line2:       "2 25544  51.6352 189.7367 0002491  81.0639 279.0631 15.49383308507563",
		Type:        TypeTLE,
	}
}

func TestNormalizeRemoteDerivesElements(t *testing.T) {
	rec := issRemote()

	sat, err := Normalize(rec)
	require.NoError(t, err)

	assert.Equal(t, 51.6352, sat.Inclination)
	assert.Equal(t, 0.0002491, sat.Eccentricity)
	assert.Equal(t, rec.Line1, sat.Line1)
	assert.Equal(t, rec.Line2, sat.Line2)
	assert.Equal(t, rec.ID, sat.ID)
	assert.Equal(t, rec.Date, sat.Date)
	assert.Equal(t, 25544, sat.SatelliteID)
	assert.Equal(t, TypeTLE, sat.Type)
}

func TestNormalizeRemoteDefaultsType(t *testing.T) {
	rec := issRemote()
	rec.Type = ""

	sat, err := Normalize(rec)
	require.NoError(t, err)
	assert.Equal(t, TypeTLE, sat.Type)
}

func TestNormalizeRemoteMalformedLine(t *testing.T) {
	rec := issRemote()
	rec.Line2 = "2 25544 garbage"

	_, err := Normalize(rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tle.ErrMalformedLine))
}

// A cached row is copied as-is: its Line2 is not re-parsed, so even an
// unparsable line keeps the stored elements.
func TestNormalizeCachedIsFieldCopy(t *testing.T) {
	row := CachedRow{
		ID:           "https://tle.ivanstanojevic.me/api/tle/1",
		SatelliteID:  1,
		Name:         "CACHED",
		Date:         "2025-01-01T00:00:00+00:00",
		Line1:        "1 not a real line",
		Line2:        "not parseable",
		Type:         TypeTLE,
		Inclination:  12.5,
		Eccentricity: 0.25,
	}

	sat, err := Normalize(row)
	require.NoError(t, err)
	assert.Equal(t, row, ToCachedRow(sat))
}

func TestNormalizeRemoteBatch(t *testing.T) {
	good := issRemote()
	bad := issRemote()
	bad.SatelliteID = 2
	bad.Line2 = "2 2"

	sats, err := NormalizeRemote([]RemoteRecord{good})
	require.NoError(t, err)
	require.Len(t, sats, 1)

	_, err = NormalizeRemote([]RemoteRecord{good, bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "satellite 2")
}

func TestNormalizeCachedBatch(t *testing.T) {
	rows := []CachedRow{{SatelliteID: 1, Name: "A"}, {SatelliteID: 2, Name: "B"}}
	sats := NormalizeCached(rows)
	require.Len(t, sats, 2)
	assert.Equal(t, "A", sats[0].Name)
	assert.Equal(t, 2, sats[1].SatelliteID)
}
