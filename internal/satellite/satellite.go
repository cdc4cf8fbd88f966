// Package satellite defines the domain satellite record and normalizes the
// two shapes it arrives in: records reported by the remote API and rows read
// back from the local cache.
package satellite

// TypeTLE is the only record type the API currently reports.
const TypeTLE = "Tle"

// Satellite is one normalized TLE record.
//
// Inclination and Eccentricity are derived from Line2 when the record is
// ingested and cached alongside it. Line2 is authoritative if they disagree.
type Satellite struct {
	ID           string  `json:"id"` // canonical @id URL reported by the API
	SatelliteID  int     `json:"satelliteId"`
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	Line1        string  `json:"line1"`
	Line2        string  `json:"line2"`
	Type         string  `json:"type"`
	Inclination  float64 `json:"inclination"`
	Eccentricity float64 `json:"eccentricity"`
}
