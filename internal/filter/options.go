// Package filter models the fixed sort and filter choices offered to users and
// translates a selection into remote API query parameters or a local cache
// predicate with the same boundaries.
package filter

import (
	"fmt"
	"strings"
)

// PageSize caps every query, remote or local.
const PageSize = 35

// Sort selects the ascending sort key.
type Sort int

const (
	SortName Sort = iota
	SortInclination
	SortEccentricity
)

var sortColumns = [...]string{
	SortName:         "name",
	SortInclination:  "inclination",
	SortEccentricity: "eccentricity",
}

// Column is the field name used by both the API and the cache.
func (s Sort) Column() string {
	if s < 0 || int(s) >= len(sortColumns) {
		return sortColumns[SortName]
	}
	return sortColumns[s]
}

func (s Sort) String() string { return s.Column() }

// Sorts lists every sort key in display order.
func Sorts() []Sort {
	return []Sort{SortName, SortInclination, SortEccentricity}
}

// ParseSort accepts a sort key; the empty string selects the default.
func ParseSort(v string) (Sort, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == "default" {
		return SortName, nil
	}
	for i, c := range sortColumns {
		if c == v {
			return Sort(i), nil
		}
	}
	return SortName, fmt.Errorf("unknown sort %q", v)
}

// Bounds is the numeric window of a bucket. A missing side is unrestricted.
type Bounds struct {
	Lower, Upper       float64
	HasLower, HasUpper bool
}

func below(x float64) Bounds { return Bounds{Upper: x, HasUpper: true} }
func above(x float64) Bounds { return Bounds{Lower: x, HasLower: true} }
func between(lo, hi float64) Bounds { return Bounds{Lower: lo, Upper: hi, HasLower: true, HasUpper: true} }

// Unrestricted reports whether the bounds constrain nothing.
func (b Bounds) Unrestricted() bool { return !b.HasLower && !b.HasUpper }

type bucket struct {
	key    string
	label  string
	bounds Bounds
}

// Inclination is one of the fixed inclination buckets.
type Inclination int

const (
	InclinationAny Inclination = iota
	InclinationBelow20
	InclinationBetween20And60
	InclinationBetween60And100
	InclinationAbove100
)

var inclinationBuckets = [...]bucket{
	InclinationAny:             {key: "any", label: "Any"},
	InclinationBelow20:         {key: "lt20", label: "< 20°", bounds: below(20)},
	InclinationBetween20And60:  {key: "20-60", label: "20–60°", bounds: between(20, 60)},
	InclinationBetween60And100: {key: "60-100", label: "60–100°", bounds: between(60, 100)},
	InclinationAbove100:        {key: "gt100", label: "> 100°", bounds: above(100)},
}

func (i Inclination) bucket() bucket {
	if i < 0 || int(i) >= len(inclinationBuckets) {
		return inclinationBuckets[InclinationAny]
	}
	return inclinationBuckets[i]
}

func (i Inclination) String() string { return i.bucket().key }
func (i Inclination) Label() string { return i.bucket().label }
func (i Inclination) Bounds() Bounds { return i.bucket().bounds }

// Inclinations lists every inclination bucket in display order.
func Inclinations() []Inclination {
	out := make([]Inclination, len(inclinationBuckets))
	for i := range inclinationBuckets {
		out[i] = Inclination(i)
	}
	return out
}

// ParseInclination accepts a bucket key; the empty string selects Any.
func ParseInclination(v string) (Inclination, error) {
	i, err := parseBucket(inclinationBuckets[:], v)
	if err != nil {
		return InclinationAny, fmt.Errorf("unknown inclination filter %q", v)
	}
	return Inclination(i), nil
}

// Eccentricity is one of the fixed eccentricity buckets.
type Eccentricity int

const (
	EccentricityAny Eccentricity = iota
	EccentricityCircular
	EccentricityLow
	EccentricityMedium
	EccentricityHigh
)

var eccentricityBuckets = [...]bucket{
	EccentricityAny:      {key: "any", label: "Any"},
	EccentricityCircular: {key: "circular", label: "Circular (≤ 0.01)", bounds: below(0.01)},
	EccentricityLow:      {key: "low", label: "Low elliptical (0.01–0.29)", bounds: between(0.01, 0.29)},
	EccentricityMedium:   {key: "medium", label: "Medium elliptical (0.3–0.69)", bounds: between(0.3, 0.69)},
	EccentricityHigh:     {key: "high", label: "High elliptical (0.7–0.99)", bounds: between(0.7, 0.99)},
}

func (e Eccentricity) bucket() bucket {
	if e < 0 || int(e) >= len(eccentricityBuckets) {
		return eccentricityBuckets[EccentricityAny]
	}
	return eccentricityBuckets[e]
}

func (e Eccentricity) String() string { return e.bucket().key }
func (e Eccentricity) Label() string { return e.bucket().label }
func (e Eccentricity) Bounds() Bounds { return e.bucket().bounds }

// Eccentricities lists every eccentricity bucket in display order.
func Eccentricities() []Eccentricity {
	out := make([]Eccentricity, len(eccentricityBuckets))
	for i := range eccentricityBuckets {
		out[i] = Eccentricity(i)
	}
	return out
}

// ParseEccentricity accepts a bucket key; the empty string selects Any.
func ParseEccentricity(v string) (Eccentricity, error) {
	i, err := parseBucket(eccentricityBuckets[:], v)
	if err != nil {
		return EccentricityAny, fmt.Errorf("unknown eccentricity filter %q", v)
	}
	return Eccentricity(i), nil
}

func parseBucket(buckets []bucket, v string) (int, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return 0, nil
	}
	for i, b := range buckets {
		if b.key == v {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no bucket %q", v)
}

// Selection is the user's current sort and filter choice.
type Selection struct {
	Sort         Sort
	Inclination  Inclination
	Eccentricity Eccentricity
}

// IsDefault reports the unfiltered, name-sorted selection.
func (s Selection) IsDefault() bool {
	return s.Sort == SortName && s.Inclination == InclinationAny && s.Eccentricity == EccentricityAny
}

// ParseSelection builds a selection from host-supplied keys.
func ParseSelection(sort, inclination, eccentricity string) (Selection, error) {
	var sel Selection
	var err error
	if sel.Sort, err = ParseSort(sort); err != nil {
		return Selection{}, err
	}
	if sel.Inclination, err = ParseInclination(inclination); err != nil {
		return Selection{}, err
	}
	if sel.Eccentricity, err = ParseEccentricity(eccentricity); err != nil {
		return Selection{}, err
	}
	return sel, nil
}
