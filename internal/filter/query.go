package filter

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/mariavieira99/Satellites/internal/satellite"
)

// Remote query parameter names. Inclination bounds are strict (gt/lt) and
// eccentricity bounds inclusive (gte/lte), matching the upstream operators.
const (
	ParamPageSize        = "page-size"
	ParamSortDir         = "sort-dir"
	ParamSort            = "sort"
	ParamEccentricityGTE = "eccentricity[gte]"
	ParamEccentricityLTE = "eccentricity[lte]"
	ParamInclinationGT   = "inclination[gt]"
	ParamInclinationLT   = "inclination[lt]"

	sortAscending = "asc"
)

// QueryParameters is the remote form of a selection. Empty bound strings are
// omitted from the request.
type QueryParameters struct {
	Sort            string
	EccentricityGTE string
	EccentricityLTE string
	InclinationGT   string
	InclinationLT   string
}

// Values encodes the parameters for the collection endpoint.
func (p QueryParameters) Values() url.Values {
	v := url.Values{}
	v.Set(ParamPageSize, strconv.Itoa(PageSize))
	v.Set(ParamSortDir, sortAscending)
	sort := p.Sort
	if sort == "" {
		sort = SortName.Column()
	}
	v.Set(ParamSort, sort)
	setIf(v, ParamEccentricityGTE, p.EccentricityGTE)
	setIf(v, ParamEccentricityLTE, p.EccentricityLTE)
	setIf(v, ParamInclinationGT, p.InclinationGT)
	setIf(v, ParamInclinationLT, p.InclinationLT)
	return v
}

func setIf(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

// ToRemoteParams converts a selection into remote query parameters.
func ToRemoteParams(sel Selection) QueryParameters {
	p := QueryParameters{Sort: sel.Sort.Column()}

	inc := sel.Inclination.Bounds()
	if inc.HasLower {
		p.InclinationGT = FormatBound(inc.Lower)
	}
	if inc.HasUpper {
		p.InclinationLT = FormatBound(inc.Upper)
	}

	ecc := sel.Eccentricity.Bounds()
	if ecc.HasLower {
		p.EccentricityGTE = FormatBound(ecc.Lower)
	}
	if ecc.HasUpper {
		p.EccentricityLTE = FormatBound(ecc.Upper)
	}
	return p
}

// FormatBound renders a bound as a decimal string that always carries a
// fractional part ("20.0", "0.01").
func FormatBound(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// Op is a comparison operator of a local predicate clause.
type Op string

const (
	OpLess         Op = "<"
	OpLessEqual    Op = "<="
	OpGreater      Op = ">"
	OpGreaterEqual Op = ">="
	OpBetween      Op = "BETWEEN"
)

// Local cache columns that clauses may reference.
const (
	ColumnInclination  = "inclination"
	ColumnEccentricity = "eccentricity"
)

// Clause is one numeric restriction on a cache column. OpBetween uses two
// values, every other operator one.
type Clause struct {
	Column string
	Op     Op
	Values []float64
}

// SQL renders the clause with placeholders.
func (c Clause) SQL() (string, []any) {
	if c.Op == OpBetween {
		return c.Column + " BETWEEN ? AND ?", []any{c.Values[0], c.Values[1]}
	}
	return c.Column + " " + string(c.Op) + " ?", []any{c.Values[0]}
}

// String renders the clause with literal values, for logs.
func (c Clause) String() string {
	if c.Op == OpBetween {
		return c.Column + " BETWEEN " + FormatBound(c.Values[0]) + " AND " + FormatBound(c.Values[1])
	}
	return c.Column + " " + string(c.Op) + " " + FormatBound(c.Values[0])
}

// Matches evaluates the clause against a value.
func (c Clause) Matches(v float64) bool {
	switch c.Op {
	case OpLess:
		return v < c.Values[0]
	case OpLessEqual:
		return v <= c.Values[0]
	case OpGreater:
		return v > c.Values[0]
	case OpGreaterEqual:
		return v >= c.Values[0]
	case OpBetween:
		return v >= c.Values[0] && v <= c.Values[1]
	}
	return false
}

// Predicate is the local form of a selection: clauses joined with AND, an
// ascending order column and a row limit.
type Predicate struct {
	Clauses []Clause
	OrderBy string
	Limit   int
}

// ToLocalPredicate converts a selection into a cache predicate.
func ToLocalPredicate(sel Selection) Predicate {
	p := Predicate{OrderBy: sel.Sort.Column(), Limit: PageSize}

	inc := sel.Inclination.Bounds()
	switch {
	case inc.HasLower && inc.HasUpper:
		p.Clauses = append(p.Clauses, Clause{Column: ColumnInclination, Op: OpBetween, Values: []float64{inc.Lower, inc.Upper}})
	case inc.HasUpper:
		p.Clauses = append(p.Clauses, Clause{Column: ColumnInclination, Op: OpLess, Values: []float64{inc.Upper}})
	case inc.HasLower:
		p.Clauses = append(p.Clauses, Clause{Column: ColumnInclination, Op: OpGreater, Values: []float64{inc.Lower}})
	}

	ecc := sel.Eccentricity.Bounds()
	if ecc.HasLower {
		p.Clauses = append(p.Clauses, Clause{Column: ColumnEccentricity, Op: OpGreater, Values: []float64{ecc.Lower}})
	}
	if ecc.HasUpper {
		p.Clauses = append(p.Clauses, Clause{Column: ColumnEccentricity, Op: OpLessEqual, Values: []float64{ecc.Upper}})
	}

	return p
}

// Where renders the conjunction of all clauses with placeholders. It returns
// an empty string when the predicate is unrestricted.
func (p Predicate) Where() (string, []any) {
	parts := make([]string, 0, len(p.Clauses))
	var args []any
	for _, c := range p.Clauses {
		sql, a := c.SQL()
		parts = append(parts, sql)
		args = append(args, a...)
	}
	return strings.Join(parts, " AND "), args
}

// String renders the full query tail with literal values, for logs.
func (p Predicate) String() string {
	var b strings.Builder
	b.WriteString("WHERE 1 = 1")
	for _, c := range p.Clauses {
		b.WriteString(" AND ")
		b.WriteString(c.String())
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(p.OrderBy)
	b.WriteString(" ASC LIMIT ")
	b.WriteString(strconv.Itoa(p.Limit))
	return b.String()
}

// Matches evaluates every clause against a satellite's elements.
func (p Predicate) Matches(s satellite.Satellite) bool {
	for _, c := range p.Clauses {
		v := s.Inclination
		if c.Column == ColumnEccentricity {
			v = s.Eccentricity
		}
		if !c.Matches(v) {
			return false
		}
	}
	return true
}
