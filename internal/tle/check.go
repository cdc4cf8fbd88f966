package tle

import (
	"fmt"
	"strconv"
	"strings"

	satellite "github.com/joshuaferrara/go-satellite"
)

const lineLength = 69

// column is one fixed-column value as go-satellite assembles it before
// parsing.
type column struct {
	name    string
	text    string
	integer bool
}

// elementColumns rebuilds every value go-satellite parses out of a TLE pair.
// Embedded blanks are dropped the same way (at most two per value), and the
// implied decimal point and exponent of the drag terms are spelled out.
func elementColumns(line1, line2 string) []column {
	squash := func(s string) string { return strings.Replace(s, " ", "", 2) }
	return []column{
		{name: "catalog number", text: strings.TrimSpace(line1[2:7]), integer: true},
		{name: "epoch year", text: line1[18:20], integer: true},
		{name: "epoch day", text: line1[20:32]},
		{name: "mean motion first derivative", text: squash(line1[33:43])},
		{name: "mean motion second derivative", text: squash(line1[44:45] + "." + line1[45:50] + "e" + line1[50:52])},
		{name: "bstar", text: squash(line1[53:54] + "." + line1[54:59] + "e" + line1[59:61])},
		{name: "inclination", text: squash(line2[8:16])},
		{name: "right ascension", text: squash(line2[17:25])},
		{name: "eccentricity", text: squash("." + line2[26:33])},
		{name: "argument of perigee", text: squash(line2[34:42])},
		{name: "mean anomaly", text: squash(line2[43:51])},
		{name: "mean motion", text: squash(line2[52:63])},
	}
}

// Check reports whether a TLE pair is a sound element set. Every column the
// SGP4 initializer reads is parsed here first, because go-satellite exits the
// process on an unparsable column; only then is the set initialized and its
// error code inspected. Failures wrap ErrMalformedLine or describe the
// initializer's refusal.
func Check(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	for n, line := range [...]string{line1, line2} {
		want := byte('1' + n)
		if len(line) != lineLength || line[0] != want {
			return fmt.Errorf("%w: want %d columns starting with %q, got %q", ErrMalformedLine, lineLength, want, line)
		}
	}
	if line1[2:7] != line2[2:7] {
		return fmt.Errorf("%w: catalog number %q on line 1, %q on line 2", ErrMalformedLine, line1[2:7], line2[2:7])
	}

	for _, c := range elementColumns(line1, line2) {
		var err error
		if c.integer {
			_, err = strconv.Atoi(c.text)
		} else {
			_, err = strconv.ParseFloat(c.text, 64)
		}
		if err != nil {
			return fmt.Errorf("%w: %s %q", ErrMalformedLine, c.name, c.text)
		}
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return fmt.Errorf("element set rejected: code=%d %s", sat.Error, sat.ErrorStr)
	}
	return nil
}
