package tle

import (
	"errors"
	"testing"
)

// splice overwrites line starting at column at.
func splice(line string, at int, s string) string {
	return line[:at] + s + line[at+len(s):]
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		line1   string
		line2   string
		wantErr bool
	}{
		{"iss", issLine1, issLine2, false},
		{"swift", swiftLine1, swiftLine2, false},
		{"trailing whitespace", issLine1 + "  ", issLine2 + "\r", false},
		{"short line 1", issLine1[:60], issLine2, true},
		{"short line 2", issLine1, issLine2[:60], true},
		{"swapped lines", issLine2, issLine1, true},
		{"catalog mismatch", issLine1, swiftLine2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Check(tt.line1, tt.line2)
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Each case keeps the 69-column layout and corrupts one column that the SGP4
// initializer parses; Check must return an error instead of handing it over.
func TestCheckCorruptColumns(t *testing.T) {
	tests := []struct {
		name  string
		line1 string
		line2 string
	}{
		{"bstar", splice(issLine1, 54, "2X440"), issLine2},
		{"bstar exponent", splice(issLine1, 59, "-?"), issLine2},
		{"first derivative", splice(issLine1, 35, "00O13"), issLine2},
		{"second derivative", splice(issLine1, 45, "0a000"), issLine2},
		{"epoch year", splice(issLine1, 18, "2S"), issLine2},
		{"epoch day", splice(issLine1, 23, "/"), issLine2},
		{"alpha catalog number", splice(issLine1, 2, "A5544"), splice(issLine2, 2, "A5544")},
		{"right ascension", issLine1, splice(issLine2, 17, "18#")},
		{"eccentricity", issLine1, splice(issLine2, 26, "00o2491")},
		{"argument of perigee", issLine1, splice(issLine2, 35, "8l")},
		{"mean anomaly", issLine1, splice(issLine2, 43, "279.06.1")},
		{"mean motion", issLine1, splice(issLine2, 55, "x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.line1) != lineLength || len(tt.line2) != lineLength {
				t.Fatalf("test lines must stay %d columns", lineLength)
			}
			err := Check(tt.line1, tt.line2)
			if !errors.Is(err, ErrMalformedLine) {
				t.Errorf("Check() error = %v, want ErrMalformedLine", err)
			}
		})
	}
}
