package tle

import "time"

// Entry is a single satellite's two-line element set as read from a
// three-line (name, line 1, line 2) text source.
type Entry struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// Elements holds the orbital parameters derived from line 2 of a TLE.
type Elements struct {
	Inclination  float64 // degrees
	Eccentricity float64 // unitless, [0, 1)
}
