package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LddapPrefix is the fixed agency prefix of every LDDAP number.
const LddapPrefix = "01101101"

// FormatLddapCode renders an LDDAP number, e.g. 01101101-01-0019-2026:
// fixed prefix, 2-digit month, 4-digit zero-padded series, year.
func FormatLddapCode(now time.Time, series int) string {
	return fmt.Sprintf("%s-%02d-%04d-%d", LddapPrefix, int(now.Month()), series, now.Year())
}

// ParseLddapCode extracts the series and year from an LDDAP number.
// ok is false when the code does not have the expected shape.
func ParseLddapCode(code string) (series, year int, ok bool) {
	parts := strings.Split(code, "-")
	if len(parts) != 4 {
		return 0, 0, false
	}
	series, err := strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, false
	}
	year, err = strconv.Atoi(parts[3])
	if err != nil {
		return 0, 0, false
	}
	return series, year, true
}

// NextSeries computes the series for a new LDDAP number given the most
// recently issued one. The series continues within a year and restarts
// at 1 on rollover. An empty or malformed last code also yields 1.
func NextSeries(lastCode string, currentYear int) int {
	if lastCode == "" {
		return 1
	}
	series, year, ok := ParseLddapCode(lastCode)
	if !ok || year != currentYear {
		return 1
	}
	return series + 1
}
