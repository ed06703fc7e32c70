// Package period turns human period descriptors like "October 2026" into
// concrete calendar dates for flight sampling and lodging stays.
package period

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod is returned when a descriptor does not resolve to a
// known month name and a valid year.
var ErrInvalidPeriod = errors.New("invalid period")

// ErrInvalidNights is returned when a stay length below one night is requested.
var ErrInvalidNights = errors.New("nights must be at least 1")

// checkinDay anchors lodging stays mid-month.
const checkinDay = 15

// months maps lowercase English and French month names to their calendar month.
var months = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,

	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "aout": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December, "decembre": time.December,
}

// Period is an inclusive date range covering a whole calendar month.
type Period struct {
	Start time.Time
	End   time.Time
}

// Parse resolves a descriptor of the form "<month name> <year>" into a Period
// spanning the full month. Month names are matched case-insensitively in
// English or French.
func Parse(descriptor string) (Period, error) {
	fields := strings.Fields(strings.TrimSpace(descriptor))
	if len(fields) != 2 {
		return Period{}, ErrInvalidPeriod
	}

	month, ok := months[strings.ToLower(fields[0])]
	if !ok {
		return Period{}, ErrInvalidPeriod
	}

	year, err := strconv.Atoi(fields[1])
	if err != nil || year < 1 || year > 9999 {
		return Period{}, ErrInvalidPeriod
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1) // last day of the month

	return Period{Start: start, End: end}, nil
}

// Days returns the number of calendar days the period covers, inclusive.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start).Hours()/24) + 1
}

// Sample returns up to desiredCount dates spread evenly across the period.
// Periods shorter than desiredCount days yield one date per available day.
// The result is deterministic, strictly within the period, unique and
// non-decreasing.
func (p Period) Sample(desiredCount int) []time.Time {
	if desiredCount < 1 {
		return nil
	}

	span := p.Days() - 1 // offset of the last day from the first
	count := desiredCount
	if span+1 < count {
		count = span + 1
	}

	dates := make([]time.Time, 0, count)
	for i := 0; i < count; i++ {
		offset := i
		if span >= desiredCount {
			offset = (span / desiredCount) * i
		}
		dates = append(dates, p.Start.AddDate(0, 0, offset))
	}
	return dates
}

// Window returns the lodging check-in and check-out dates for a stay of the
// given length, anchored at the period month's 15th.
func (p Period) Window(nights int) (checkin, checkout time.Time, err error) {
	if nights < 1 {
		return time.Time{}, time.Time{}, ErrInvalidNights
	}

	checkin = time.Date(p.Start.Year(), p.Start.Month(), checkinDay, 0, 0, 0, 0, time.UTC)
	checkout = checkin.AddDate(0, 0, nights)
	return checkin, checkout, nil
}

// CheckoutWindow resolves a descriptor and returns the stay dates in one step.
func CheckoutWindow(descriptor string, nights int) (checkin, checkout time.Time, err error) {
	if nights < 1 {
		return time.Time{}, time.Time{}, ErrInvalidNights
	}

	p, err := Parse(descriptor)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return p.Window(nights)
}
