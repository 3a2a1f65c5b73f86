package scraper

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// ParsePrice drops the two-character currency marker ("zł"), removes all
// whitespace and parses what is left. A comma is accepted as the decimal separator.
func ParsePrice(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) < 3 {
		return 0, fmt.Errorf("price %q too short", s)
	}
	runes := []rune(s)
	body := strings.Join(strings.Fields(string(runes[:len(runes)-2])), "")
	body = strings.Replace(body, ",", ".", 1)

	price, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return price, nil
}

var relativeDays = map[string]int{
	"dzisiaj":   0,
	"today":     0,
	"wczoraj":   -1,
	"yesterday": -1,
}

// Keyed by the first three letters of the month name, Polish and English.
var monthPrefixes = map[string]time.Month{
	"sty": time.January, "jan": time.January,
	"lut": time.February, "feb": time.February,
	"mar": time.March,
	"kwi": time.April, "apr": time.April,
	"maj": time.May, "may": time.May,
	"cze": time.June, "jun": time.June,
	"lip": time.July, "jul": time.July,
	"sie": time.August, "aug": time.August,
	"wrz": time.September, "sep": time.September,
	"paź": time.October, "paz": time.October, "oct": time.October,
	"lis": time.November, "nov": time.November,
	"gru": time.December, "dec": time.December,
}

// ParseDate converts listing dates such as "dzisiaj 14:05", "yesterday 08:30"
// or "12 lis" to an absolute time. Relative forms are anchored at now; a
// day-month form without a year resolves to the most recent such date not after now.
func ParseDate(s string, now time.Time) (time.Time, error) {
	fields := strings.Fields(strings.ToLower(s))
	if len(fields) == 0 {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if offset, ok := relativeDays[fields[0]]; ok {
		day := now.AddDate(0, 0, offset)
		hour, minute := 0, 0
		if len(fields) > 1 {
			clock, err := time.Parse("15:04", fields[1])
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid time in %q: %w", s, err)
			}
			hour, minute = clock.Hour(), clock.Minute()
		}
		return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
	}

	if len(fields) < 2 {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	dayNum, err := strconv.Atoi(strings.TrimSuffix(fields[0], "."))
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}
	month, ok := monthPrefixes[prefix(fields[1], 3)]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month in %q", s)
	}

	year, explicitYear := now.Year(), false
	if len(fields) > 2 {
		if y, err := strconv.Atoi(fields[2]); err == nil && len(fields[2]) == 4 {
			year, explicitYear = y, true
		}
	}

	t := time.Date(year, month, dayNum, 0, 0, 0, 0, now.Location())
	if t.Day() != dayNum || t.Month() != month {
		return time.Time{}, fmt.Errorf("day out of range in %q", s)
	}
	if !explicitYear && t.After(now) {
		t = time.Date(year-1, month, dayNum, 0, 0, 0, 0, now.Location())
	}
	return t, nil
}

func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) < n {
		return s
	}
	return string(runes[:n])
}
