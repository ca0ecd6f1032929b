package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bjorheimar/catalog-sync/internal/atvr"
	"github.com/bjorheimar/catalog-sync/internal/model"
)

// ClosedSentinel is what upstream puts in the hours field on closed days.
const ClosedSentinel = "Lokað"

var dayKeys = [7]string{"today", "day1", "day2", "day3", "day4", "day5", "day6"}

// Month prefixes in match order. Upstream mostly uses three-letter Icelandic
// abbreviations but has been seen sending "ág" and unaccented forms.
var monthPrefixes = []struct {
	prefix string
	month  time.Month
}{
	{"jan", time.January},
	{"feb", time.February},
	{"mar", time.March},
	{"apr", time.April},
	{"maí", time.May},
	{"mai", time.May},
	{"jún", time.June},
	{"jun", time.June},
	{"júl", time.July},
	{"jul", time.July},
	{"ág", time.August},
	{"agu", time.August},
	{"sep", time.September},
	{"okt", time.October},
	{"nóv", time.November},
	{"nov", time.November},
	{"des", time.December},
}

var dateRe = regexp.MustCompile(`^\s*(\d{1,2})\.\s*(\S+)`)

type HoursParseError struct {
	StoreExternalID string
	Day             string
	Value           string
	Err             error
}

func (e *HoursParseError) Error() string {
	return fmt.Sprintf("store %s: %s %q: %v", e.StoreExternalID, e.Day, e.Value, e.Err)
}

func (e *HoursParseError) Unwrap() error { return e.Err }

// ParseStoreHours converts the store's seven upcoming days into one row per
// open weekday. Closed days produce no row. now anchors the year of the
// "day. month" dates. Any malformed day fails the whole store.
func ParseStoreHours(s *atvr.Store, now time.Time) ([]model.OpeningHours, error) {
	hours := make([]model.OpeningHours, 0, len(dayKeys))
	for i, day := range s.Week() {
		date, err := parseDate(day.Date, now)
		if err != nil {
			return nil, &HoursParseError{StoreExternalID: s.PostCode, Day: dayKeys[i], Value: day.Date, Err: err}
		}

		open := strings.TrimSpace(day.Open)
		if strings.EqualFold(open, ClosedSentinel) {
			continue
		}
		opens, closes, err := parseRange(open)
		if err != nil {
			return nil, &HoursParseError{StoreExternalID: s.PostCode, Day: dayKeys[i], Value: day.Open, Err: err}
		}

		hours = append(hours, model.OpeningHours{
			Weekday:         int(date.Weekday()),
			OpensAtMinutes:  opens,
			ClosesAtMinutes: closes,
		})
	}
	return hours, nil
}

func parseDate(value string, now time.Time) (time.Time, error) {
	m := dateRe.FindStringSubmatch(value)
	if m == nil {
		return time.Time{}, fmt.Errorf("expected \"day. month\"")
	}
	day, _ := strconv.Atoi(m[1])
	month, err := parseMonth(m[2])
	if err != nil {
		return time.Time{}, err
	}

	date := time.Date(now.Year(), month, day, 0, 0, 0, 0, now.Location())
	if date.Month() != month || date.Day() != day {
		return time.Time{}, fmt.Errorf("no day %d in %s", day, month)
	}

	// The week can straddle new year.
	switch {
	case date.Before(now.AddDate(0, -6, 0)):
		date = date.AddDate(1, 0, 0)
	case date.After(now.AddDate(0, 6, 0)):
		date = date.AddDate(-1, 0, 0)
	}
	return date, nil
}

func parseMonth(value string) (time.Month, error) {
	v := strings.ToLower(strings.TrimSuffix(value, "."))
	for _, mp := range monthPrefixes {
		if strings.HasPrefix(v, mp.prefix) {
			return mp.month, nil
		}
	}
	return 0, fmt.Errorf("unknown month %q", value)
}

// parseRange reads "HH - HH" (or "HH:MM - HH:MM") into minutes after midnight.
func parseRange(value string) (int, int, error) {
	parts := strings.Split(value, "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected \"HH - HH\"")
	}
	opens, err := parseClock(parts[0])
	if err != nil {
		return 0, 0, err
	}
	closes, err := parseClock(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if closes <= opens {
		return 0, 0, fmt.Errorf("closing time not after opening time")
	}
	return opens, closes, nil
}

func parseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	hh, mm, hasMinutes := strings.Cut(value, ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, fmt.Errorf("bad hour %q", value)
	}
	m := 0
	if hasMinutes {
		m, err = strconv.Atoi(mm)
		if err != nil || m < 0 || m > 59 || len(mm) != 2 {
			return 0, fmt.Errorf("bad minutes %q", value)
		}
	}
	if h == 24 && m != 0 {
		return 0, fmt.Errorf("bad time %q", value)
	}
	return h*60 + m, nil
}
