// Package dates holds the Spanish-locale date helpers: natural date
// detection in free text, day and week arithmetic, and display formatting.
package dates

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// months maps every accepted spelling to its month. "setiembre" is a valid
// alternate for September.
var months = map[string]time.Month{
	"enero":      time.January,
	"febrero":    time.February,
	"marzo":      time.March,
	"abril":      time.April,
	"mayo":       time.May,
	"junio":      time.June,
	"julio":      time.July,
	"agosto":     time.August,
	"septiembre": time.September,
	"setiembre":  time.September,
	"octubre":    time.October,
	"noviembre":  time.November,
	"diciembre":  time.December,
}

var naturalDate = regexp.MustCompile(`(?i)(\*?)(\d{1,2})\s*(?:de\s*)?(enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)`)

// WeekdayLabels are the column headers of a Monday-first grid.
var WeekdayLabels = [7]string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}

// Match is a date found inside free text.
type Match struct {
	Date       time.Time
	IsDeadline bool
}

// ParseNatural looks for "15 de abril", "15 abril" or "*15 de abril" in text.
// The year is now's year unless that day has already passed, in which case
// the date rolls over to next year. The time of day is always 09:00.
func ParseNatural(text string, now time.Time) (Match, bool) {
	m := naturalDate.FindStringSubmatch(text)
	if m == nil {
		return Match{}, false
	}
	day, err := strconv.Atoi(m[2])
	if err != nil {
		return Match{}, false
	}
	month := months[strings.ToLower(m[3])]

	loc := now.Location()
	year := now.Year()
	candidate := time.Date(year, month, day, 9, 0, 0, 0, loc)
	if candidate.Before(StartOfDay(now)) {
		year++
	}
	return Match{
		Date:       time.Date(year, month, day, 9, 0, 0, 0, loc),
		IsDeadline: m[1] == "*",
	}, true
}

func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AddDays keeps the wall clock and lets time.Date normalize month and year
// rollover.
func AddDays(t time.Time, n int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+n, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// StartOfWeek returns midnight of the most recent weekStart on or before t.
func StartOfWeek(t time.Time, weekStart time.Weekday) time.Time {
	back := (int(t.Weekday()) + 7 - int(weekStart)) % 7
	return StartOfDay(AddDays(t, -back))
}

// SameDay reports whether b falls on a's calendar day, judged in a's location.
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// FormatPretty renders "30 de mayo 11:24".
func FormatPretty(t time.Time) string {
	return fmt.Sprintf("%s %02d:%02d", FormatDateOnly(t), t.Hour(), t.Minute())
}

// FormatDateOnly renders "14 de julio".
func FormatDateOnly(t time.Time) string {
	return fmt.Sprintf("%d de %s", t.Day(), MonthName(t.Month()))
}

// InputLayout is how dates are typed and shown in forms.
const InputLayout = "02/01/2006 15:04"

var ErrBadInput = errors.New(`use DD/MM/AAAA HH:MM or "15 de abril"`)

// ParseInput reads a typed date: DD/MM/YYYY with an optional HH:MM, an ISO
// date, or a natural date such as "15 de abril". Empty input means no date.
func ParseInput(v string, now time.Time) (*time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{InputLayout, "02/01/2006", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, v, now.Location()); err == nil {
			return &t, nil
		}
	}
	if m, ok := ParseNatural(v, now); ok {
		return &m.Date, nil
	}
	return nil, fmt.Errorf("%q: %w", v, ErrBadInput)
}
