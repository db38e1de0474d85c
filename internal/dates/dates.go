// Package dates resolves Portuguese date references ("ontem", "15/03/2024",
// "15 de março") to absolute times.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gmsas95/finbot/internal/textnorm"
)

// DisplayLayout is the canonical DD/MM/YYYY form used for deadlines.
const DisplayLayout = "02/01/2006"

var months = map[string]time.Month{
	"janeiro":   time.January,
	"fevereiro": time.February,
	"marco":     time.March,
	"abril":     time.April,
	"maio":      time.May,
	"junho":     time.June,
	"julho":     time.July,
	"agosto":    time.August,
	"setembro":  time.September,
	"outubro":   time.October,
	"novembro":  time.November,
	"dezembro":  time.December,
}

type relative struct {
	match  func(string) bool
	offset func(time.Time) time.Time
}

func contains(word string) func(string) bool {
	return func(s string) bool { return strings.Contains(s, word) }
}

func days(n int) func(time.Time) time.Time {
	return func(t time.Time) time.Time { return t.AddDate(0, 0, n) }
}

var ontemRe = regexp.MustCompile(`\bontem\b`)

// Checked in order; the first hit wins. Keys are in normalized form.
var relatives = []relative{
	{ontemRe.MatchString, days(-1)},
	{contains("hoje"), days(0)},
	{contains("amanha"), days(1)},
	{contains("anteontem"), days(-2)},
	{contains("semana passada"), days(-7)},
	{contains("mes passado"), days(-30)},
	{contains("ano passado"), days(-365)},
}

// absolute describes one calendar pattern by the groups it captures.
// A zero group index means the part is absent and defaults from the
// reference time. SkipGroup, when set, rejects the match if that group
// captured anything; it lets "DD de mês" defer to "DD de mês de YYYY".
type absolute struct {
	Regex      *regexp.Regexp
	DayGroup   int
	MonthGroup int
	YearGroup  int
	MonthName  bool
	SkipGroup  int
	// ShortYear marks a two-digit year, read as 20YY
	ShortYear bool
}

var absolutes = []absolute{
	{Regex: regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`), DayGroup: 1, MonthGroup: 2, YearGroup: 3},
	{Regex: regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{2})\b`), DayGroup: 1, MonthGroup: 2, YearGroup: 3, ShortYear: true},
	{Regex: regexp.MustCompile(`(\d{1,2})/(\d{1,2})`), DayGroup: 1, MonthGroup: 2},
	{Regex: regexp.MustCompile(`(\d{1,2}) de ([a-z]+)(\s+de\s+\d{4})?`), DayGroup: 1, MonthGroup: 2, MonthName: true, SkipGroup: 3},
	{Regex: regexp.MustCompile(`(\d{1,2}) de ([a-z]+) de (\d{4})`), DayGroup: 1, MonthGroup: 2, YearGroup: 3, MonthName: true},
}

// Resolver maps date phrases to times relative to a reference instant.
type Resolver struct {
	referenceTime time.Time
}

// NewResolver creates a resolver anchored at the current time
func NewResolver() *Resolver {
	return &Resolver{referenceTime: time.Now()}
}

// WithReference sets the reference time for relative resolution
func (r *Resolver) WithReference(t time.Time) *Resolver {
	r.referenceTime = t
	return r
}

// Now returns the reference time.
func (r *Resolver) Now() time.Time {
	return r.referenceTime
}

// Resolve returns the date referenced in text, or the reference time when
// nothing is recognized.
func (r *Resolver) Resolve(text string) time.Time {
	t, _ := r.ResolveMatch(text)
	return t
}

// ResolveMatch is Resolve that also reports whether a date phrase was found.
func (r *Resolver) ResolveMatch(text string) (time.Time, bool) {
	now := r.referenceTime
	s := textnorm.Normalize(text)

	for _, rel := range relatives {
		if rel.match(s) {
			return rel.offset(now), true
		}
	}

	for _, abs := range absolutes {
		m := abs.Regex.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		if abs.SkipGroup > 0 && m[abs.SkipGroup] != "" {
			continue
		}
		if t, ok := abs.build(m, now); ok {
			return t, true
		}
	}

	return now, false
}

func (a absolute) build(m []string, now time.Time) (time.Time, bool) {
	day, err := strconv.Atoi(m[a.DayGroup])
	if err != nil {
		return time.Time{}, false
	}

	var month time.Month
	if a.MonthName {
		mm, ok := months[m[a.MonthGroup]]
		if !ok {
			return time.Time{}, false
		}
		month = mm
	} else {
		n, err := strconv.Atoi(m[a.MonthGroup])
		if err != nil {
			return time.Time{}, false
		}
		month = time.Month(n)
	}

	year := now.Year()
	if a.YearGroup > 0 {
		y, err := strconv.Atoi(m[a.YearGroup])
		if err != nil {
			return time.Time{}, false
		}
		year = y
		if a.ShortYear {
			year += 2000
		}
	}

	return calendarDate(year, month, day, now.Location())
}

// calendarDate rejects dates time.Date would silently normalize (31/02).
func calendarDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// ParseDeadline parses a strict DD/MM/YYYY goal deadline.
func ParseDeadline(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("2/1/2006", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid deadline %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DisplayLayout)
}
