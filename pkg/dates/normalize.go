// Package dates reconciles the date formats published by upstream sites
// into a single canonical YYYY-MM-DD representation.
package dates

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-pkgz/lgr"
)

// Layout is the canonical date layout
const Layout = "2006-01-02"

// now is replaced in tests
var now = time.Now

var (
	reCanonical = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	reNumeric   = regexp.MustCompile(`^(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})\b`)
	reDayMonth  = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\s+(\d{4})\b`)
	reMonthDay  = regexp.MustCompile(`^([A-Za-z]+)\s+(\d{1,2}),?\s+(\d{4})\b`)
	rePartial   = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]{3,4})\.?$`)
	reOrdinal   = regexp.MustCompile(`(?i)\b(\d{1,2})(er|st|nd|rd|th)\b`)
	reSpaces    = regexp.MustCompile(`\s+`)

	reEnglishAbbrev = regexp.MustCompile(`(?i)\b(jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b\.?`)
	reFrenchMonth   = regexp.MustCompile(`(?i)(^|[^\pL])(janvier|janv|février|fevrier|févr|fevr|mars|avril|avr|mai|juin|juillet|juil|août|aout|septembre|octobre|novembre|décembre|decembre|déc)\.?([^\pL]|$)`)
	reWeekday       = regexp.MustCompile(`(?i)(^|[^\pL])(lundi|mardi|mercredi|jeudi|vendredi|samedi|dimanche|monday|tuesday|wednesday|thursday|friday|saturday|sunday)([^\pL]|$),?`)
	reTimeSep       = regexp.MustCompile(`(?i)\s+(à|at|-)\s+\d{1,2}[:h]\d{2}.*$`)
)

var englishMonths = map[string]string{
	"jan": "January", "feb": "February", "mar": "March", "apr": "April",
	"jun": "June", "jul": "July", "aug": "August", "sep": "September", "sept": "September",
	"oct": "October", "nov": "November", "dec": "December",
}

var frenchMonths = map[string]string{
	"janvier": "January", "janv": "January",
	"février": "February", "fevrier": "February", "févr": "February", "fevr": "February",
	"mars": "March", "avril": "April", "avr": "April", "mai": "May", "juin": "June",
	"juillet": "July", "juil": "July", "août": "August", "aout": "August",
	"septembre": "September", "octobre": "October", "novembre": "November",
	"décembre": "December", "decembre": "December", "déc": "December",
}

// Normalize converts a raw date string to YYYY-MM-DD. It returns false if the
// value can't be recognized as a valid calendar date.
func Normalize(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}

	if reCanonical.MatchString(s) {
		if t, err := time.Parse(Layout, s); err == nil {
			return t.Format(Layout), true
		}
		lgr.Printf("[WARN] invalid date %q", raw)
		return "", false
	}

	s = rewriteMonths(s)

	if m := reNumeric.FindStringSubmatch(s); m != nil {
		if d, ok := civilDate(m[3], m[2], m[1]); ok {
			return d, true
		}
		lgr.Printf("[WARN] invalid date %q", raw)
		return "", false
	}

	if m := reDayMonth.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("2 January 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return t.Format(Layout), true
		}
	}

	if m := reMonthDay.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("January 2 2006", m[1]+" "+m[2]+" "+m[3]); err == nil {
			return t.Format(Layout), true
		}
	}

	t, err := dateparse.ParseAny(s)
	if err != nil || t.IsZero() {
		lgr.Printf("[WARN] invalid date %q", raw)
		return "", false
	}
	return t.Format(Layout), true
}

// Format renders t in the canonical layout
func Format(t time.Time) string {
	return t.Format(Layout)
}

// ExpandPartialDate completes a day + abbreviated month value ("29 Nov") with the
// current year. Any other value is returned unchanged.
func ExpandPartialDate(raw string) string {
	s := strings.TrimSpace(raw)
	m := rePartial.FindStringSubmatch(s)
	if m == nil {
		return raw
	}
	if _, ok := englishMonths[strings.ToLower(m[2])]; !ok {
		return raw
	}
	return fmt.Sprintf("%s %s %d", m[1], m[2], now().Year())
}

// rewriteMonths drops weekday names and ordinal suffixes and replaces abbreviated
// English and French month names with full English ones
func rewriteMonths(s string) string {
	s = reTimeSep.ReplaceAllString(s, "")
	s = reWeekday.ReplaceAllString(s, "$1$3")
	s = reOrdinal.ReplaceAllString(s, "$1")

	s = reEnglishAbbrev.ReplaceAllStringFunc(s, func(m string) string {
		key := strings.ToLower(strings.TrimSuffix(m, "."))
		if full, ok := englishMonths[key]; ok {
			return full
		}
		return m
	})

	s = reFrenchMonth.ReplaceAllStringFunc(s, func(m string) string {
		sub := reFrenchMonth.FindStringSubmatch(m)
		full, ok := frenchMonths[strings.ToLower(sub[2])]
		if !ok {
			return m
		}
		return sub[1] + full + sub[3]
	})

	s = strings.Trim(reSpaces.ReplaceAllString(s, " "), " ,")
	return s
}

// civilDate validates year/month/day and renders them in canonical form
func civilDate(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return "", false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return "", false
	}
	return t.Format(Layout), true
}
