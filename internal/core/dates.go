package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Default plausibility window for extracted dates, exclusive on both ends
const (
	DefaultMinYear = 2020
	DefaultMaxYear = 2030
)

var (
	isoDateRegex     = regexp.MustCompile(`\b(\d{4})[-/.](\d{1,2})[-/.](\d{1,2})\b`)
	numericDateRegex = regexp.MustCompile(`\b(\d{1,2})[-/.](\d{1,2})[-/.](\d{4}|\d{2})\b`)
	textualDateRegex = regexp.MustCompile(`(?i)(?:\b(\d{1,2})(?:er|e)?[\s\p{Zs}]+)?\b(` + monthAlternation() + `)\b\.?(?:[\s\p{Zs}]+(\d{4})\b)?`)
	loneDayRegex     = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_])(?:le[\s\p{Zs}]+)?(\d{1,2})(?:er|e)?(?:$|[^\p{L}\p{N}_])`)
	loneYearRegex    = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(\d{4})(?:$|[^\p{L}\p{N}_])`)
)

// monthNames maps French and English month names and abbreviations to months
var monthNames = map[string]time.Month{
	"janvier": time.January, "janv": time.January, "january": time.January, "jan": time.January,
	"février": time.February, "fevrier": time.February, "févr": time.February, "fév": time.February, "february": time.February, "feb": time.February,
	"mars": time.March, "march": time.March, "mar": time.March,
	"avril": time.April, "avr": time.April, "april": time.April, "apr": time.April,
	"mai": time.May, "may": time.May,
	"juin": time.June, "june": time.June, "jun": time.June,
	"juillet": time.July, "juil": time.July, "july": time.July, "jul": time.July,
	"août": time.August, "aout": time.August, "august": time.August, "aug": time.August,
	"septembre": time.September, "september": time.September, "sept": time.September, "sep": time.September,
	"octobre": time.October, "october": time.October, "oct": time.October,
	"novembre": time.November, "november": time.November, "nov": time.November,
	"décembre": time.December, "decembre": time.December, "déc": time.December, "december": time.December, "dec": time.December,
}

// monthAlternation builds the regex alternation, longest names first so that
// "septembre" wins over "sept".
func monthAlternation() string {
	names := make([]string, 0, len(monthNames))
	for name := range monthNames {
		names = append(names, name)
	}
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && len(names[j]) > len(names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
	for i, name := range names {
		names[i] = regexp.QuoteMeta(name)
	}
	return strings.Join(names, "|")
}

// DateNormalizer parses date-like text into canonical DD/MM/YYYY dates
type DateNormalizer struct {
	minYear int
	maxYear int
	now     func() time.Time
}

// NewDateNormalizer creates a normalizer accepting years strictly between
// minYear and maxYear
func NewDateNormalizer(minYear, maxYear int) *DateNormalizer {
	return &DateNormalizer{
		minYear: minYear,
		maxYear: maxYear,
		now:     time.Now,
	}
}

// WithClock sets the reference clock used for missing date components
func (n *DateNormalizer) WithClock(now func() time.Time) *DateNormalizer {
	n.now = now
	return n
}

// Normalize parses text day-first and returns the canonical date. The second
// return value is false when nothing plausible could be parsed.
func (n *DateNormalizer) Normalize(text string) (string, bool) {
	t, ok := n.parse(text)
	if !ok {
		return "", false
	}
	if t.Year() <= n.minYear || t.Year() >= n.maxYear {
		return "", false
	}
	return FormatDate(t), true
}

// FormatDate renders t as DD/MM/YYYY
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

func (n *DateNormalizer) parse(text string) (time.Time, bool) {
	ref := n.now()

	if m := isoDateRegex.FindStringSubmatch(text); m != nil {
		return buildDate(atoi(m[1]), atoi(m[2]), atoi(m[3]))
	}

	if m := numericDateRegex.FindStringSubmatch(text); m != nil {
		day, month := atoi(m[1]), atoi(m[2])
		if month > 12 && day <= 12 {
			day, month = month, day
		}
		year := atoi(m[3])
		if len(m[3]) == 2 {
			year = expandTwoDigitYear(year, ref.Year())
		}
		return buildDate(year, month, day)
	}

	if m := textualDateRegex.FindStringSubmatch(text); m != nil {
		month := monthNames[cases.Lower(language.French).String(m[2])]
		year := ref.Year()
		if m[3] != "" {
			year = atoi(m[3])
		}
		if m[1] != "" {
			return buildDate(year, int(month), atoi(m[1]))
		}
		return buildDate(year, int(month), clampDay(ref.Day(), month, year))
	}

	// A lone year or day takes the missing parts from the reference clock
	if m := loneYearRegex.FindStringSubmatch(text); m != nil {
		year := atoi(m[1])
		return buildDate(year, int(ref.Month()), clampDay(ref.Day(), ref.Month(), year))
	}

	if m := loneDayRegex.FindStringSubmatch(text); m != nil {
		return buildDate(ref.Year(), int(ref.Month()), atoi(m[1]))
	}

	return time.Time{}, false
}

// clampDay keeps day within the length of month
func clampDay(day int, month time.Month, year int) int {
	if last := daysIn(month, year); day > last {
		return last
	}
	return day
}

// FindDateExpressions returns the date-like substrings of text in order of
// appearance. Month names alone are skipped; they need a day or a year.
func FindDateExpressions(text string) []string {
	var found [][]int
	found = append(found, isoDateRegex.FindAllStringIndex(text, -1)...)
	found = append(found, numericDateRegex.FindAllStringIndex(text, -1)...)
	for _, m := range textualDateRegex.FindAllStringSubmatchIndex(text, -1) {
		if m[2] >= 0 || m[6] >= 0 {
			found = append(found, m[:2])
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i][0] < found[j][0] })

	var out []string
	end := -1
	for _, loc := range found {
		if loc[0] < end {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
		end = loc[1]
	}
	return out
}

// expandTwoDigitYear places a two-digit year within fifty years of ref
func expandTwoDigitYear(year, ref int) int {
	year += ref / 100 * 100
	if year >= ref+50 {
		year -= 100
	} else if year < ref-50 {
		year += 100
	}
	return year
}

func buildDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return v
}
