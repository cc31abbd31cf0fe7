package core

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// slashDateRegex is the fallback for DD/MM/YYYY dates the recognizer missed.
// Word boundaries are checked by findSlashDates since RE2's \b is ASCII only.
var slashDateRegex = regexp.MustCompile(`\d{2}/\d{2}/\d{4}`)

// ExtractionConfig holds the tunable parts of requirement extraction
type ExtractionConfig struct {
	LocationBlacklist []string
	UrgencyKeywords   []string
	MinYear           int
	MaxYear           int
}

// DefaultExtractionConfig returns the built-in extraction settings
func DefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		LocationBlacklist: []string{"bonjour", "merci", "service", "rh", "cordialement"},
		UrgencyKeywords:   []string{"urgent", "urgence", "immédiat", "asap", "rapidement"},
		MinYear:           DefaultMinYear,
		MaxYear:           DefaultMaxYear,
	}
}

// RequirementExtractor turns text and entity spans into a RequirementRecord
type RequirementExtractor struct {
	blacklist map[string]struct{}
	keywords  []string
	dates     *DateNormalizer
	logger    *zap.Logger
}

// NewRequirementExtractor creates a new requirement extractor
func NewRequirementExtractor(cfg ExtractionConfig, dates *DateNormalizer, logger *zap.Logger) *RequirementExtractor {
	lower := cases.Lower(language.French)

	blacklist := make(map[string]struct{}, len(cfg.LocationBlacklist))
	for _, word := range cfg.LocationBlacklist {
		blacklist[lower.String(strings.TrimSpace(word))] = struct{}{}
	}

	keywords := make([]string, 0, len(cfg.UrgencyKeywords))
	for _, kw := range cfg.UrgencyKeywords {
		if kw = lower.String(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	if dates == nil {
		dates = NewDateNormalizer(cfg.MinYear, cfg.MaxYear)
	}

	return &RequirementExtractor{
		blacklist: blacklist,
		keywords:  keywords,
		dates:     dates,
		logger:    logger,
	}
}

// orderedSet keeps the first-seen order of distinct values
type orderedSet struct {
	seen   map[string]struct{}
	values []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{}), values: []string{}}
}

func (s *orderedSet) add(v string) {
	if _, ok := s.seen[v]; ok {
		return
	}
	s.seen[v] = struct{}{}
	s.values = append(s.values, v)
}

// Extract builds the requirement record for one message
func (e *RequirementExtractor) Extract(text string, spans []EntitySpan) *RequirementRecord {
	lower := cases.Lower(language.French)
	upper := cases.Upper(language.French)

	professions := newOrderedSet()
	shifts := newOrderedSet()
	locations := newOrderedSet()
	dates := newOrderedSet()
	urgent := false

	for _, span := range spans {
		spanText := strings.TrimSpace(span.Text)
		if spanText == "" {
			e.logger.Debug("Skipping span without text", zap.String("label", string(span.Label)))
			continue
		}

		label := NormalizeLabel(string(span.Label))
		switch {
		case label.IsPlace():
			if _, blocked := e.blacklist[lower.String(spanText)]; !blocked {
				locations.add(spanText)
			}
		case label == LabelDate:
			if date, ok := e.dates.Normalize(spanText); ok {
				dates.add(date)
			}
		case label == LabelProfession:
			professions.add(upper.String(spanText))
		case label == LabelShiftTime:
			shifts.add(lower.String(spanText))
		case label == LabelUrgency:
			urgent = true
		}
	}

	for _, date := range findSlashDates(text) {
		dates.add(date)
	}

	if !urgent {
		urgent = e.containsUrgencyKeyword(lower.String(norm.NFC.String(text)))
	}

	record := &RequirementRecord{
		Professions:   professions.values,
		Shifts:        shifts.values,
		Locations:     locations.values,
		Dates:         dates.values,
		ShiftDuration: ComputeShiftDuration(text),
		Urgent:        urgent,
	}

	e.logger.Debug("Extracted requirements",
		zap.Strings("professions", record.Professions),
		zap.Strings("shifts", record.Shifts),
		zap.Strings("locations", record.Locations),
		zap.Strings("dates", record.Dates),
		zap.String("shift_duration", record.ShiftDuration),
		zap.Bool("urgent", record.Urgent))

	return record
}

func (e *RequirementExtractor) containsUrgencyKeyword(lowerText string) bool {
	for _, kw := range e.keywords {
		if strings.Contains(lowerText, kw) {
			return true
		}
	}
	return false
}

// findSlashDates returns the DD/MM/YYYY tokens of text that are not glued
// to a letter, digit or underscore
func findSlashDates(text string) []string {
	var found []string
	for _, loc := range slashDateRegex.FindAllStringIndex(text, -1) {
		before, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
		after, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if isWordRune(before) || isWordRune(after) {
			continue
		}
		found = append(found, text[loc[0]:loc[1]])
	}
	return found
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
