package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor() *RequirementExtractor {
	cfg := DefaultExtractionConfig()
	dates := NewDateNormalizer(cfg.MinYear, cfg.MaxYear).WithClock(fixedClock(2025, time.June, 18))
	return NewRequirementExtractor(cfg, dates, zap.NewNop())
}

func TestExtractScenarioWithRulesOnly(t *testing.T) {
	text := "Besoin d'une infirmière urgent pour un quart de nuit à Montréal le 15/03/2025, de 19h à 7h"
	spans := NewPatternRuler(DefaultPatternConfig()).Apply(text)

	record := newTestExtractor().Extract(text, spans)

	assert.Equal(t, []string{"INFIRMIÈRE"}, record.Professions)
	assert.Equal(t, []string{"quart de nuit"}, record.Shifts)
	assert.Empty(t, record.Locations)
	assert.Equal(t, []string{"15/03/2025"}, record.Dates)
	assert.Equal(t, "12h", record.ShiftDuration)
	assert.True(t, record.Urgent)
	assert.Equal(t, "INFIRMIÈRE", Classify(record))
}

func TestExtractLocationFromSpan(t *testing.T) {
	text := "Besoin d'une infirmière à Montréal"
	spans := []EntitySpan{{Label: "GPE", Text: "Montréal"}}

	record := newTestExtractor().Extract(text, spans)

	assert.Equal(t, []string{"Montréal"}, record.Locations)
}

func TestExtractLocationBlacklist(t *testing.T) {
	spans := []EntitySpan{
		{Label: LabelPlace, Text: "Merci"},
		{Label: LabelLocation, Text: "MERCI"},
		{Label: LabelPlace, Text: "merci"},
		{Label: LabelLocation, Text: "Cordialement"},
		{Label: LabelPlace, Text: "Laval"},
	}

	record := newTestExtractor().Extract("", spans)

	assert.Equal(t, []string{"Laval"}, record.Locations)
}

func TestExtractDeduplicatesFields(t *testing.T) {
	spans := []EntitySpan{
		{Label: LabelProfession, Text: "infirmière"},
		{Label: LabelProfession, Text: "Infirmière"},
		{Label: LabelProfession, Text: "PAB"},
		{Label: LabelShiftTime, Text: "Quart de nuit"},
		{Label: LabelShiftTime, Text: "quart de nuit"},
		{Label: LabelPlace, Text: "Laval"},
		{Label: LabelPlace, Text: "Laval"},
	}

	record := newTestExtractor().Extract("", spans)

	assert.Equal(t, []string{"INFIRMIÈRE", "PAB"}, record.Professions)
	assert.Equal(t, []string{"quart de nuit"}, record.Shifts)
	assert.Equal(t, []string{"Laval"}, record.Locations)
}

func TestExtractDeduplicatesDatesAcrossSources(t *testing.T) {
	text := "Disponible le 15 mars 2025 (15/03/2025) ou le 16/03/2025"
	spans := []EntitySpan{
		{Label: LabelDate, Text: "15 mars 2025"},
		{Label: LabelDate, Text: "15/03/2025"},
	}

	record := newTestExtractor().Extract(text, spans)

	assert.Equal(t, []string{"15/03/2025", "16/03/2025"}, record.Dates)
}

func TestExtractKeepsDateOrder(t *testing.T) {
	record := newTestExtractor().Extract("le 02/04/2025 puis le 01/04/2025 et le 02/04/2025", nil)

	assert.Equal(t, []string{"02/04/2025", "01/04/2025"}, record.Dates)
}

func TestExtractRejectsImplausibleSpanDates(t *testing.T) {
	spans := []EntitySpan{
		{Label: LabelDate, Text: "15 mars 2019"},
		{Label: LabelDate, Text: "15 mars 2031"},
		{Label: LabelDate, Text: "demain"},
	}

	record := newTestExtractor().Extract("", spans)

	assert.Empty(t, record.Dates)
}

func TestExtractUrgencyUnion(t *testing.T) {
	e := newTestExtractor()

	fromSpan := e.Extract("Besoin d'une PAB", []EntitySpan{{Label: LabelUrgency, Text: "pressant"}})
	assert.True(t, fromSpan.Urgent)

	fromKeyword := e.Extract("Merci de répondre RAPIDEMENT", nil)
	assert.True(t, fromKeyword.Urgent)

	fromSubstring := e.Extract("Besoin IMMÉDIAT", nil)
	assert.True(t, fromSubstring.Urgent)

	neither := e.Extract("Besoin d'une PAB lundi", nil)
	assert.False(t, neither.Urgent)
}

func TestExtractSkipsMalformedSpans(t *testing.T) {
	spans := []EntitySpan{
		{Label: LabelPlace, Text: "   "},
		{Label: LabelUrgency, Text: ""},
		{Label: LabelProfession},
		{Label: LabelPerson, Text: "Marie Tremblay"},
		{Label: "ORG", Text: "CISSS de Laval"},
	}

	record := newTestExtractor().Extract("Besoin d'aide", spans)

	assert.Empty(t, record.Locations)
	assert.Empty(t, record.Professions)
	assert.False(t, record.Urgent)
	assert.Equal(t, Unclassified, Classify(record))
}

func TestExtractIsIdempotentAndDoesNotMutateInput(t *testing.T) {
	text := "Urgent: inf pour quart de jour à Laval, 8h00 à 16h00, le 20/05/2025"
	spans := []EntitySpan{
		{Label: LabelPlace, Text: "Laval"},
		{Label: LabelProfession, Text: "inf"},
		{Label: LabelDate, Text: "20 mai 2025"},
	}
	original := append([]EntitySpan(nil), spans...)
	e := newTestExtractor()

	first := e.Extract(text, spans)
	second := e.Extract(text, spans)

	require.Equal(t, first, second)
	assert.Equal(t, original, spans)
	assert.Equal(t, "8h", first.ShiftDuration)
	assert.Equal(t, []string{"20/05/2025"}, first.Dates)
}

func TestExtractEmptyRecordHasEmptyCollections(t *testing.T) {
	record := newTestExtractor().Extract("", nil)

	assert.NotNil(t, record.Professions)
	assert.NotNil(t, record.Dates)
	assert.Empty(t, record.ShiftDuration)
	assert.False(t, record.Urgent)
}

func TestFindSlashDatesWordBoundaries(t *testing.T) {
	tests := []struct {
		input    string
		expected []string
	}{
		{"le 15/03/2025, puis 16/03/2025.", []string{"15/03/2025", "16/03/2025"}},
		{"15/03/2025 16/03/2025", []string{"15/03/2025", "16/03/2025"}},
		{"(15/03/2025)", []string{"15/03/2025"}},
		{"é15/03/2025", nil},
		{"15/03/2025é", nil},
		{"réf_15/03/2025", nil},
		{"115/03/2025", nil},
		{"15/03/20251", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, findSlashDates(tt.input))
		})
	}
}
