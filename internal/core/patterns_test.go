package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternRulerScenario(t *testing.T) {
	ruler := NewPatternRuler(DefaultPatternConfig())

	spans := ruler.Apply("Besoin d'une infirmière urgent pour un quart de nuit à Montréal")

	require.Len(t, spans, 3)
	assert.Equal(t, EntitySpan{Label: LabelProfession, Text: "infirmière", Start: 13, End: 24}, spans[0])
	assert.Equal(t, LabelUrgency, spans[1].Label)
	assert.Equal(t, "urgent", spans[1].Text)
	assert.Equal(t, LabelShiftTime, spans[2].Label)
	assert.Equal(t, "quart de nuit", spans[2].Text)
}

func TestPatternRulerIsCaseInsensitive(t *testing.T) {
	ruler := NewPatternRuler(DefaultPatternConfig())

	spans := ruler.Apply("PAB demandé, Quart De Soir")

	require.Len(t, spans, 2)
	assert.Equal(t, LabelProfession, spans[0].Label)
	assert.Equal(t, "PAB", spans[0].Text)
	assert.Equal(t, LabelShiftTime, spans[1].Label)
	assert.Equal(t, "Quart De Soir", spans[1].Text)
}

func TestPatternRulerUrgencyLemmas(t *testing.T) {
	ruler := NewPatternRuler(DefaultPatternConfig())

	tests := []struct {
		word   string
		urgent bool
	}{
		{"urgent", true},
		{"urgente", true},
		{"urgentes", true},
		{"urgences", true},
		{"IMMÉDIATE", true},
		{"ASAP", true},
		{"urgemment", false},
		{"pour", false},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			spans := ruler.Apply("Remplacement " + tt.word)
			found := false
			for _, s := range spans {
				if s.Label == LabelUrgency {
					found = true
				}
			}
			assert.Equal(t, tt.urgent, found)
		})
	}
}

func TestPatternRulerShiftTimeNeedsAllTokens(t *testing.T) {
	ruler := NewPatternRuler(DefaultPatternConfig())

	assert.Empty(t, ruler.Apply("un quart de midi"))
	assert.Empty(t, ruler.Apply("un quart, de nuit"))
	assert.Empty(t, ruler.Apply("dernier quart de"))
}

func TestPatternRulerNormalizesDecomposedAccents(t *testing.T) {
	ruler := NewPatternRuler(DefaultPatternConfig())

	spans := ruler.Apply("une infirmie\u0300re")

	require.Len(t, spans, 1)
	assert.Equal(t, "infirmière", spans[0].Text)
}

func TestPatternRulerCustomVocabulary(t *testing.T) {
	ruler := NewPatternRuler(PatternConfig{
		Professions:   []string{"Inhalothérapeute"},
		ShiftPeriods:  []string{"fin de semaine"},
		UrgencyLemmas: nil,
	})

	spans := ruler.Apply("Inhalothérapeute recherchée, urgent")

	require.Len(t, spans, 1)
	assert.Equal(t, LabelProfession, spans[0].Label)
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("d'une 19h-7h")

	texts := make([]string, len(tokens))
	for i, tok := range tokens {
		texts[i] = tok.text
	}
	assert.Equal(t, []string{"d", "'", "une", "19h", "-", "7h"}, texts)
}
