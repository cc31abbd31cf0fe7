package core

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(year int, month time.Month, day int) func() time.Time {
	return func() time.Time {
		return time.Date(year, month, day, 9, 0, 0, 0, time.UTC)
	}
}

func TestDateNormalizerFormats(t *testing.T) {
	n := NewDateNormalizer(DefaultMinYear, DefaultMaxYear).WithClock(fixedClock(2025, time.June, 18))

	tests := []struct {
		input    string
		expected string
	}{
		{"15/03/2025", "15/03/2025"},
		{"le 5/3/2025", "05/03/2025"},
		{"2025-03-15", "15/03/2025"},
		{"15.03.25", "15/03/2025"},
		{"03/15/2025", "15/03/2025"},
		{"le 5 mars 2025", "05/03/2025"},
		{"1er août 2026", "01/08/2026"},
		{"samedi 12 Décembre 2026", "12/12/2026"},
		{"15 mars", "15/03/2025"},
		{"mars 2026", "18/03/2026"},
		{"March 2027", "18/03/2027"},
		{"le 15", "15/06/2025"},
		{"1er", "01/06/2025"},
		{"jeudi le 3", "03/06/2025"},
		{"en 2026", "18/06/2026"},
		{"2027", "18/06/2027"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := n.Normalize(tt.input)
			assert.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestDateNormalizerClampsMissingDay(t *testing.T) {
	n := NewDateNormalizer(DefaultMinYear, DefaultMaxYear).WithClock(fixedClock(2025, time.January, 31))

	got, ok := n.Normalize("février 2024")

	assert.True(t, ok)
	assert.Equal(t, "29/02/2024", got)
}

func TestDateNormalizerLoneYearClampsDay(t *testing.T) {
	n := NewDateNormalizer(DefaultMinYear, DefaultMaxYear).WithClock(fixedClock(2024, time.February, 29))

	got, ok := n.Normalize("en 2025")

	assert.True(t, ok)
	assert.Equal(t, "28/02/2025", got)
}

func TestDateNormalizerYearWindow(t *testing.T) {
	n := NewDateNormalizer(DefaultMinYear, DefaultMaxYear).WithClock(fixedClock(2025, time.June, 18))

	for _, year := range []int{2019, 2020, 2030, 2031} {
		_, ok := n.Normalize(fmt.Sprintf("15/03/%d", year))
		assert.False(t, ok, "year %d should be rejected", year)
	}

	for year := 2021; year <= 2029; year++ {
		got, ok := n.Normalize(fmt.Sprintf("15/03/%d", year))
		assert.True(t, ok, "year %d should be accepted", year)
		assert.Equal(t, fmt.Sprintf("15/03/%d", year), got)
	}
}

func TestDateNormalizerRejectsUnparseable(t *testing.T) {
	n := NewDateNormalizer(DefaultMinYear, DefaultMaxYear).WithClock(fixedClock(2025, time.June, 18))

	for _, input := range []string{"", "demain", "31/02/2025", "13/13/2025", "le 31", "le 45", "en 2031", "en 2019"} {
		got, ok := n.Normalize(input)
		assert.False(t, ok, input)
		assert.Empty(t, got)
	}
}

func TestFindDateExpressions(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"numeric and textual", "Disponible le 15/03/2025 ou le 2 avril 2025", []string{"15/03/2025", "2 avril 2025"}},
		{"iso", "Début 2025-03-15, fin 20.03.2025", []string{"2025-03-15", "20.03.2025"}},
		{"month with year", "Remplacement juillet 2026", []string{"juillet 2026"}},
		{"bare month skipped", "Planification de mars", nil},
		{"no dates", "Quart de nuit de 19h à 7h", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FindDateExpressions(tt.input))
		})
	}
}
