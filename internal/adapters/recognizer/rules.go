package recognizer

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/mikey/staffing-mail-agent/internal/core"
)

// RulesRecognizer is an offline recognizer combining a place gazetteer with
// date expressions. It never fails.
type RulesRecognizer struct {
	places *regexp.Regexp
	logger *zap.Logger
}

// NewRulesRecognizer creates a recognizer that knows the given place names
func NewRulesRecognizer(knownPlaces []string, logger *zap.Logger) *RulesRecognizer {
	return &RulesRecognizer{
		places: gazetteer(knownPlaces),
		logger: logger,
	}
}

// gazetteer compiles place names into one case-insensitive pattern, longest
// first so that "Trois-Rivières" wins over a shorter overlapping name.
// Letters and digits around a match must not extend the word.
func gazetteer(names []string) *regexp.Regexp {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(norm.NFC.String(name))
		if name != "" {
			quoted = append(quoted, regexp.QuoteMeta(name))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(` + strings.Join(quoted, "|") + `)(?:$|[^\p{L}\p{N}])`)
}

// Recognize returns place and date spans found in text
func (r *RulesRecognizer) Recognize(_ context.Context, text string) ([]core.EntitySpan, error) {
	text = norm.NFC.String(text)
	var spans []core.EntitySpan

	if r.places != nil {
		for pos := 0; pos < len(text); {
			m := r.places.FindStringSubmatchIndex(text[pos:])
			if m == nil {
				break
			}
			start, end := pos+m[2], pos+m[3]
			spans = append(spans, core.EntitySpan{
				Label: core.LabelPlace,
				Text:  text[start:end],
				Start: start,
				End:   end,
			})
			pos = end
		}
	}

	for _, date := range core.FindDateExpressions(text) {
		spans = append(spans, core.EntitySpan{Label: core.LabelDate, Text: date})
	}

	r.logger.Debug("Rule recognizer spans", zap.Int("count", len(spans)))
	return spans, nil
}
