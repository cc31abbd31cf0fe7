package core

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// PatternConfig lists the vocabularies recognized by the domain pattern layer
type PatternConfig struct {
	Professions   []string
	ShiftPeriods  []string
	UrgencyLemmas []string
}

// DefaultPatternConfig returns the built-in French staffing vocabulary
func DefaultPatternConfig() PatternConfig {
	return PatternConfig{
		Professions:   []string{"infirmier", "infirmière", "inf", "pab", "auxiliaire"},
		ShiftPeriods:  []string{"jour", "soir", "nuit"},
		UrgencyLemmas: []string{"urgent", "immédiat", "urgence", "asap"},
	}
}

// PatternRuler recognizes fixed domain vocabulary that a generic recognizer
// misses: professions, shift-time phrases and urgency terms. It is built once
// and is safe for concurrent use.
type PatternRuler struct {
	professions map[string]struct{}
	periods     map[string]struct{}
	urgency     map[string]struct{}
}

// NewPatternRuler compiles the vocabularies of cfg
func NewPatternRuler(cfg PatternConfig) *PatternRuler {
	return &PatternRuler{
		professions: vocabulary(cfg.Professions),
		periods:     vocabulary(cfg.ShiftPeriods),
		urgency:     vocabulary(cfg.UrgencyLemmas),
	}
}

func vocabulary(words []string) map[string]struct{} {
	lower := cases.Lower(language.French)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.TrimSpace(norm.NFC.String(w))
		if w == "" {
			continue
		}
		set[lower.String(w)] = struct{}{}
	}
	return set
}

type token struct {
	text  string
	lower string
	start int
	end   int
}

// tokenize splits text into word tokens and single punctuation tokens
func tokenize(text string) []token {
	lower := cases.Lower(language.French)
	var tokens []token
	emit := func(start, end int) {
		t := text[start:end]
		tokens = append(tokens, token{text: t, lower: lower.String(t), start: start, end: end})
	}

	wordStart := -1
	for i, r := range text {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			if wordStart < 0 {
				wordStart = i
			}
		default:
			if wordStart >= 0 {
				emit(wordStart, i)
				wordStart = -1
			}
			if !unicode.IsSpace(r) {
				emit(i, i+utf8.RuneLen(r))
			}
		}
	}
	if wordStart >= 0 {
		emit(wordStart, len(text))
	}
	return tokens
}

// lemmaCandidates approximates French inflection: feminine and plural
// suffixes are stripped so that "urgentes" and "urgences" reach their lemma.
func lemmaCandidates(lower string) []string {
	candidates := []string{lower}
	for _, suffix := range []string{"es", "s", "x", "e"} {
		if strings.HasSuffix(lower, suffix) && utf8.RuneCountInString(lower) > len(suffix)+2 {
			candidates = append(candidates, strings.TrimSuffix(lower, suffix))
		}
	}
	return candidates
}

func (p *PatternRuler) isUrgencyLemma(lower string) bool {
	for _, c := range lemmaCandidates(lower) {
		if _, ok := p.urgency[c]; ok {
			return true
		}
	}
	return false
}

// Apply returns the domain spans found in text, in text order
func (p *PatternRuler) Apply(text string) []EntitySpan {
	text = norm.NFC.String(text)
	tokens := tokenize(text)

	var spans []EntitySpan
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if i+2 < len(tokens) && tok.lower == "quart" && tokens[i+1].lower == "de" {
			if _, ok := p.periods[tokens[i+2].lower]; ok {
				end := tokens[i+2].end
				spans = append(spans, EntitySpan{
					Label: LabelShiftTime,
					Text:  text[tok.start:end],
					Start: tok.start,
					End:   end,
				})
				i += 2
				continue
			}
		}

		if _, ok := p.professions[tok.lower]; ok {
			spans = append(spans, EntitySpan{Label: LabelProfession, Text: tok.text, Start: tok.start, End: tok.end})
			continue
		}

		if p.isUrgencyLemma(tok.lower) {
			spans = append(spans, EntitySpan{Label: LabelUrgency, Text: tok.text, Start: tok.start, End: tok.end})
		}
	}
	return spans
}
