package recognizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/staffing-mail-agent/internal/core"
	"github.com/mikey/staffing-mail-agent/internal/ports"
	"github.com/mikey/staffing-mail-agent/internal/utils"
)

// ErrMalformedResponse is returned when the model answer holds no entity list
var ErrMalformedResponse = errors.New("malformed entity response")

const promptFormat = `Tu es un système de reconnaissance d'entités pour des courriels de remplacement de personnel soignant.
Extrais les entités du courriel ci-dessous et réponds avec un tableau JSON d'objets {"label": ..., "text": ...}.
Étiquettes permises:
- place: ville, établissement ou lieu
- date: date de la demande, telle qu'écrite
- person: nom de personne
- profession: métier recherché (infirmière, PAB, auxiliaire...)
- shift-time: quart de travail (quart de jour, de soir, de nuit)
- urgency: mot indiquant l'urgence
Le champ "text" doit reprendre exactement le texte du courriel.

Courriel:
%s

Réponds uniquement avec le tableau JSON.`

// LLMRecognizer asks a language model for entity spans
type LLMRecognizer struct {
	client        ports.LLMClient
	textProcessor *utils.TextProcessor
	maxBodySize   int
	logger        *zap.Logger
}

// NewLLMRecognizer creates a recognizer backed by client
func NewLLMRecognizer(client ports.LLMClient, textProcessor *utils.TextProcessor, maxBodySize int, logger *zap.Logger) *LLMRecognizer {
	return &LLMRecognizer{
		client:        client,
		textProcessor: textProcessor,
		maxBodySize:   maxBodySize,
		logger:        logger,
	}
}

// Recognize sends text to the model and parses the returned spans
func (r *LLMRecognizer) Recognize(ctx context.Context, text string) ([]core.EntitySpan, error) {
	prompt := fmt.Sprintf(promptFormat, r.textProcessor.ProcessText(text, r.maxBodySize))

	answer, err := r.client.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.client.ModelName(), err)
	}

	spans, err := ParseSpans(answer)
	if err != nil {
		r.logger.Debug("Unparseable model answer",
			zap.String("model", r.client.ModelName()),
			zap.String("answer", answer))
		return nil, err
	}

	r.logger.Debug("Model recognized entities",
		zap.String("model", r.client.ModelName()),
		zap.Int("count", len(spans)))
	return spans, nil
}

// Close releases the underlying client when it holds resources
func (r *LLMRecognizer) Close() error {
	if closer, ok := r.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

type rawSpan struct {
	Label  string `json:"label"`
	Type   string `json:"type"`
	Text   string `json:"text"`
	Entity string `json:"entity"`
}

// ParseSpans extracts entity spans from a model answer. The answer may wrap
// the JSON in prose or a code fence, and may be an array or an object with an
// "entities" array.
func ParseSpans(answer string) ([]core.EntitySpan, error) {
	var raw []rawSpan
	if err := decodeList(answer, &raw); err != nil {
		return nil, err
	}

	spans := make([]core.EntitySpan, 0, len(raw))
	for _, s := range raw {
		label := s.Label
		if label == "" {
			label = s.Type
		}
		text := s.Text
		if text == "" {
			text = s.Entity
		}
		if label == "" || strings.TrimSpace(text) == "" {
			continue
		}
		spans = append(spans, core.EntitySpan{Label: core.NormalizeLabel(label), Text: text})
	}
	return spans, nil
}

func decodeList(answer string, out *[]rawSpan) error {
	if start, end := strings.IndexByte(answer, '['), strings.LastIndexByte(answer, ']'); start >= 0 && end > start {
		if err := json.Unmarshal([]byte(answer[start:end+1]), out); err == nil {
			return nil
		}
	}

	if start, end := strings.IndexByte(answer, '{'), strings.LastIndexByte(answer, '}'); start >= 0 && end > start {
		var wrapped struct {
			Entities []rawSpan `json:"entities"`
		}
		if err := json.Unmarshal([]byte(answer[start:end+1]), &wrapped); err == nil && wrapped.Entities != nil {
			*out = wrapped.Entities
			return nil
		}
	}

	return ErrMalformedResponse
}
