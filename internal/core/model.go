package core

import (
	"strings"
	"time"
)

// Label identifies the semantic category of an entity span
type Label string

const (
	LabelPlace      Label = "place"
	LabelLocation   Label = "location"
	LabelDate       Label = "date"
	LabelPerson     Label = "person"
	LabelProfession Label = "profession"
	LabelShiftTime  Label = "shift-time"
	LabelUrgency    Label = "urgency"
)

// labelAliases maps labels emitted by common recognizers onto ours
var labelAliases = map[string]Label{
	"gpe":                LabelPlace,
	"loc":                LabelLocation,
	"per":                LabelPerson,
	"medical_profession": LabelProfession,
	"shift_time":         LabelShiftTime,
}

// NormalizeLabel folds a recognizer label into the canonical label set.
// Unknown labels are returned lower-cased.
func NormalizeLabel(raw string) Label {
	l := strings.ToLower(strings.TrimSpace(raw))
	if alias, ok := labelAliases[l]; ok {
		return alias
	}
	return Label(l)
}

// IsPlace reports whether the label designates a place or location
func (l Label) IsPlace() bool {
	return l == LabelPlace || l == LabelLocation
}

// RawMessage represents a decoded email message
type RawMessage struct {
	ID      string
	Subject string
	Body    string
	From    string
	Date    string
}

// Text returns the text submitted to extraction: subject then body
func (m *RawMessage) Text() string {
	return m.Subject + "\n" + m.Body
}

// EntitySpan is a labeled piece of text found by a recognizer or rule.
// Start and End are byte offsets when known, zero otherwise.
type EntitySpan struct {
	Label Label  `json:"label"`
	Text  string `json:"text"`
	Start int    `json:"start,omitempty"`
	End   int    `json:"end,omitempty"`
}

// RequirementRecord holds the staffing requirements extracted from one message
type RequirementRecord struct {
	Professions   []string `json:"profession"`
	Shifts        []string `json:"shifts"`
	Locations     []string `json:"locations"`
	Dates         []string `json:"dates"`
	ShiftDuration string   `json:"shift_duration"`
	Urgent        bool     `json:"urgent"`
}

// ProcessedResult represents the outcome of processing one message
type ProcessedResult struct {
	ID             string             `json:"id"`
	Classification string             `json:"classification"`
	Requirements   *RequirementRecord `json:"requirements"`
	From           string             `json:"from"`
	Date           string             `json:"date"`
	Processed      bool               `json:"processed"`
	ProcessedAt    time.Time          `json:"processed_at"`
}

// StoredResult is a processed result kept in a ResultRepository
type StoredResult struct {
	Result    *ProcessedResult
	StoredAt  time.Time
	ExpiresAt time.Time
}
