package core

// Unclassified is the label of a record without any profession
const Unclassified = "unclassified"

// Classify derives the routing label of a record: its first profession in
// first-encountered order, or Unclassified.
func Classify(record *RequirementRecord) string {
	if record == nil || len(record.Professions) == 0 {
		return Unclassified
	}
	return record.Professions[0]
}
