package model

// OutcomeKind tags how a card's update run ended.
type OutcomeKind int

const (
	// OutcomeUpdated means extraction succeeded and the record was rebuilt.
	OutcomeUpdated OutcomeKind = iota
	// OutcomeFallback means fetch or extraction failed; the prior record (or
	// a placeholder) was kept with its original timestamp.
	OutcomeFallback
	// OutcomeSkipped means the record was already refreshed today and was
	// left untouched without any network activity.
	OutcomeSkipped
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeUpdated:
		return "updated"
	case OutcomeFallback:
		return "fallback"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Outcome is the tagged result of processing one card.
type Outcome struct {
	Kind   OutcomeKind
	Record CardRecord
}
