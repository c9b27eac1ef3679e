package pipeline

import "go.uber.org/zap"

// cardState tracks where a card is in its update lifecycle. Every card ends
// in merged, skipped or fallback.
type cardState int

const (
	statePending cardState = iota
	stateFetching
	stateAssembling
	stateExtracting
	stateMerged
	stateSkipped
	stateFallback
)

func (s cardState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateFetching:
		return "fetching"
	case stateAssembling:
		return "assembling"
	case stateExtracting:
		return "extracting"
	case stateMerged:
		return "merged"
	case stateSkipped:
		return "skipped"
	case stateFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// advance logs a card's state transition and returns the new state.
func advance(cardID string, from, to cardState) cardState {
	zap.L().Debug("card state",
		zap.String("card", cardID),
		zap.Stringer("from", from),
		zap.Stringer("to", to),
	)
	return to
}
