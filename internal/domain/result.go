package domain

// Result tags the outcome of a single selection.
type Result string

// Selection results.
const (
	// ResultRevealed means the card was turned face up and is waiting for a partner.
	ResultRevealed Result = "revealed"
	// ResultMatched means the card completed a pair with the pending card.
	ResultMatched Result = "matched"
	// ResultMismatched means the two pending cards differ and will be hidden after a delay.
	ResultMismatched Result = "mismatched"
	// ResultRejected means the selection was ignored and nothing changed.
	ResultRejected Result = "rejected"
)

// RejectReason explains a ResultRejected.
type RejectReason string

// Reasons a selection is rejected. These describe player-input noise, not faults.
const (
	RejectNone RejectReason = ""
	// RejectLocked means two cards are already waiting to be resolved.
	RejectLocked RejectReason = "locked"
	// RejectNotHidden means the card is already face up or matched.
	RejectNotHidden RejectReason = "not_hidden"
	// RejectAlreadySelected means the card is the pending first selection.
	RejectAlreadySelected RejectReason = "already_selected"
)

// Outcome is what SelectCard reports back to the caller.
type Outcome struct {
	Result       Result       `json:"result"`
	Reason       RejectReason `json:"reason,omitempty"`
	CardIDs      []int        `json:"card_ids,omitempty"`
	MatchedPairs int          `json:"matched_pairs"`
	Won          bool         `json:"won"`
}

// Rejected builds a rejected outcome that leaves the given matched count untouched.
func Rejected(reason RejectReason, matchedPairs int) Outcome {
	return Outcome{Result: ResultRejected, Reason: reason, MatchedPairs: matchedPairs}
}
