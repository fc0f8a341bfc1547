package progression

import (
	"github.com/2beens/trainloop/internal/training/prescription"
)

type DecisionKind string

const (
	KindSame         DecisionKind = "same"
	KindIncrease     DecisionKind = "increase"
	KindDecrease     DecisionKind = "decrease"
	KindSwapEasier   DecisionKind = "swapEasier"
	KindSwapAdvanced DecisionKind = "swapAdvanced"
)

func (k DecisionKind) String() string {
	return string(k)
}

// Decision is the outcome of evaluating one exercise. NewPlanned is set for
// increase and decrease, ToExerciseID for the swaps.
type Decision struct {
	Kind         DecisionKind               `json:"kind"`
	NewPlanned   *prescription.Prescription `json:"newPlanned,omitempty"`
	ToExerciseID string                     `json:"toExerciseId,omitempty"`
}

func Same() Decision {
	return Decision{Kind: KindSame}
}
