package catalog

import (
	"fmt"

	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/pkg"
)

var ErrExerciseNotFound = fmt.Errorf("exercise %w", pkg.ErrNotFound)

// ProgressionMethod tells the evaluator which field to intensify.
type ProgressionMethod string

const (
	MethodReps         ProgressionMethod = "reps"
	MethodLoad         ProgressionMethod = "load"
	MethodRepsThenLoad ProgressionMethod = "reps_then_load"
	MethodTime         ProgressionMethod = "time"
	MethodTempo        ProgressionMethod = "tempo"
)

func (m ProgressionMethod) String() string {
	return string(m)
}

type ProgressionPolicy struct {
	Method          ProgressionMethod `json:"method,omitempty"`
	MicroStep       float64           `json:"microStep"`
	LoadStepPercent float64           `json:"loadStepPercent"`
}

// Exercise is the slice of a catalog exercise the training loop consumes.
type Exercise struct {
	ID                  string                    `json:"id"`
	Name                string                    `json:"name"`
	DefaultPrescription prescription.Prescription `json:"defaultPrescription"`
	ProgressionPolicy   ProgressionPolicy         `json:"progressionPolicy"`
	// Alternatives are substitution candidates, the first one being the
	// preferred easier swap.
	Alternatives []string `json:"alternatives"`
}
