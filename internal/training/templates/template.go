package templates

import (
	"fmt"

	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/pkg"
)

var ErrTemplateNotFound = fmt.Errorf("plan template %w", pkg.ErrNotFound)

type Variant string

const (
	VariantBase     Variant = "base"
	VariantAdvanced Variant = "advanced"
	VariantEasier   Variant = "easier"
)

func (v Variant) String() string {
	return string(v)
}

func (v Variant) Valid() bool {
	switch v {
	case VariantBase, VariantAdvanced, VariantEasier:
		return true
	}
	return false
}

type TemplateExercise struct {
	ExerciseID string `json:"exerciseId"`
	// PlannedPrescription, when set, is merged over the catalog default.
	PlannedPrescription *prescription.Prescription `json:"plannedPrescription,omitempty"`
	Variant             Variant                    `json:"variant"`
	Cue                 string                     `json:"cue"`
}

type Day struct {
	Name      string             `json:"name,omitempty"`
	Exercises []TemplateExercise `json:"exercises"`
}

type Template struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Days []Day  `json:"days"`
}

// DayAt returns the day a plan at dayIndex points to, together with its
// position in the day sequence. The index wraps around in both directions.
// A template without days yields false.
func (t *Template) DayAt(dayIndex int) (int, Day, bool) {
	if t == nil || len(t.Days) == 0 {
		return 0, Day{}, false
	}
	i := dayIndex % len(t.Days)
	if i < 0 {
		i += len(t.Days)
	}
	return i, t.Days[i], true
}
