package plans

import (
	"fmt"
	"time"

	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/pkg"
)

var ErrPlanNotFound = fmt.Errorf("user plan %w", pkg.ErrNotFound)

type OverrideKind string

const (
	// OverrideReplace swaps the exercise for OverridePayload.To.
	OverrideReplace OverrideKind = "replace"
	// OverrideAdjustVolume merges OverridePayload.Planned over the planned vector.
	OverrideAdjustVolume OverrideKind = "adjustVolume"
)

func (k OverrideKind) String() string {
	return string(k)
}

type OverridePayload struct {
	Planned *prescription.Prescription `json:"planned,omitempty"`
	To      string                     `json:"to,omitempty"`
}

// Override is one entry of the per-user append-only override log.
// Seq reflects insertion order.
type Override struct {
	Seq        int64           `json:"seq"`
	Date       string          `json:"date"`
	ExerciseID string          `json:"exerciseId"`
	Kind       OverrideKind    `json:"kind"`
	Payload    OverridePayload `json:"payload"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type UserPlan struct {
	UserID          string     `json:"userId"`
	TemplateID      string     `json:"templateId"`
	CurrentDayIndex int        `json:"currentDayIndex"`
	Overrides       []Override `json:"overrides"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}
