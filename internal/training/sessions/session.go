package sessions

import (
	"errors"
	"fmt"
	"time"

	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/internal/training/templates"
	"github.com/2beens/trainloop/pkg"
)

var (
	ErrSessionNotFound = fmt.Errorf("daily session %w", pkg.ErrNotFound)
	// ErrSessionExists is returned by inserts losing the (user, date) race.
	ErrSessionExists = errors.New("daily session already exists")
)

type Entry struct {
	ExerciseID string                    `json:"exerciseId"`
	Planned    prescription.Prescription `json:"planned"`
	Variant    templates.Variant         `json:"variant"`
	Cue        string                    `json:"cue"`
}

// DailySession is the materialized prescription of one user for one date.
// It is never modified after it is stored.
type DailySession struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	Date       string    `json:"date"`
	TemplateID string    `json:"templateId"`
	DayIndex   int       `json:"dayIndex"`
	Exercises  []Entry   `json:"exercises"`
	CreatedAt  time.Time `json:"createdAt"`
}

// PlannedFor returns the planned vector of the first entry for exerciseID.
func (s *DailySession) PlannedFor(exerciseID string) (*prescription.Prescription, bool) {
	if s == nil {
		return nil, false
	}
	for i := range s.Exercises {
		if s.Exercises[i].ExerciseID == exerciseID {
			return s.Exercises[i].Planned.Clone(), true
		}
	}
	return nil, false
}
