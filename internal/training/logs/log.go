package logs

import (
	"fmt"
	"time"

	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/pkg"
)

var ErrLogNotFound = fmt.Errorf("session log %w", pkg.ErrNotFound)

type Status string

const (
	StatusDone      Status = "done"
	StatusSkipped   Status = "skipped"
	StatusDifficult Status = "difficult"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDone, StatusSkipped, StatusDifficult:
		return true
	}
	return false
}

const (
	MinPerceivedEffort = 1
	MaxPerceivedEffort = 10
)

type Entry struct {
	ExerciseID string                    `json:"exerciseId"`
	Status     Status                    `json:"status"`
	Actual     prescription.Prescription `json:"actual"`
	// PerceivedEffort is optional, 1..10 when present.
	PerceivedEffort *int   `json:"perceivedEffort,omitempty"`
	Notes           string `json:"notes"`
}

type SessionLog struct {
	UserID    string    `json:"userId"`
	Date      string    `json:"date"`
	Entries   []Entry   `json:"entries"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntryFor returns the first entry logged for exerciseID.
func (l *SessionLog) EntryFor(exerciseID string) (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	for _, e := range l.Entries {
		if e.ExerciseID == exerciseID {
			return e, true
		}
	}
	return Entry{}, false
}

// ExerciseIDs returns the distinct exercise ids of the log, in first-seen order.
func (l *SessionLog) ExerciseIDs() []string {
	if l == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(l.Entries))
	ids := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		if _, ok := seen[e.ExerciseID]; ok {
			continue
		}
		seen[e.ExerciseID] = struct{}{}
		ids = append(ids, e.ExerciseID)
	}
	return ids
}
