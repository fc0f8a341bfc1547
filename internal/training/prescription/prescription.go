// Package prescription holds the unit-of-work vector shared by templates,
// catalog defaults, overrides, daily sessions and session logs.
package prescription

import (
	"math"
)

// Prescription is a sparse vector: a nil field is absent and falls through
// when merged. TimeMinutes is only accepted on input; Normalize folds it
// into TimeSeconds.
type Prescription struct {
	Sets           *int     `json:"sets,omitempty"`
	Reps           *int     `json:"reps,omitempty"`
	LoadKg         *float64 `json:"load_kg,omitempty"`
	TimeSeconds    *int     `json:"time_seconds,omitempty"`
	RestSeconds    *int     `json:"rest_seconds,omitempty"`
	DistanceMeters *int     `json:"distance_meters,omitempty"`

	// TimeMinutes is the legacy duration field.
	TimeMinutes *float64 `json:"time_minutes,omitempty"`
}

func Int(v int) *int { return &v }

func Float(v float64) *float64 { return &v }

// IsEmpty reports whether no field is present.
func (p *Prescription) IsEmpty() bool {
	return p == nil || (p.Sets == nil && p.Reps == nil && p.LoadKg == nil &&
		p.TimeSeconds == nil && p.RestSeconds == nil && p.DistanceMeters == nil &&
		p.TimeMinutes == nil)
}

// Clone returns a deep copy; nil in, nil out.
func (p *Prescription) Clone() *Prescription {
	if p == nil {
		return nil
	}
	return &Prescription{
		Sets:           cloneInt(p.Sets),
		Reps:           cloneInt(p.Reps),
		LoadKg:         cloneFloat(p.LoadKg),
		TimeSeconds:    cloneInt(p.TimeSeconds),
		RestSeconds:    cloneInt(p.RestSeconds),
		DistanceMeters: cloneInt(p.DistanceMeters),
		TimeMinutes:    cloneFloat(p.TimeMinutes),
	}
}

// Normalize returns a copy with a legacy TimeMinutes converted into
// TimeSeconds (x60, rounded) and removed. A present TimeMinutes wins over
// a TimeSeconds carried by the same vector.
func Normalize(p *Prescription) Prescription {
	if p == nil {
		return Prescription{}
	}
	n := *p.Clone()
	if n.TimeMinutes != nil {
		n.TimeSeconds = Int(int(math.Round(*n.TimeMinutes * 60)))
		n.TimeMinutes = nil
	}
	return n
}

// Merge overlays later on top of earlier field by field: fields present in
// later win, absent ones fall through. Both inputs are normalized before
// the overlay and the result after it, so a legacy minutes field in either
// vector never survives and never shadows a later seconds value.
// Inputs are not modified.
func Merge(earlier, later *Prescription) Prescription {
	merged := Normalize(earlier)
	top := Normalize(later)

	if top.Sets != nil {
		merged.Sets = top.Sets
	}
	if top.Reps != nil {
		merged.Reps = top.Reps
	}
	if top.LoadKg != nil {
		merged.LoadKg = top.LoadKg
	}
	if top.TimeSeconds != nil {
		merged.TimeSeconds = top.TimeSeconds
	}
	if top.RestSeconds != nil {
		merged.RestSeconds = top.RestSeconds
	}
	if top.DistanceMeters != nil {
		merged.DistanceMeters = top.DistanceMeters
	}

	return Normalize(&merged)
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
