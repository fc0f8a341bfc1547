package progression

import (
	"math"

	"github.com/2beens/trainloop/internal/training/catalog"
	"github.com/2beens/trainloop/internal/training/logs"
	"github.com/2beens/trainloop/internal/training/prescription"
)

// WindowSize is how many of the most recent outcomes an evaluation looks at.
const WindowSize = 3

const (
	intensifyMinSuccessRate = 0.66
	intensifyMaxAvgEffort   = 6.0
	intensifyMaxSkipRate    = 0.2

	reduceMinSkipRate      = 0.33
	reduceMinAvgEffort     = 8.0
	reduceMinDifficultRate = 0.5

	reduceRepsFactor = 0.9
)

type windowStats struct {
	successRate   float64
	skipRate      float64
	difficultRate float64
	avgEffort     float64
}

func computeStats(window []logs.Entry) windowStats {
	var done, skipped, difficult, effortSum int
	for _, e := range window {
		switch e.Status {
		case logs.StatusDone:
			done++
		case logs.StatusSkipped:
			skipped++
		case logs.StatusDifficult:
			difficult++
		}
		if e.PerceivedEffort != nil {
			effortSum += *e.PerceivedEffort
		}
	}
	// rates are over the full window, so a short history counts as missing outcomes
	return windowStats{
		successRate:   float64(done) / WindowSize,
		skipRate:      float64(skipped) / WindowSize,
		difficultRate: float64(difficult) / WindowSize,
		avgEffort:     float64(effortSum) / float64(len(window)),
	}
}

// Evaluate decides how the next prescription of exercise should change,
// given its recent outcomes (most recent first) and the prescription
// currently planned for it. Only the first WindowSize outcomes are used.
// Intensifying is checked before reducing, so it wins when both apply.
func Evaluate(exercise *catalog.Exercise, recent []logs.Entry, current *prescription.Prescription) Decision {
	if exercise == nil || len(recent) == 0 {
		return Same()
	}

	window := recent
	if len(window) > WindowSize {
		window = window[:WindowSize]
	}
	stats := computeStats(window)
	base := prescription.Merge(&exercise.DefaultPrescription, current)

	if stats.successRate >= intensifyMinSuccessRate &&
		(stats.avgEffort == 0 || stats.avgEffort <= intensifyMaxAvgEffort) &&
		stats.skipRate <= intensifyMaxSkipRate {
		planned := applyMicroProgression(base, exercise.ProgressionPolicy)
		return Decision{
			Kind:       KindIncrease,
			NewPlanned: &planned,
		}
	}

	if stats.skipRate >= reduceMinSkipRate ||
		stats.avgEffort >= reduceMinAvgEffort ||
		stats.difficultRate >= reduceMinDifficultRate {
		if len(exercise.Alternatives) > 0 {
			return Decision{
				Kind:         KindSwapEasier,
				ToExerciseID: exercise.Alternatives[0],
			}
		}
		planned := reduceVolume(base)
		return Decision{
			Kind:       KindDecrease,
			NewPlanned: &planned,
		}
	}

	return Same()
}

// applyMicroProgression bumps the field the policy progresses on.
// Undefined fields stay undefined.
func applyMicroProgression(base prescription.Prescription, policy catalog.ProgressionPolicy) prescription.Prescription {
	bump := prescription.Prescription{}

	switch policy.Method {
	case catalog.MethodLoad:
		if base.LoadKg != nil {
			load := *base.LoadKg * (1 + policy.LoadStepPercent/100)
			bump.LoadKg = prescription.Float(math.Round(load*10) / 10)
		}
	case catalog.MethodReps, catalog.MethodRepsThenLoad, "":
		if base.Reps != nil {
			bump.Reps = prescription.Int(max(1, *base.Reps+int(math.Round(policy.MicroStep))))
		}
	case catalog.MethodTime:
		if base.TimeSeconds != nil {
			bump.TimeSeconds = prescription.Int(*base.TimeSeconds + int(math.Round(policy.MicroStep*60)))
		}
	}

	return prescription.Merge(&base, &bump)
}

func reduceVolume(base prescription.Prescription) prescription.Prescription {
	cut := prescription.Prescription{}
	if base.Sets != nil {
		cut.Sets = prescription.Int(max(1, *base.Sets-1))
	}
	if base.Reps != nil {
		cut.Reps = prescription.Int(max(1, int(math.Round(float64(*base.Reps)*reduceRepsFactor))))
	}
	return prescription.Merge(&base, &cut)
}

// RecentEntries picks, from logs ordered most recent first, the entry of
// exerciseID in each log dated on or before upToDate, up to WindowSize.
func RecentEntries(sessionLogs []logs.SessionLog, exerciseID, upToDate string) []logs.Entry {
	recent := make([]logs.Entry, 0, WindowSize)
	for i := range sessionLogs {
		if sessionLogs[i].Date > upToDate {
			continue
		}
		entry, ok := sessionLogs[i].EntryFor(exerciseID)
		if !ok {
			continue
		}
		recent = append(recent, entry)
		if len(recent) == WindowSize {
			break
		}
	}
	return recent
}
