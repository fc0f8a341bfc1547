package progression

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/trainloop/internal/telemetry/metrics"
	"github.com/2beens/trainloop/internal/telemetry/tracing"
	"github.com/2beens/trainloop/internal/training/plans"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=writer_mocks_test.go -package=progression_test

type overrideAppender interface {
	AppendOverride(ctx context.Context, userID string, override plans.Override) (*plans.Override, error)
}

// Writer turns decisions into dated plan overrides.
type Writer struct {
	plans          overrideAppender
	metricsManager *metrics.Manager
}

func NewWriter(plans overrideAppender, metricsManager *metrics.Manager) *Writer {
	return &Writer{
		plans:          plans,
		metricsManager: metricsManager,
	}
}

// Apply appends the override the decision calls for, effective on
// effectiveDate. A same decision, or a user without a plan, appends nothing
// and returns a nil override.
func (w *Writer) Apply(
	ctx context.Context,
	userID, exerciseID string,
	decision Decision,
	effectiveDate string,
) (_ *plans.Override, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "progression.writer.apply")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("exercise.id", exerciseID),
		attribute.String("decision.kind", decision.Kind.String()),
	)

	override := plans.Override{
		Date:       effectiveDate,
		ExerciseID: exerciseID,
	}
	switch decision.Kind {
	case KindIncrease, KindDecrease:
		if decision.NewPlanned.IsEmpty() {
			return nil, fmt.Errorf("%s decision for exercise [%s] without a new prescription", decision.Kind, exerciseID)
		}
		override.Kind = plans.OverrideAdjustVolume
		override.Payload.Planned = decision.NewPlanned.Clone()
	case KindSwapEasier, KindSwapAdvanced:
		if decision.ToExerciseID == "" {
			return nil, fmt.Errorf("%s decision for exercise [%s] without a target exercise", decision.Kind, exerciseID)
		}
		override.Kind = plans.OverrideReplace
		override.Payload.To = decision.ToExerciseID
	default:
		return nil, nil
	}

	appended, err := w.plans.AppendOverride(ctx, userID, override)
	if errors.Is(err, plans.ErrPlanNotFound) {
		log.Warnf("progression: user [%s] has no plan, %s decision for [%s] dropped", userID, decision.Kind, exerciseID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("append override: %w", err)
	}

	w.metricsManager.CounterOverridesAppended.WithLabelValues(appended.Kind.String()).Inc()
	span.SetAttributes(attribute.Int64("override.seq", appended.Seq))

	return appended, nil
}
