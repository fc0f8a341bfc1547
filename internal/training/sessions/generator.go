package sessions

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/trainloop/internal/telemetry/metrics"
	"github.com/2beens/trainloop/internal/telemetry/tracing"
	"github.com/2beens/trainloop/internal/training/catalog"
	"github.com/2beens/trainloop/internal/training/plans"
	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/internal/training/templates"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=generator_mocks_test.go -package=sessions_test

type sessionStore interface {
	Get(ctx context.Context, userID, date string) (*DailySession, error)
	Insert(ctx context.Context, session DailySession) (*DailySession, error)
}

type planStore interface {
	GetPlan(ctx context.Context, userID string) (*plans.UserPlan, error)
	OverridesForDate(ctx context.Context, userID, date string) ([]plans.Override, error)
}

type templateStore interface {
	FindByID(ctx context.Context, id string) (*templates.Template, error)
}

type exerciseCatalog interface {
	FindByID(ctx context.Context, id string) (*catalog.Exercise, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*catalog.Exercise, error)
}

// Generator materializes daily sessions from a user's plan. A session is
// materialized once per user and date, later calls return the stored one.
type Generator struct {
	sessions       sessionStore
	plans          planStore
	templates      templateStore
	catalog        exerciseCatalog
	metricsManager *metrics.Manager
}

func NewGenerator(
	sessions sessionStore,
	plans planStore,
	templates templateStore,
	catalog exerciseCatalog,
	metricsManager *metrics.Manager,
) *Generator {
	return &Generator{
		sessions:       sessions,
		plans:          plans,
		templates:      templates,
		catalog:        catalog,
		metricsManager: metricsManager,
	}
}

func (g *Generator) Generate(ctx context.Context, userID, date string) (_ *DailySession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "sessions.generator.generate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("date", date),
	)

	existing, err := g.sessions.Get(ctx, userID, date)
	if err == nil {
		span.SetAttributes(attribute.Bool("session.existing", true))
		return existing, nil
	}
	if !errors.Is(err, ErrSessionNotFound) {
		return nil, fmt.Errorf("get existing session: %w", err)
	}

	session, err := g.materialize(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	stored, err := g.sessions.Insert(ctx, *session)
	if errors.Is(err, ErrSessionExists) {
		// a concurrent request stored its session first, theirs is the one
		g.metricsManager.CounterSessionCreateConflict.Inc()
		log.Debugf("daily session for user [%s] on [%s] created concurrently, re-reading", userID, date)
		winner, err := g.sessions.Get(ctx, userID, date)
		if err != nil {
			return nil, fmt.Errorf("re-read concurrently created session: %w", err)
		}
		return winner, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	g.metricsManager.CounterSessionsGenerated.Inc()
	span.SetAttributes(attribute.Int("session.exercises", len(stored.Exercises)))

	return stored, nil
}

func (g *Generator) materialize(ctx context.Context, userID, date string) (*DailySession, error) {
	plan, err := g.plans.GetPlan(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user plan: %w", err)
	}

	template, err := g.templates.FindByID(ctx, plan.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("get plan template: %w", err)
	}

	session := &DailySession{
		UserID:     userID,
		Date:       date,
		TemplateID: template.ID,
		DayIndex:   plan.CurrentDayIndex,
		Exercises:  make([]Entry, 0),
	}

	dayIndex, day, ok := template.DayAt(plan.CurrentDayIndex)
	if !ok {
		log.Debugf("template [%s] has no days, empty session for user [%s] on [%s]", template.ID, userID, date)
		return session, nil
	}
	session.DayIndex = dayIndex
	if len(day.Exercises) == 0 {
		return session, nil
	}

	ids := make([]string, 0, len(day.Exercises))
	for _, te := range day.Exercises {
		ids = append(ids, te.ExerciseID)
	}
	exercises, err := g.catalog.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("find day exercises: %w", err)
	}

	for _, te := range day.Exercises {
		exercise, ok := exercises[te.ExerciseID]
		if !ok {
			log.Debugf("exercise [%s] of template [%s] not in catalog, skipping", te.ExerciseID, template.ID)
			continue
		}
		variant := te.Variant
		if !variant.Valid() {
			variant = templates.VariantBase
		}
		session.Exercises = append(session.Exercises, Entry{
			ExerciseID: te.ExerciseID,
			Planned:    prescription.Merge(&exercise.DefaultPrescription, te.PlannedPrescription),
			Variant:    variant,
			Cue:        te.Cue,
		})
	}

	if len(session.Exercises) == 0 {
		return session, nil
	}

	overrides, err := g.plans.OverridesForDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("get overrides for date: %w", err)
	}
	for _, o := range overrides {
		if err := g.applyOverride(ctx, session, o); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// applyOverride changes the first entry of o's exercise. Overrides for
// exercises not in the session, or swapping to an exercise missing from the
// catalog, are skipped.
func (g *Generator) applyOverride(ctx context.Context, session *DailySession, o plans.Override) error {
	idx := -1
	for i := range session.Exercises {
		if session.Exercises[i].ExerciseID == o.ExerciseID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	entry := &session.Exercises[idx]

	switch o.Kind {
	case plans.OverrideReplace:
		replacement, err := g.catalog.FindByID(ctx, o.Payload.To)
		if errors.Is(err, catalog.ErrExerciseNotFound) {
			log.Debugf("override %d: replacement exercise [%s] not in catalog, skipping", o.Seq, o.Payload.To)
			return nil
		}
		if err != nil {
			return fmt.Errorf("find replacement exercise [%s]: %w", o.Payload.To, err)
		}
		entry.ExerciseID = replacement.ID
		entry.Planned = prescription.Merge(&replacement.DefaultPrescription, nil)
		entry.Variant = templates.VariantEasier
	case plans.OverrideAdjustVolume:
		entry.Planned = prescription.Merge(&entry.Planned, o.Payload.Planned)
	default:
		log.Warnf("override %d has unknown kind [%s], skipping", o.Seq, o.Kind)
	}

	return nil
}
