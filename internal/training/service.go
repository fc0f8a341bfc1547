package training

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/2beens/trainloop/internal/telemetry/metrics"
	"github.com/2beens/trainloop/internal/telemetry/tracing"
	"github.com/2beens/trainloop/internal/training/catalog"
	"github.com/2beens/trainloop/internal/training/logs"
	"github.com/2beens/trainloop/internal/training/plans"
	"github.com/2beens/trainloop/internal/training/prescription"
	"github.com/2beens/trainloop/internal/training/progression"
	"github.com/2beens/trainloop/internal/training/sessions"
	"github.com/2beens/trainloop/internal/training/templates"
	"github.com/2beens/trainloop/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=training_test

type sessionGenerator interface {
	Generate(ctx context.Context, userID, date string) (*sessions.DailySession, error)
}

type sessionStore interface {
	Get(ctx context.Context, userID, date string) (*sessions.DailySession, error)
}

type logStore interface {
	Upsert(ctx context.Context, sessionLog logs.SessionLog) (*logs.SessionLog, error)
	Get(ctx context.Context, userID, date string) (*logs.SessionLog, error)
	FindRecent(ctx context.Context, userID, upToDate string, limit int) ([]logs.SessionLog, error)
}

type planStore interface {
	Get(ctx context.Context, userID string) (*plans.UserPlan, error)
	Assign(ctx context.Context, userID, templateID string) (*plans.UserPlan, error)
	AdvanceDay(ctx context.Context, userID string) (*plans.UserPlan, error)
}

type templateStore interface {
	FindByID(ctx context.Context, id string) (*templates.Template, error)
}

type exerciseCatalog interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]*catalog.Exercise, error)
}

type overrideWriter interface {
	Apply(ctx context.Context, userID, exerciseID string, decision progression.Decision, effectiveDate string) (*plans.Override, error)
}

// ProgressionOutcome reports what the progression step did for one exercise
// of a submitted log. Error is set when that exercise failed.
type ProgressionOutcome struct {
	ExerciseID  string                   `json:"exerciseId"`
	Decision    progression.DecisionKind `json:"decision,omitempty"`
	OverrideSeq *int64                   `json:"overrideSeq,omitempty"`
	Error       string                   `json:"error,omitempty"`
}

type SubmitResult struct {
	Log      *logs.SessionLog     `json:"log"`
	Outcomes []ProgressionOutcome `json:"outcomes"`
}

type ServiceParams struct {
	Generator      sessionGenerator
	Sessions       sessionStore
	Logs           logStore
	Plans          planStore
	Templates      templateStore
	Catalog        exerciseCatalog
	Writer         overrideWriter
	MetricsManager *metrics.Manager

	// ProgressionWorkers bounds how many exercises of one log are evaluated
	// at the same time.
	ProgressionWorkers int
	// HistoryLookbackLogs is how many recent logs are read to build the
	// per-exercise outcome windows.
	HistoryLookbackLogs int
}

type Service struct {
	generator      sessionGenerator
	sessions       sessionStore
	logs           logStore
	plans          planStore
	templates      templateStore
	catalog        exerciseCatalog
	writer         overrideWriter
	metricsManager *metrics.Manager

	progressionWorkers  int
	historyLookbackLogs int
}

func NewService(params ServiceParams) *Service {
	workers := params.ProgressionWorkers
	if workers <= 0 {
		workers = 1
	}
	lookback := params.HistoryLookbackLogs
	if lookback < progression.WindowSize {
		lookback = progression.WindowSize
	}

	return &Service{
		generator:           params.Generator,
		sessions:            params.Sessions,
		logs:                params.Logs,
		plans:               params.Plans,
		templates:           params.Templates,
		catalog:             params.Catalog,
		writer:              params.Writer,
		metricsManager:      params.MetricsManager,
		progressionWorkers:  workers,
		historyLookbackLogs: lookback,
	}
}

func validateDate(date string) (string, error) {
	if date == "" {
		return "", newValidationError("date", "missing")
	}
	resolved, err := pkg.ParseDate(date)
	if err != nil {
		return "", newValidationError("date", "expected YYYY-MM-DD or today")
	}
	return resolved, nil
}

func validateEntries(entries []logs.Entry) error {
	if len(entries) == 0 {
		return newValidationError("entries", "at least one entry is required")
	}

	v := &ValidationError{}
	for i, e := range entries {
		if e.ExerciseID == "" {
			v.add(fmt.Sprintf("entries[%d].exerciseId", i), "missing")
		}
		if !e.Status.Valid() {
			v.add(fmt.Sprintf("entries[%d].status", i), "expected one of done, skipped, difficult")
		}
		if e.PerceivedEffort != nil &&
			(*e.PerceivedEffort < logs.MinPerceivedEffort || *e.PerceivedEffort > logs.MaxPerceivedEffort) {
			v.add(fmt.Sprintf("entries[%d].perceivedEffort", i), "expected 1..10")
		}
	}
	if v.HasErrors() {
		return v
	}
	return nil
}

func (s *Service) GetOrGenerateDailySession(ctx context.Context, userID, date string) (_ *sessions.DailySession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.dailySession")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	date, err = validateDate(date)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("date", date))

	return s.generator.Generate(ctx, userID, date)
}

// SubmitSessionLog stores the log, replacing an earlier one for the same
// date, then evaluates every logged exercise and writes the resulting plan
// overrides for the next day. Progression failures are reported per
// exercise and never fail the submission.
func (s *Service) SubmitSessionLog(ctx context.Context, userID, date string, entries []logs.Entry) (_ *SubmitResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.submitLog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	date, err = validateDate(date)
	if err != nil {
		return nil, err
	}
	if err := validateEntries(entries); err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("date", date),
		attribute.Int("entries.count", len(entries)),
	)

	stored, err := s.logs.Upsert(ctx, logs.SessionLog{
		UserID:  userID,
		Date:    date,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("store session log: %w", err)
	}
	s.metricsManager.CounterLogsSubmitted.Inc()

	return &SubmitResult{
		Log:      stored,
		Outcomes: s.progress(ctx, stored),
	}, nil
}

// progress runs the evaluator and the override writer for each distinct
// exercise of the log on a bounded worker group.
func (s *Service) progress(ctx context.Context, sessionLog *logs.SessionLog) []ProgressionOutcome {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.progress")
	defer span.End()

	start := time.Now()
	defer func() {
		s.metricsManager.HistogramProgressionFanout.Observe(time.Since(start).Seconds())
	}()

	exerciseIDs := sessionLog.ExerciseIDs()
	outcomes := make([]ProgressionOutcome, len(exerciseIDs))
	for i, id := range exerciseIDs {
		outcomes[i].ExerciseID = id
	}

	history, exercises, current, effectiveDate, err := s.progressionInputs(ctx, sessionLog, exerciseIDs)
	if err != nil {
		for i := range outcomes {
			outcomes[i].Error = err.Error()
		}
		s.metricsManager.CounterProgressionFailures.Add(float64(len(outcomes)))
		log.Warnf("progression for user [%s] log [%s] skipped: %s", sessionLog.UserID, sessionLog.Date, err)
		return outcomes
	}

	var (
		mu       sync.Mutex
		failures error
	)
	g := new(errgroup.Group)
	g.SetLimit(s.progressionWorkers)
	for i, exerciseID := range exerciseIDs {
		g.Go(func() error {
			recent := progression.RecentEntries(history, exerciseID, sessionLog.Date)
			decision := progression.Evaluate(exercises[exerciseID], recent, current[exerciseID])
			outcomes[i].Decision = decision.Kind
			s.metricsManager.CounterProgressionDecisions.WithLabelValues(decision.Kind.String()).Inc()

			override, err := s.writer.Apply(ctx, sessionLog.UserID, exerciseID, decision, effectiveDate)
			if err != nil {
				outcomes[i].Error = err.Error()
				s.metricsManager.CounterProgressionFailures.Inc()
				mu.Lock()
				failures = multierr.Append(failures, fmt.Errorf("exercise [%s]: %w", exerciseID, err))
				mu.Unlock()
				return nil
			}
			if override != nil {
				seq := override.Seq
				outcomes[i].OverrideSeq = &seq
			}
			return nil
		})
	}
	// workers never return errors, each failure stays in its outcome
	_ = g.Wait()

	if failures != nil {
		log.Warnf("progression for user [%s] log [%s]: %s", sessionLog.UserID, sessionLog.Date, failures)
	}

	return outcomes
}

func (s *Service) progressionInputs(
	ctx context.Context,
	sessionLog *logs.SessionLog,
	exerciseIDs []string,
) (
	history []logs.SessionLog,
	exercises map[string]*catalog.Exercise,
	current map[string]*prescription.Prescription,
	effectiveDate string,
	err error,
) {
	effectiveDate, err = pkg.NextDay(sessionLog.Date)
	if err != nil {
		return nil, nil, nil, "", err
	}

	history, err = s.logs.FindRecent(ctx, sessionLog.UserID, sessionLog.Date, s.historyLookbackLogs)
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("find recent logs: %w", err)
	}

	exercises, err = s.catalog.FindByIDs(ctx, exerciseIDs)
	if err != nil {
		return nil, nil, nil, "", fmt.Errorf("find logged exercises: %w", err)
	}

	current = make(map[string]*prescription.Prescription, len(exerciseIDs))
	session, err := s.sessions.Get(ctx, sessionLog.UserID, sessionLog.Date)
	switch {
	case err == nil:
		for _, id := range exerciseIDs {
			if planned, ok := session.PlannedFor(id); ok {
				current[id] = planned
			}
		}
	case errors.Is(err, sessions.ErrSessionNotFound):
		// logged without a generated session, catalog defaults are the base
	default:
		log.Warnf("progression for user [%s] log [%s]: get planned session: %s", sessionLog.UserID, sessionLog.Date, err)
	}

	return history, exercises, current, effectiveDate, nil
}

func (s *Service) GetSessionLog(ctx context.Context, userID, date string) (_ *logs.SessionLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.getLog")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	date, err = validateDate(date)
	if err != nil {
		return nil, err
	}

	return s.logs.Get(ctx, userID, date)
}

func (s *Service) GetUserPlan(ctx context.Context, userID string) (_ *plans.UserPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.getPlan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.plans.Get(ctx, userID)
}

// AssignTemplate points the user's plan at templateID, creating the plan if
// the user has none yet.
func (s *Service) AssignTemplate(ctx context.Context, userID, templateID string) (_ *plans.UserPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.assignTemplate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if templateID == "" {
		return nil, newValidationError("templateId", "missing")
	}
	span.SetAttributes(attribute.String("template.id", templateID))

	if _, err := s.templates.FindByID(ctx, templateID); err != nil {
		if errors.Is(err, templates.ErrTemplateNotFound) {
			return nil, newValidationError("templateId", "unknown template")
		}
		return nil, fmt.Errorf("find template: %w", err)
	}

	return s.plans.Assign(ctx, userID, templateID)
}

// AdvanceDay moves the user's plan to the next template day.
func (s *Service) AdvanceDay(ctx context.Context, userID string) (_ *plans.UserPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.training.advanceDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return s.plans.AdvanceDay(ctx, userID)
}
