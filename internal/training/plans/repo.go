package plans

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/trainloop/internal/telemetry/tracing"
	"github.com/2beens/trainloop/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// GetPlan returns the plan without its override log.
func (r *Repo) GetPlan(ctx context.Context, userID string) (_ *UserPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.getPlan")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	plan, err := scanPlan(r.db.QueryRow(
		ctx,
		`
			SELECT user_id, template_id, current_day_index, created_at, updated_at
			FROM user_plan
			WHERE user_id = $1
		`,
		userID,
	))
	if err != nil {
		return nil, err
	}
	plan.Overrides = make([]Override, 0)

	return plan, nil
}

// Get returns the plan with its whole override log, in insertion order.
func (r *Repo) Get(ctx context.Context, userID string) (_ *UserPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	plan, err := r.GetPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`
			SELECT seq, day, exercise_id, kind, payload, created_at
			FROM plan_override
			WHERE user_id = $1
			ORDER BY seq
		`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("overrides [query]: %w", err)
	}
	plan.Overrides, err = collectOverrides(rows)
	if err != nil {
		return nil, err
	}

	return plan, nil
}

// OverridesForDate returns the overrides scheduled for exactly date,
// in insertion order.
func (r *Repo) OverridesForDate(ctx context.Context, userID, date string) (_ []Override, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.overridesForDate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("date", date),
	)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT seq, day, exercise_id, kind, payload, created_at
			FROM plan_override
			WHERE user_id = $1 AND day = $2
			ORDER BY seq
		`,
		userID,
		date,
	)
	if err != nil {
		return nil, fmt.Errorf("overrides for date [query]: %w", err)
	}

	return collectOverrides(rows)
}

// AppendOverride pushes one override onto the user's log. The insert is a
// single statement, so concurrent appends for the same user never drop each
// other. Returns ErrPlanNotFound if the user has no plan.
func (r *Repo) AppendOverride(ctx context.Context, userID string, override Override) (_ *Override, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.appendOverride")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("override.kind", override.Kind.String()),
		attribute.String("override.exerciseId", override.ExerciseID),
	)

	payloadBytes, err := json.Marshal(override.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal override payload: %w", err)
	}

	if override.CreatedAt.IsZero() {
		override.CreatedAt = time.Now()
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO plan_override
			    (user_id, day, exercise_id, kind, payload, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING seq
		`,
		userID,
		override.Date,
		override.ExerciseID,
		override.Kind.String(),
		payloadBytes,
		override.CreatedAt,
	).Scan(&override.Seq)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("override [insert]: %w", err)
	}

	return &override, nil
}

// Assign points the user's plan at templateID, creating the plan on first
// use. The day index of an existing plan and its override log are kept.
func (r *Repo) Assign(ctx context.Context, userID, templateID string) (_ *UserPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.assign")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("template.id", templateID),
	)

	now := time.Now()
	plan, err := scanPlan(r.db.QueryRow(
		ctx,
		`
			INSERT INTO user_plan
			    (user_id, template_id, current_day_index, created_at, updated_at)
			VALUES ($1, $2, 0, $3, $3)
			ON CONFLICT (user_id) DO UPDATE
			    SET template_id = EXCLUDED.template_id, updated_at = EXCLUDED.updated_at
			RETURNING user_id, template_id, current_day_index, created_at, updated_at
		`,
		userID,
		templateID,
		now,
	))
	if err != nil {
		return nil, err
	}
	plan.Overrides = make([]Override, 0)

	return plan, nil
}

// AdvanceDay moves the plan one day forward in its template.
func (r *Repo) AdvanceDay(ctx context.Context, userID string) (_ *UserPlan, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.plans.advanceDay")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("user.id", userID))

	plan, err := scanPlan(r.db.QueryRow(
		ctx,
		`
			UPDATE user_plan
			SET current_day_index = current_day_index + 1, updated_at = $2
			WHERE user_id = $1
			RETURNING user_id, template_id, current_day_index, created_at, updated_at
		`,
		userID,
		time.Now(),
	))
	if err != nil {
		return nil, err
	}
	plan.Overrides = make([]Override, 0)

	return plan, nil
}

func scanPlan(row pgx.Row) (*UserPlan, error) {
	var plan UserPlan
	if err := row.Scan(
		&plan.UserID,
		&plan.TemplateID,
		&plan.CurrentDayIndex,
		&plan.CreatedAt,
		&plan.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("user plan [query row]: %w", err)
	}
	return &plan, nil
}

func collectOverrides(rows pgx.Rows) ([]Override, error) {
	defer rows.Close()

	overrides := make([]Override, 0)
	for rows.Next() {
		var (
			override     Override
			kind         string
			payloadBytes []byte
		)
		if err := rows.Scan(
			&override.Seq,
			&override.Date,
			&override.ExerciseID,
			&kind,
			&payloadBytes,
			&override.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("overrides [rows scan]: %w", err)
		}
		override.Kind = OverrideKind(kind)
		if len(payloadBytes) > 0 {
			if err := json.Unmarshal(payloadBytes, &override.Payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload of override %d: %w", override.Seq, err)
			}
		}
		overrides = append(overrides, override)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("overrides [rows error]: %w", err)
	}

	return overrides, nil
}
