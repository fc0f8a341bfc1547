package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

func (r *Repo) Get(ctx context.Context, userID, date string) (_ *DailySession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("date", date),
	)

	var (
		session        DailySession
		exercisesBytes []byte
	)
	err = r.db.QueryRow(
		ctx,
		`
			SELECT id, user_id, day, template_id, day_index, exercises, created_at
			FROM daily_session
			WHERE user_id = $1 AND day = $2
		`,
		userID,
		date,
	).Scan(
		&session.ID,
		&session.UserID,
		&session.Date,
		&session.TemplateID,
		&session.DayIndex,
		&exercisesBytes,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("daily session [query row]: %w", err)
	}

	if err := json.Unmarshal(exercisesBytes, &session.Exercises); err != nil {
		return nil, fmt.Errorf("unmarshal exercises of session %d: %w", session.ID, err)
	}
	if session.Exercises == nil {
		session.Exercises = make([]Entry, 0)
	}

	return &session, nil
}

// Insert stores a new session. A session already stored for the same user
// and date makes it fail with ErrSessionExists.
func (r *Repo) Insert(ctx context.Context, session DailySession) (_ *DailySession, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.sessions.insert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", session.UserID),
		attribute.String("date", session.Date),
	)

	if session.Exercises == nil {
		session.Exercises = make([]Entry, 0)
	}
	exercisesBytes, err := json.Marshal(session.Exercises)
	if err != nil {
		return nil, fmt.Errorf("marshal exercises: %w", err)
	}

	err = r.db.QueryRow(
		ctx,
		`
			INSERT INTO daily_session
			    (user_id, day, template_id, day_index, exercises)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`,
		session.UserID,
		session.Date,
		session.TemplateID,
		session.DayIndex,
		exercisesBytes,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrSessionExists
		}
		return nil, fmt.Errorf("daily session [insert]: %w", err)
	}

	return &session, nil
}
