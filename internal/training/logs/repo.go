package logs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/trainloop/internal/telemetry/tracing"

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

// Upsert stores the log, replacing the whole entry sequence of an existing
// log for the same user and date.
func (r *Repo) Upsert(ctx context.Context, sessionLog SessionLog) (_ *SessionLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.logs.upsert")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", sessionLog.UserID),
		attribute.String("date", sessionLog.Date),
		attribute.Int("entries.count", len(sessionLog.Entries)),
	)

	if sessionLog.Entries == nil {
		sessionLog.Entries = make([]Entry, 0)
	}
	entriesBytes, err := json.Marshal(sessionLog.Entries)
	if err != nil {
		return nil, fmt.Errorf("marshal entries: %w", err)
	}

	if sessionLog.UpdatedAt.IsZero() {
		sessionLog.UpdatedAt = time.Now()
	}

	_, err = r.db.Exec(
		ctx,
		`
			INSERT INTO session_log
			    (user_id, day, entries, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, day) DO UPDATE
			    SET entries = EXCLUDED.entries, updated_at = EXCLUDED.updated_at
		`,
		sessionLog.UserID,
		sessionLog.Date,
		entriesBytes,
		sessionLog.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("session log [upsert]: %w", err)
	}

	return &sessionLog, nil
}

func (r *Repo) Get(ctx context.Context, userID, date string) (_ *SessionLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.logs.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("date", date),
	)

	sessionLog, err := scanLog(r.db.QueryRow(
		ctx,
		`
			SELECT user_id, day, entries, updated_at
			FROM session_log
			WHERE user_id = $1 AND day = $2
		`,
		userID,
		date,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLogNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session log [query row]: %w", err)
	}

	return sessionLog, nil
}

// FindRecent returns up to limit logs of the user dated on or before
// upToDate, most recent date first.
func (r *Repo) FindRecent(ctx context.Context, userID, upToDate string, limit int) (_ []SessionLog, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.logs.findRecent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("user.id", userID),
		attribute.String("date", upToDate),
		attribute.Int("limit", limit),
	)

	rows, err := r.db.Query(
		ctx,
		`
			SELECT user_id, day, entries, updated_at
			FROM session_log
			WHERE user_id = $1 AND day <= $2
			ORDER BY day DESC
			LIMIT $3
		`,
		userID,
		upToDate,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("session logs [query]: %w", err)
	}
	defer rows.Close()

	sessionLogs := make([]SessionLog, 0, limit)
	for rows.Next() {
		sessionLog, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("session logs [rows scan]: %w", err)
		}
		sessionLogs = append(sessionLogs, *sessionLog)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("session logs [rows error]: %w", err)
	}

	return sessionLogs, nil
}

func scanLog(row pgx.Row) (*SessionLog, error) {
	var (
		sessionLog   SessionLog
		entriesBytes []byte
	)
	if err := row.Scan(
		&sessionLog.UserID,
		&sessionLog.Date,
		&entriesBytes,
		&sessionLog.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if len(entriesBytes) > 0 {
		if err := json.Unmarshal(entriesBytes, &sessionLog.Entries); err != nil {
			return nil, fmt.Errorf("unmarshal entries: %w", err)
		}
	}
	if sessionLog.Entries == nil {
		sessionLog.Entries = make([]Entry, 0)
	}

	return &sessionLog, nil
}
