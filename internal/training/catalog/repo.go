package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

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

func (r *Repo) FindByID(ctx context.Context, id string) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.findById")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("exercise.id", id))

	row := r.db.QueryRow(
		ctx,
		`SELECT id, name, default_prescription, progression_policy, alternatives
			FROM exercise
			WHERE id = $1;`,
		id,
	)

	exercise, err := scanExercise(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}
	return exercise, nil
}

// FindByIDs returns the exercises found for ids, keyed by id. Missing ids
// are simply absent from the result.
func (r *Repo) FindByIDs(ctx context.Context, ids []string) (_ map[string]*Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.findByIds")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise.ids.count", len(ids)))

	found := make(map[string]*Exercise, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, default_prescription, progression_policy, alternatives
			FROM exercise
			WHERE id = ANY($1);`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		found[exercise.ID] = exercise
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return found, nil
}

func scanExercise(row pgx.Row) (*Exercise, error) {
	var (
		exercise     Exercise
		defaultBytes []byte
		policyBytes  []byte
		alternatives []string
	)
	if err := row.Scan(&exercise.ID, &exercise.Name, &defaultBytes, &policyBytes, &alternatives); err != nil {
		return nil, err
	}

	if len(defaultBytes) > 0 {
		if err := json.Unmarshal(defaultBytes, &exercise.DefaultPrescription); err != nil {
			return nil, fmt.Errorf("unmarshal default prescription for exercise %s: %w", exercise.ID, err)
		}
	}
	if len(policyBytes) > 0 {
		if err := json.Unmarshal(policyBytes, &exercise.ProgressionPolicy); err != nil {
			return nil, fmt.Errorf("unmarshal progression policy for exercise %s: %w", exercise.ID, err)
		}
	}

	exercise.Alternatives = alternatives
	if exercise.Alternatives == nil {
		exercise.Alternatives = make([]string, 0)
	}

	return &exercise, nil
}
