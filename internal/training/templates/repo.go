package templates

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

func (r *Repo) FindByID(ctx context.Context, id string) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.findById")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("template.id", id))

	var (
		template  Template
		daysBytes []byte
	)
	if err := r.db.QueryRow(
		ctx,
		`SELECT id, name, days FROM plan_template WHERE id = $1;`,
		id,
	).Scan(&template.ID, &template.Name, &daysBytes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	if len(daysBytes) > 0 {
		if err := json.Unmarshal(daysBytes, &template.Days); err != nil {
			return nil, fmt.Errorf("unmarshal days of template %s: %w", id, err)
		}
	}
	if template.Days == nil {
		template.Days = make([]Day, 0)
	}

	return &template, nil
}
