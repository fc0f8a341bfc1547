package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

//go:embed sql/schema.sql
var schemaSQL string

// EnsureSchema creates the training tables if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	log.Debugln("db schema ensured")
	return nil
}

// Schema returns the embedded DDL, used by test suites to set up databases.
func Schema() string {
	return schemaSQL
}
