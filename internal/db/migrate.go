package db

import (
	"context"
	"fmt"
	"strings"
)

const preAutoMigrateSQL = `
CREATE SCHEMA IF NOT EXISTS pdfdesk;
`

const postAutoMigrateSQL = `
CREATE INDEX IF NOT EXISTS stored_uploads_updated_at_idx
	ON pdfdesk.stored_uploads (updated_at);
`

// autoMigrate creates the schema, lets gorm shape the tables, then adds the
// indexes gorm tags cannot express.
func (p *Pool) autoMigrate(ctx context.Context) error {
	tx, err := p.session(ctx)
	if err != nil {
		return err
	}
	steps := []struct {
		label string
		run   func() error
	}{
		{"create schema", func() error { return tx.Exec(strings.TrimSpace(preAutoMigrateSQL)).Error }},
		{"migrate models", func() error { return tx.AutoMigrate(autoMigrateModels()...) }},
		{"create indexes", func() error { return tx.Exec(strings.TrimSpace(postAutoMigrateSQL)).Error }},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			return fmt.Errorf("%s: %w", step.label, err)
		}
	}
	return nil
}
