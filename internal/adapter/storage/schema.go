package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
)

// Schema creates the tables MySQLAdapter writes to.
//
//go:embed schema/schema.sql
var Schema string

// ApplySchema runs each statement of Schema. Statements are idempotent.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// schemaStatements splits Schema on ';', dropping comment lines and empty statements.
func schemaStatements() []string {
	var out []string
	for _, chunk := range strings.Split(Schema, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		if stmt := strings.TrimSpace(strings.Join(lines, "\n")); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
