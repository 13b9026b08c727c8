package storage

import (
	"strings"
	"testing"
)

func TestSchemaStatements(t *testing.T) {
	stmts := schemaStatements()
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(stmts))
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE IF NOT EXISTS audit_entries") {
		t.Errorf("unexpected first statement %q", stmts[0])
	}
	if !strings.HasPrefix(stmts[1], "CREATE TABLE IF NOT EXISTS product_flows") {
		t.Errorf("unexpected second statement %q", stmts[1])
	}
	for _, stmt := range stmts {
		if strings.Contains(stmt, "--") {
			t.Errorf("comment left in statement %q", stmt)
		}
	}
}
