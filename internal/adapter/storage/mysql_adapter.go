package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/warehouse-ledger/internal/core/domain"
)

// MySQLAdapter archives exported audit entries and keeps running per-product
// flow totals between location ids. Its tables are created by ApplySchema.
type MySQLAdapter struct {
	db *sql.DB
}

func NewMySQLAdapter(db *sql.DB) *MySQLAdapter {
	return &MySQLAdapter{db: db}
}

func (m *MySQLAdapter) AppendEntry(ctx context.Context, entry domain.AuditEntry) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT IGNORE INTO audit_entries
			(id, recorded_at, kind, product_id, quantity, source, destination, source_id, destination_id, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(), entry.Time, string(entry.Kind), nullableProduct(entry), entry.Quantity,
		entry.Source, entry.Destination, int64(entry.SourceID), int64(entry.DestinationID), entry.Message,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}

	// A replayed entry is already archived and counted.
	if rows, _ := result.RowsAffected(); rows == 0 {
		return tx.Commit()
	}

	if entry.Kind == domain.AuditKindMovement {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO product_flows (product_id, source_id, destination_id, quantity, updated_at)
			VALUES (?, ?, ?, ?, NOW())
			ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = NOW()`,
			int64(entry.ProductID), int64(entry.SourceID), int64(entry.DestinationID), entry.Quantity,
		)
		if err != nil {
			return fmt.Errorf("update product flow: %w", err)
		}
	}

	return tx.Commit()
}

// FlowTotal returns the archived quantity of a product moved from source to
// destination. Location id 0 stands for supply or none.
func (m *MySQLAdapter) FlowTotal(ctx context.Context, productID domain.ProductID, source, destination domain.LocationID) (int, error) {
	var total int
	err := m.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(quantity), 0) FROM product_flows
		WHERE product_id = ? AND source_id = ? AND destination_id = ?`,
		int64(productID), int64(source), int64(destination),
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("query product flow: %w", err)
	}
	return total, nil
}

func nullableProduct(entry domain.AuditEntry) sql.NullInt64 {
	if entry.Kind != domain.AuditKindMovement {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(entry.ProductID), Valid: true}
}
