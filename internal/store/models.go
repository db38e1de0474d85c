package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/gmsas95/finbot/internal/ledger"
)

// migrate creates the ledger tables and their composite indexes
func migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&ledger.Transaction{}, &ledger.Goal{}, &ledger.Setting{}); err != nil {
		return fmt.Errorf("failed to migrate ledger schemas: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_transactions_owner_occurred ON transactions(owner, occurred_at)",
		"CREATE INDEX IF NOT EXISTS idx_transactions_owner_kind ON transactions(owner, kind)",
		"CREATE INDEX IF NOT EXISTS idx_goals_owner_status ON goals(owner, status)",
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
