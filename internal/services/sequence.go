// internal/services/sequence.go
package services

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/shopdesk/crm-backend/internal/models"
)

// NextTransactionID allocates the next bill transaction id inside tx. The
// counter row is incremented first, so the row lock held until commit
// serializes concurrent allocations; a rolled-back bill rolls the counter
// back with it and ids stay gapless in commit order.
//
// Format is the stable external contract: "TID" + zero-padded sequence,
// TID0001, TID0002, ... (the padding grows naturally past 9999).
func NextTransactionID(tx *gorm.DB) (string, error) {
	result := tx.Model(&models.Sequence{}).
		Where("name = ?", models.SequenceBillTransaction).
		UpdateColumn("value", gorm.Expr("value + 1"))
	if result.Error != nil {
		return "", fmt.Errorf("failed to advance transaction sequence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", fmt.Errorf("transaction sequence %q is not bootstrapped", models.SequenceBillTransaction)
	}

	var seq models.Sequence
	if err := tx.First(&seq, "name = ?", models.SequenceBillTransaction).Error; err != nil {
		return "", fmt.Errorf("failed to read transaction sequence: %w", err)
	}

	return FormatTransactionID(seq.Value), nil
}

func FormatTransactionID(n int64) string {
	return fmt.Sprintf("TID%04d", n)
}
