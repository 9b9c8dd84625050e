// internal/models/sequence.go
package models

// Sequence is a dedicated atomic counter row. Incrementing it inside the
// same transaction that inserts the dependent record serializes allocation
// through the row lock, so two concurrent callers can never see the same
// value.
type Sequence struct {
	Name  string `json:"name" gorm:"primaryKey;size:50"`
	Value int64  `json:"value" gorm:"not null;default:0"`
}

const SequenceBillTransaction = "bill_transaction_id"
