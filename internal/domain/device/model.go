package device

import "time"

// Device is a point of sale register inside a business premise
type Device struct {
	ID string `db:"id" json:"id"`

	// ExternalID is the device identifier known to the tax authority
	ExternalID string `db:"device_id" json:"device_id"`
	PremiseID  string `db:"premise_id" json:"premise_id"`

	// SequenceCounter is the last sequence handed out. It only moves
	// through Repository.NextSequence.
	SequenceCounter int64 `db:"seq_invoice_id" json:"seq_invoice_id"`

	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
