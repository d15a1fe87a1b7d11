package domain

import "time"

// PenaltyWaiver records one administrative forgiveness of a late-return
// penalty, with the refund bookkeeping when the penalty had already been
// collected.
type PenaltyWaiver struct {
	ID                    int32     `json:"id"`
	RentalID              int32     `json:"rental_id"`
	OriginalPenaltyCents  int64     `json:"original_penalty_cents"`
	WaivedAmountCents     int64     `json:"waived_amount_cents"`
	RemainingPenaltyCents int64     `json:"remaining_penalty_cents"`
	Reason                string    `json:"reason"`
	AdminID               int32     `json:"admin_id"`
	WaivedAt              time.Time `json:"waived_at"`
	RefundInitiated       bool      `json:"refund_initiated"`
	RefundTransactionID   string    `json:"refund_transaction_id,omitempty"`
	Deleted               bool      `json:"deleted"`
}
