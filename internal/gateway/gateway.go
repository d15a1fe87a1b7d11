package gateway

import (
	"context"

	"car-rental-adjustments/internal/domain"
)

// AuthorizationResult reports the outcome of a payment authorization.
// A transport-level problem comes back as an error; a gateway decline comes
// back as Success=false with the gateway's reason in Message.
type AuthorizationResult struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

type RefundResult struct {
	Success  bool   `json:"success"`
	RefundID string `json:"refund_id"`
	Message  string `json:"message"`
}

// PaymentRecord is the gateway's view of a captured payment.
type PaymentRecord struct {
	TransactionID string `json:"transaction_id"`
	RentalID      int32  `json:"rental_id"`
	AmountCents   int64  `json:"amount_cents"`
	Currency      string `json:"currency"`
}

// PaymentGateway is the engine's narrow window onto the external payment
// capability. Retry, backoff, idempotency keys and settlement all live on
// the other side of this interface; the engine never retries a call itself.
type PaymentGateway interface {
	Authorize(ctx context.Context, amountCents int64, currency, reference string) (*AuthorizationResult, error)
	Refund(ctx context.Context, transactionID string, amountCents int64) (*RefundResult, error)
	// GetPaymentForRental returns nil without error when the rental has no
	// captured payment.
	GetPaymentForRental(ctx context.Context, rentalID int32) (*PaymentRecord, error)
}

// FleetService flags a vehicle out of the rentable pool pending repair.
// The call is idempotent on the remote side.
type FleetService interface {
	FlagForMaintenance(ctx context.Context, vehicleID int32) error
}

// PaymentFailure converts a gateway outcome into the engine's payment
// failure taxonomy, preserving the gateway's reason.
func PaymentFailure(err error, message, operation string) *domain.Error {
	if message == "" {
		message = "gateway unavailable"
	}
	return domain.NewPaymentFailureError(err, "payment %s failed: %s", operation, message)
}
