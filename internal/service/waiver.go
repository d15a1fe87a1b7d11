package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/events"
	"car-rental-adjustments/internal/gateway"
	"car-rental-adjustments/internal/logger"
	"car-rental-adjustments/internal/repository"
)

type penaltyWaiverCoordinator struct {
	rentalRepo repository.RentalRepository
	waiverRepo repository.PenaltyWaiverRepository
	payments   gateway.PaymentGateway
	publisher  events.Publisher
	log        *slog.Logger
}

func NewPenaltyWaiverCoordinator(
	rentalRepo repository.RentalRepository,
	waiverRepo repository.PenaltyWaiverRepository,
	payments gateway.PaymentGateway,
	publisher events.Publisher,
) PenaltyWaiverCoordinator {
	return &penaltyWaiverCoordinator{
		rentalRepo: rentalRepo,
		waiverRepo: waiverRepo,
		payments:   payments,
		publisher:  publisher,
		log:        logger.WithService("penalty-waiver-coordinator"),
	}
}

func (s *penaltyWaiverCoordinator) WaiveFullPenalty(ctx context.Context, actor domain.Actor, rentalID int32, reason string) (*domain.PenaltyWaiver, error) {
	return s.waive(ctx, actor, rentalID, nil, reason)
}

func (s *penaltyWaiverCoordinator) WaivePartialPenalty(ctx context.Context, actor domain.Actor, rentalID int32, amountCents int64, reason string) (*domain.PenaltyWaiver, error) {
	if amountCents <= 0 {
		return nil, domain.NewValidationError("waiver amount must be positive")
	}
	return s.waive(ctx, actor, rentalID, &amountCents, reason)
}

// waive performs the shared waiver flow. A nil amount means a full waiver of
// whatever penalty is currently stored.
func (s *penaltyWaiverCoordinator) waive(ctx context.Context, actor domain.Actor, rentalID int32, amountCents *int64, reason string) (*domain.PenaltyWaiver, error) {
	if !actor.Admin {
		return nil, domain.NewAuthorizationError("administrative privilege is required to waive a penalty")
	}
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("waiver reason is required")
	}

	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	original := rental.PenaltyAmountCents
	if original <= 0 {
		return nil, domain.NewValidationError("rental has no penalty to waive")
	}

	waived := original
	if amountCents != nil {
		waived = *amountCents
		if waived > original {
			return nil, domain.NewValidationError("waiver amount cannot exceed penalty amount of %d cents", original)
		}
	}
	remaining := original - waived

	// Claim the waiver first: the compare-and-set on the stored penalty is
	// what stops two concurrent waivers from both reaching the refund call.
	if err := s.rentalRepo.UpdatePenaltyAmount(ctx, rentalID, original, remaining); err != nil {
		return nil, err
	}

	waiver := &domain.PenaltyWaiver{
		RentalID:              rentalID,
		OriginalPenaltyCents:  original,
		WaivedAmountCents:     waived,
		RemainingPenaltyCents: remaining,
		Reason:                reason,
		AdminID:               actor.UserID,
		WaivedAt:              time.Now(),
	}

	if rental.PenaltyPaid {
		if err := s.refundWaivedAmount(ctx, waiver); err != nil {
			// Undo the claim so the waiver stays retriable.
			if restoreErr := s.rentalRepo.UpdatePenaltyAmount(ctx, rentalID, remaining, original); restoreErr != nil {
				s.log.Error("failed to restore penalty after refund failure", "rental_id", rentalID, "error", restoreErr)
			}
			return nil, err
		}
	}

	if err := s.waiverRepo.Create(ctx, waiver); err != nil {
		if waiver.RefundInitiated {
			// The refund already went out, so restoring the penalty would
			// charge the customer a second time. Leave the reduced penalty
			// in place and record the refund for manual reconciliation.
			s.log.Error("failed to record waiver after refund",
				"rental_id", rentalID, "refund_transaction_id", waiver.RefundTransactionID,
				"waived_cents", waived, "error", err)
			return nil, err
		}
		if restoreErr := s.rentalRepo.UpdatePenaltyAmount(ctx, rentalID, remaining, original); restoreErr != nil {
			s.log.Error("failed to restore penalty after waiver write failure", "rental_id", rentalID, "error", restoreErr)
		}
		return nil, err
	}

	if err := s.publisher.Publish(ctx, domain.Event{
		Type:          domain.EventPenaltyWaived,
		RentalID:      rentalID,
		AmountCents:   waived,
		Currency:      rental.Currency,
		CustomerName:  rental.CustomerName,
		CustomerEmail: rental.CustomerEmail,
		OccurredAt:    waiver.WaivedAt,
	}); err != nil {
		s.log.Warn("event publish failed", "type", domain.EventPenaltyWaived, "rental_id", rentalID, "error", err)
	}
	return waiver, nil
}

// refundWaivedAmount reverses the already-captured penalty payment. A waiver
// is never recorded without its matching refund.
func (s *penaltyWaiverCoordinator) refundWaivedAmount(ctx context.Context, waiver *domain.PenaltyWaiver) error {
	payment, err := s.payments.GetPaymentForRental(ctx, waiver.RentalID)
	if err != nil {
		return gateway.PaymentFailure(err, "could not look up penalty payment", "lookup")
	}
	if payment == nil {
		return domain.NewNotFoundError("no penalty payment found for rental %d", waiver.RentalID)
	}
	res, err := s.payments.Refund(ctx, payment.TransactionID, waiver.WaivedAmountCents)
	if err != nil || !res.Success {
		message := ""
		if err == nil {
			message = res.Message
		}
		return gateway.PaymentFailure(err, message, "refund")
	}
	waiver.RefundInitiated = true
	waiver.RefundTransactionID = res.RefundID
	return nil
}

func (s *penaltyWaiverCoordinator) GetPenaltyHistory(ctx context.Context, rentalID int32) ([]domain.PenaltyWaiver, error) {
	if _, err := s.rentalRepo.GetByID(ctx, rentalID); err != nil {
		return nil, err
	}
	return s.waiverRepo.ListByRental(ctx, rentalID)
}
