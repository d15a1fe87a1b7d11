package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/events"
	"car-rental-adjustments/internal/gateway"
	"car-rental-adjustments/internal/logger"
	"car-rental-adjustments/internal/repository"

	"github.com/google/uuid"
)

type damageCharger struct {
	reportRepo repository.DamageReportRepository
	rentalRepo repository.RentalRepository
	payments   gateway.PaymentGateway
	publisher  events.Publisher
	log        *slog.Logger
}

func NewDamageCharger(
	reportRepo repository.DamageReportRepository,
	rentalRepo repository.RentalRepository,
	payments gateway.PaymentGateway,
	publisher events.Publisher,
) DamageCharger {
	return &damageCharger{
		reportRepo: reportRepo,
		rentalRepo: rentalRepo,
		payments:   payments,
		publisher:  publisher,
		log:        logger.WithService("damage-charger"),
	}
}

func (s *damageCharger) ChargeDamage(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error) {
	if !actor.Admin {
		return nil, domain.NewAuthorizationError("administrative privilege is required to charge damage")
	}
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextDamageStatus(rep.Status, domain.DamageOpCharge)
	if err != nil {
		return nil, err
	}
	if rep.CustomerLiabilityCents <= 0 {
		return nil, domain.NewValidationError("customer liability must be positive")
	}

	rental, err := s.rentalRepo.GetByID(ctx, rep.RentalID)
	if err != nil {
		return nil, err
	}

	reference := fmt.Sprintf("damage-%d:rental-%d:customer-%d:%s", rep.ID, rental.ID, rental.CustomerID, uuid.NewString())
	res, err := s.payments.Authorize(ctx, rep.CustomerLiabilityCents, rental.Currency, reference)
	if err != nil || !res.Success {
		reason := "gateway unavailable"
		if err != nil {
			reason = err.Error()
		} else if res.Message != "" {
			reason = res.Message
		}
		// The status is left at ASSESSED so the charge can be retried.
		if recordErr := s.reportRepo.RecordPaymentFailure(ctx, rep.ID, reason); recordErr != nil {
			s.log.Error("failed to record payment failure", "report_id", rep.ID, "error", recordErr)
		}
		return nil, gateway.PaymentFailure(err, reason, "authorization")
	}

	expected := rep.Status
	rep.TransactionID = res.TransactionID
	rep.PaymentStatus = domain.PaymentStatusCaptured
	rep.PaymentFailureReason = ""
	rep.Status = next
	if err := s.reportRepo.UpdateWithStatus(ctx, rep, expected); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Type:          domain.EventDamageCharged,
		ReportID:      rep.ID,
		RentalID:      rep.RentalID,
		AmountCents:   rep.CustomerLiabilityCents,
		Currency:      rental.Currency,
		CustomerName:  rep.CustomerName,
		CustomerEmail: rep.CustomerEmail,
		OccurredAt:    time.Now(),
	})
	return rep, nil
}

func (s *damageCharger) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed", "type", event.Type, "report_id", event.ReportID, "error", err)
	}
}
