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

type damageDisputeResolver struct {
	reportRepo repository.DamageReportRepository
	rentalRepo repository.RentalRepository
	payments   gateway.PaymentGateway
	publisher  events.Publisher
	log        *slog.Logger
}

func NewDamageDisputeResolver(
	reportRepo repository.DamageReportRepository,
	rentalRepo repository.RentalRepository,
	payments gateway.PaymentGateway,
	publisher events.Publisher,
) DamageDisputeResolver {
	return &damageDisputeResolver{
		reportRepo: reportRepo,
		rentalRepo: rentalRepo,
		payments:   payments,
		publisher:  publisher,
		log:        logger.WithService("damage-dispute-resolver"),
	}
}

func (s *damageDisputeResolver) CreateDispute(ctx context.Context, actor domain.Actor, reportID int32, reason, comments string) (*domain.DamageReport, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, domain.NewValidationError("dispute reason is required")
	}
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	// Ownership is checked against the rental's current customer, not the
	// report snapshot.
	rental, err := s.rentalRepo.GetByID(ctx, rep.RentalID)
	if err != nil {
		return nil, err
	}
	if actor.UserID != rental.CustomerID {
		return nil, domain.NewAuthorizationError("only the rental's customer can dispute a damage charge")
	}
	next, err := domain.NextDamageStatus(rep.Status, domain.DamageOpDispute)
	if err != nil {
		return nil, err
	}

	expected := rep.Status
	now := time.Now()
	rep.DisputeReason = reason
	rep.DisputeComments = comments
	rep.DisputedBy = &actor.UserID
	rep.DisputedAt = &now
	rep.Status = next
	if err := s.reportRepo.UpdateWithStatus(ctx, rep, expected); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Type:          domain.EventDamageDisputed,
		ReportID:      rep.ID,
		RentalID:      rep.RentalID,
		AmountCents:   rep.CustomerLiabilityCents,
		CustomerName:  rep.CustomerName,
		CustomerEmail: rep.CustomerEmail,
		OccurredAt:    now,
	})
	return rep, nil
}

func (s *damageDisputeResolver) ResolveDispute(ctx context.Context, actor domain.Actor, reportID int32, adjustedRepairCostCents, adjustedLiabilityCents int64, notes string) (*domain.DamageReport, error) {
	if !actor.Admin {
		return nil, domain.NewAuthorizationError("administrative privilege is required to resolve a dispute")
	}
	if adjustedRepairCostCents < 0 {
		return nil, domain.NewValidationError("adjusted repair cost cannot be negative")
	}
	if adjustedLiabilityCents < 0 {
		return nil, domain.NewValidationError("adjusted customer liability cannot be negative")
	}
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextDamageStatus(rep.Status, domain.DamageOpResolve)
	if err != nil {
		return nil, err
	}

	originalLiability := rep.CustomerLiabilityCents
	if adjustedLiabilityCents > originalLiability {
		return nil, domain.NewValidationError("adjusted liability cannot exceed the charged amount of %d cents", originalLiability)
	}

	// Refund the liability delta before anything is persisted: the report
	// must not advance to RESOLVED while money is still owed back.
	var refundCents int64
	if adjustedLiabilityCents < originalLiability && rep.TransactionID != "" {
		refundCents = originalLiability - adjustedLiabilityCents
		res, err := s.payments.Refund(ctx, rep.TransactionID, refundCents)
		if err != nil || !res.Success {
			message := ""
			if err == nil {
				message = res.Message
			}
			return nil, gateway.PaymentFailure(err, message, "refund")
		}
		rep.PaymentStatus = domain.PaymentStatusRefunded
	}

	expected := rep.Status
	now := time.Now()
	rep.RepairCostEstimateCents = &adjustedRepairCostCents
	rep.CustomerLiabilityCents = adjustedLiabilityCents
	rep.ResolutionNotes = notes
	rep.ResolvedBy = &actor.UserID
	rep.ResolvedAt = &now
	rep.Status = next
	if err := s.reportRepo.UpdateWithStatus(ctx, rep, expected); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Type:          domain.EventDamageResolved,
		ReportID:      rep.ID,
		RentalID:      rep.RentalID,
		AmountCents:   refundCents,
		CustomerName:  rep.CustomerName,
		CustomerEmail: rep.CustomerEmail,
		OccurredAt:    now,
	})
	return rep, nil
}

func (s *damageDisputeResolver) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed", "type", event.Type, "report_id", event.ReportID, "error", err)
	}
}
