package service

import (
	"context"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/repository"
)

// RentalReturnProcessor prices and records the late-return adjustment when a
// vehicle comes back. The nightly sweep handles rentals that never came back;
// this path handles the counter at the rental desk.
type RentalReturnProcessor interface {
	ProcessReturn(ctx context.Context, actor domain.Actor, rentalID int32, returnTime time.Time) (*domain.PenaltyResult, error)
}

type rentalReturnProcessor struct {
	rentalRepo repository.RentalRepository
	calculator PenaltyCalculator
}

func NewRentalReturnProcessor(rentalRepo repository.RentalRepository, calculator PenaltyCalculator) RentalReturnProcessor {
	return &rentalReturnProcessor{rentalRepo: rentalRepo, calculator: calculator}
}

func (s *rentalReturnProcessor) ProcessReturn(ctx context.Context, actor domain.Actor, rentalID int32, returnTime time.Time) (*domain.PenaltyResult, error) {
	if !actor.Admin {
		return nil, domain.NewAuthorizationError("administrative privilege is required to record a return")
	}
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	// Early check only; the conditional update below is the authority when
	// two recordings race.
	if rental.LateReturnStatus != domain.LateReturnStatusNone {
		return nil, domain.NewStateConflictError("rental %d already carries a late-return adjustment (%s)", rentalID, rental.LateReturnStatus)
	}

	result, err := s.calculator.Calculate(rental.EndDate, rental.DailyRateCents, returnTime)
	if err != nil {
		return nil, err
	}
	if err := s.rentalRepo.UpdateLateReturn(ctx, rentalID, result.Status, result.LateHours, result.PenaltyAmountCents); err != nil {
		return nil, err
	}
	return result, nil
}
