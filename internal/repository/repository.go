package repository

import (
	"context"
	"time"

	"car-rental-adjustments/internal/domain"
)

// Repositories return domain.Error values for missing rows (NOT_FOUND) and
// failed conditional updates (STATE_CONFLICT) so services never have to
// translate driver errors.

type RentalRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Rental, error)

	// UpdateLateReturn copies a penalty calculation onto the rental. The
	// update only applies while the rental still carries no adjustment;
	// zero rows affected surfaces as a state-conflict error, which closes
	// the race between two concurrent return recordings.
	UpdateLateReturn(ctx context.Context, rentalID int32, status domain.LateReturnStatus, lateHours int32, penaltyCents int64) error

	// UpdatePenaltyAmount is a compare-and-set on the stored penalty. It
	// fails with a state-conflict error when the stored amount no longer
	// matches expectedCents.
	UpdatePenaltyAmount(ctx context.Context, rentalID int32, expectedCents, newCents int64) error

	IncrementDamageReportCount(ctx context.Context, rentalID int32) error

	// ListPastDue returns rentals whose contracted end-of-day return has
	// passed and that carry no late-return adjustment yet.
	ListPastDue(ctx context.Context, asOf time.Time) ([]domain.Rental, error)
}

type DamageReportRepository interface {
	Create(ctx context.Context, report *domain.DamageReport) error
	GetByID(ctx context.Context, id int32) (*domain.DamageReport, error)

	// UpdateWithStatus persists the report's mutable fields together with
	// its status in one conditional update guarded on expectedStatus.
	// Zero rows affected surfaces as a state-conflict error; this closes
	// the check-then-act race between concurrent lifecycle calls.
	UpdateWithStatus(ctx context.Context, report *domain.DamageReport, expectedStatus domain.DamageStatus) error

	// RecordPaymentFailure stores the gateway's failure outcome without
	// touching the report status, keeping the charge retriable.
	RecordPaymentFailure(ctx context.Context, reportID int32, reason string) error

	CreatePhoto(ctx context.Context, photo *domain.DamagePhoto) error
	GetPhotoByID(ctx context.Context, photoID int32) (*domain.DamagePhoto, error)
	ListPhotos(ctx context.Context, reportID int32) ([]domain.DamagePhoto, error)
	SoftDeletePhoto(ctx context.Context, photoID int32) error
}

type PenaltyWaiverRepository interface {
	Create(ctx context.Context, waiver *domain.PenaltyWaiver) error
	ListByRental(ctx context.Context, rentalID int32) ([]domain.PenaltyWaiver, error)
}
