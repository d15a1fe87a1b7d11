package service_test

import (
	"context"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/gateway"

	"github.com/stretchr/testify/mock"
)

type MockRentalRepo struct {
	mock.Mock
}

func (m *MockRentalRepo) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Rental), args.Error(1)
}

func (m *MockRentalRepo) UpdateLateReturn(ctx context.Context, rentalID int32, status domain.LateReturnStatus, lateHours int32, penaltyCents int64) error {
	args := m.Called(ctx, rentalID, status, lateHours, penaltyCents)
	return args.Error(0)
}

func (m *MockRentalRepo) UpdatePenaltyAmount(ctx context.Context, rentalID int32, expectedCents, newCents int64) error {
	args := m.Called(ctx, rentalID, expectedCents, newCents)
	return args.Error(0)
}

func (m *MockRentalRepo) IncrementDamageReportCount(ctx context.Context, rentalID int32) error {
	args := m.Called(ctx, rentalID)
	return args.Error(0)
}

func (m *MockRentalRepo) ListPastDue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rental), args.Error(1)
}

type MockDamageReportRepo struct {
	mock.Mock
}

func (m *MockDamageReportRepo) Create(ctx context.Context, report *domain.DamageReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockDamageReportRepo) GetByID(ctx context.Context, id int32) (*domain.DamageReport, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DamageReport), args.Error(1)
}

func (m *MockDamageReportRepo) UpdateWithStatus(ctx context.Context, report *domain.DamageReport, expectedStatus domain.DamageStatus) error {
	args := m.Called(ctx, report, expectedStatus)
	return args.Error(0)
}

func (m *MockDamageReportRepo) RecordPaymentFailure(ctx context.Context, reportID int32, reason string) error {
	args := m.Called(ctx, reportID, reason)
	return args.Error(0)
}

func (m *MockDamageReportRepo) CreatePhoto(ctx context.Context, photo *domain.DamagePhoto) error {
	args := m.Called(ctx, photo)
	return args.Error(0)
}

func (m *MockDamageReportRepo) GetPhotoByID(ctx context.Context, photoID int32) (*domain.DamagePhoto, error) {
	args := m.Called(ctx, photoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DamagePhoto), args.Error(1)
}

func (m *MockDamageReportRepo) ListPhotos(ctx context.Context, reportID int32) ([]domain.DamagePhoto, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DamagePhoto), args.Error(1)
}

func (m *MockDamageReportRepo) SoftDeletePhoto(ctx context.Context, photoID int32) error {
	args := m.Called(ctx, photoID)
	return args.Error(0)
}

type MockWaiverRepo struct {
	mock.Mock
}

func (m *MockWaiverRepo) Create(ctx context.Context, waiver *domain.PenaltyWaiver) error {
	args := m.Called(ctx, waiver)
	return args.Error(0)
}

func (m *MockWaiverRepo) ListByRental(ctx context.Context, rentalID int32) ([]domain.PenaltyWaiver, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PenaltyWaiver), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Authorize(ctx context.Context, amountCents int64, currency, reference string) (*gateway.AuthorizationResult, error) {
	args := m.Called(ctx, amountCents, currency, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.AuthorizationResult), args.Error(1)
}

func (m *MockPaymentGateway) Refund(ctx context.Context, transactionID string, amountCents int64) (*gateway.RefundResult, error) {
	args := m.Called(ctx, transactionID, amountCents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RefundResult), args.Error(1)
}

func (m *MockPaymentGateway) GetPaymentForRental(ctx context.Context, rentalID int32) (*gateway.PaymentRecord, error) {
	args := m.Called(ctx, rentalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.PaymentRecord), args.Error(1)
}

type MockFleetService struct {
	mock.Mock
}

func (m *MockFleetService) FlagForMaintenance(ctx context.Context, vehicleID int32) error {
	args := m.Called(ctx, vehicleID)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// relaxedPublisher accepts every event; for tests that do not care about
// notifications.
func relaxedPublisher() *MockPublisher {
	p := new(MockPublisher)
	p.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return p
}
