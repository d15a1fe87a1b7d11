package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/logger"
	"car-rental-adjustments/internal/repository"
	"car-rental-adjustments/internal/storage"

	"github.com/google/uuid"
)

type damageReporter struct {
	reportRepo repository.DamageReportRepository
	rentalRepo repository.RentalRepository
	store      storage.Interface
	validator  storage.Validator
	urlExpiry  time.Duration
	log        *slog.Logger
}

func NewDamageReporter(
	reportRepo repository.DamageReportRepository,
	rentalRepo repository.RentalRepository,
	store storage.Interface,
	validator storage.Validator,
	urlExpiry time.Duration,
) DamageReporter {
	return &damageReporter{
		reportRepo: reportRepo,
		rentalRepo: rentalRepo,
		store:      store,
		validator:  validator,
		urlExpiry:  urlExpiry,
		log:        logger.WithService("damage-reporter"),
	}
}

func (s *damageReporter) CreateDamageReport(ctx context.Context, actor domain.Actor, rentalID int32, input ReportInput) (*domain.DamageReport, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, domain.NewValidationError("damage description is required")
	}
	rental, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && actor.UserID != rental.CustomerID {
		return nil, domain.NewAuthorizationError("only staff or the rental's customer can report damage")
	}

	severity := domain.DamageSeverityMinor
	if input.Severity != nil {
		severity = *input.Severity
	}

	rep := &domain.DamageReport{
		RentalID:      rental.ID,
		VehicleID:     rental.VehicleID,
		VehicleBrand:  rental.VehicleBrand,
		VehicleModel:  rental.VehicleModel,
		VehiclePlate:  rental.VehiclePlate,
		CustomerName:  rental.CustomerName,
		CustomerEmail: rental.CustomerEmail,

		Description:              input.Description,
		Location:                 input.Location,
		Category:                 input.Category,
		Severity:                 severity,
		Status:                   domain.DamageStatusReported,
		InsuranceCoverage:        input.InsuranceCoverage,
		InsuranceDeductibleCents: input.InsuranceDeductibleCents,
		PaymentStatus:            domain.PaymentStatusNone,
	}
	if err := s.reportRepo.Create(ctx, rep); err != nil {
		return nil, err
	}

	if err := s.rentalRepo.IncrementDamageReportCount(ctx, rental.ID); err != nil {
		// The counter is derived data; a miss is logged, not surfaced.
		s.log.Warn("failed to increment damage report count", "rental_id", rental.ID, "error", err)
	}
	return rep, nil
}

func (s *damageReporter) GetDamageReport(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error) {
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReportAccess(ctx, actor, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *damageReporter) AddPhoto(ctx context.Context, actor domain.Actor, reportID int32, contentType string, sizeBytes int64, r io.Reader) (*domain.DamagePhoto, error) {
	if err := s.validator.ValidateType(contentType); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateSize(sizeBytes); err != nil {
		return nil, err
	}
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReportAccess(ctx, actor, rep); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("damage/%d/%s%s", rep.ID, uuid.NewString(), extensionFor(contentType))
	written, err := s.store.Upload(ctx, key, io.LimitReader(r, sizeBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to store damage photo: %w", err)
	}

	photo := &domain.DamagePhoto{
		ReportID:    rep.ID,
		StorageKey:  key,
		UploadedBy:  actor.UserID,
		SizeBytes:   written,
		ContentType: contentType,
	}
	if err := s.reportRepo.CreatePhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

func (s *damageReporter) ListPhotos(ctx context.Context, actor domain.Actor, reportID int32) ([]PhotoView, error) {
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeReportAccess(ctx, actor, rep); err != nil {
		return nil, err
	}
	photos, err := s.reportRepo.ListPhotos(ctx, reportID)
	if err != nil {
		return nil, err
	}
	views := make([]PhotoView, 0, len(photos))
	for _, p := range photos {
		url, err := s.store.SecureURL(ctx, p.StorageKey, s.urlExpiry)
		if err != nil {
			return nil, err
		}
		views = append(views, PhotoView{Photo: p, URL: url})
	}
	return views, nil
}

func (s *damageReporter) DeletePhoto(ctx context.Context, actor domain.Actor, photoID int32) error {
	photo, err := s.reportRepo.GetPhotoByID(ctx, photoID)
	if err != nil {
		return err
	}
	if !actor.Admin && actor.UserID != photo.UploadedBy {
		return domain.NewAuthorizationError("only staff or the uploader can delete a damage photo")
	}
	if err := s.reportRepo.SoftDeletePhoto(ctx, photoID); err != nil {
		return err
	}
	// File removal is delegated cleanup; the soft delete is authoritative.
	if err := s.store.Delete(ctx, photo.StorageKey); err != nil {
		s.log.Warn("failed to delete photo file", "key", photo.StorageKey, "error", err)
	}
	return nil
}

func (s *damageReporter) authorizeReportAccess(ctx context.Context, actor domain.Actor, rep *domain.DamageReport) error {
	if actor.Admin {
		return nil
	}
	rental, err := s.rentalRepo.GetByID(ctx, rep.RentalID)
	if err != nil {
		return err
	}
	if actor.UserID != rental.CustomerID {
		return domain.NewAuthorizationError("only staff or the rental's customer can access a damage report")
	}
	return nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/heic":
		return ".heic"
	default:
		return ""
	}
}
