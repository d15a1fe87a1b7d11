package service

import (
	"context"
	"io"
	"time"

	"car-rental-adjustments/internal/domain"
)

// PenaltyCalculator computes the late-return penalty for one rental. Pure:
// no I/O, no side effects. The sweep job and the return endpoint both feed
// it and persist the result themselves.
type PenaltyCalculator interface {
	// Calculate takes the contracted end date (yyyy-mm-dd, due end-of-day),
	// the daily rate, and the actual return time.
	Calculate(endDate string, dailyRateCents int64, returnTime time.Time) (*domain.PenaltyResult, error)
}

// AssessmentInput carries the admin-supplied facts of a damage assessment.
// A nil Severity asks the assessor to infer it from the repair cost.
type AssessmentInput struct {
	Severity                 *domain.DamageSeverity
	Category                 string
	RepairCostEstimateCents  *int64
	InsuranceCoverage        bool
	InsuranceDeductibleCents int64
}

type DamageAssessor interface {
	StartAssessment(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error)
	AssessDamage(ctx context.Context, actor domain.Actor, reportID int32, input AssessmentInput) (*domain.DamageReport, error)
	// UpdateAssessment re-assesses a report that is still UNDER_ASSESSMENT
	// without advancing its status.
	UpdateAssessment(ctx context.Context, actor domain.Actor, reportID int32, input AssessmentInput) (*domain.DamageReport, error)
	ReopenAssessment(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error)
}

type DamageCharger interface {
	ChargeDamage(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error)
}

type DamageDisputeResolver interface {
	CreateDispute(ctx context.Context, actor domain.Actor, reportID int32, reason, comments string) (*domain.DamageReport, error)
	ResolveDispute(ctx context.Context, actor domain.Actor, reportID int32, adjustedRepairCostCents, adjustedLiabilityCents int64, notes string) (*domain.DamageReport, error)
}

type PenaltyWaiverCoordinator interface {
	WaiveFullPenalty(ctx context.Context, actor domain.Actor, rentalID int32, reason string) (*domain.PenaltyWaiver, error)
	WaivePartialPenalty(ctx context.Context, actor domain.Actor, rentalID int32, amountCents int64, reason string) (*domain.PenaltyWaiver, error)
	GetPenaltyHistory(ctx context.Context, rentalID int32) ([]domain.PenaltyWaiver, error)
}

// ReportInput carries the facts of a freshly filed damage report.
type ReportInput struct {
	Description              string
	Location                 string
	Category                 string
	Severity                 *domain.DamageSeverity
	InsuranceCoverage        bool
	InsuranceDeductibleCents int64
}

// PhotoView pairs a photo row with a signed download URL.
type PhotoView struct {
	Photo domain.DamagePhoto `json:"photo"`
	URL   string             `json:"url"`
}

type DamageReporter interface {
	CreateDamageReport(ctx context.Context, actor domain.Actor, rentalID int32, input ReportInput) (*domain.DamageReport, error)
	GetDamageReport(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error)
	AddPhoto(ctx context.Context, actor domain.Actor, reportID int32, contentType string, sizeBytes int64, r io.Reader) (*domain.DamagePhoto, error)
	ListPhotos(ctx context.Context, actor domain.Actor, reportID int32) ([]PhotoView, error)
	DeletePhoto(ctx context.Context, actor domain.Actor, photoID int32) error
}

// EmailService sends customer-facing notification mail. Failures are logged
// by callers and never surfaced.
type EmailService interface {
	Send(ctx context.Context, toEmail, toName, subject, plainText, htmlContent string) error
}
