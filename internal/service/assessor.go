package service

import (
	"context"
	"log/slog"
	"time"

	"car-rental-adjustments/internal/config"
	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/events"
	"car-rental-adjustments/internal/gateway"
	"car-rental-adjustments/internal/logger"
	"car-rental-adjustments/internal/repository"
)

type damageAssessor struct {
	reportRepo repository.DamageReportRepository
	fleet      gateway.FleetService
	publisher  events.Publisher
	severity   config.SeverityConfig
	log        *slog.Logger
}

func NewDamageAssessor(
	reportRepo repository.DamageReportRepository,
	fleet gateway.FleetService,
	publisher events.Publisher,
	severity config.SeverityConfig,
) DamageAssessor {
	return &damageAssessor{
		reportRepo: reportRepo,
		fleet:      fleet,
		publisher:  publisher,
		severity:   severity,
		log:        logger.WithService("damage-assessor"),
	}
}

// CalculateCustomerLiability applies the insurance deductible rule: no cost
// means no liability, insured customers owe at most the deductible,
// uninsured customers owe the full repair cost.
func CalculateCustomerLiability(repairCostCents *int64, insured bool, deductibleCents int64) int64 {
	if repairCostCents == nil || *repairCostCents <= 0 {
		return 0
	}
	if insured {
		if *repairCostCents < deductibleCents {
			return *repairCostCents
		}
		return deductibleCents
	}
	return *repairCostCents
}

// ClassifySeverity infers severity from the repair cost against the
// configured boundaries. A missing cost classifies as MINOR.
func ClassifySeverity(cfg config.SeverityConfig, repairCostCents *int64) domain.DamageSeverity {
	if repairCostCents == nil {
		return domain.DamageSeverityMinor
	}
	switch cost := *repairCostCents; {
	case cost <= cfg.MinorMaxCents:
		return domain.DamageSeverityMinor
	case cost <= cfg.ModerateMaxCents:
		return domain.DamageSeverityModerate
	case cost <= cfg.MajorMaxCents:
		return domain.DamageSeverityMajor
	default:
		return domain.DamageSeverityTotalLoss
	}
}

func (s *damageAssessor) StartAssessment(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error) {
	return s.transition(ctx, actor, reportID, domain.DamageOpStartAssessment)
}

func (s *damageAssessor) ReopenAssessment(ctx context.Context, actor domain.Actor, reportID int32) (*domain.DamageReport, error) {
	return s.transition(ctx, actor, reportID, domain.DamageOpReopen)
}

// transition performs a pure status move with no field changes.
func (s *damageAssessor) transition(ctx context.Context, actor domain.Actor, reportID int32, op domain.DamageOperation) (*domain.DamageReport, error) {
	if !actor.Admin {
		return nil, domain.NewAuthorizationError("administrative privilege is required to manage assessments")
	}
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextDamageStatus(rep.Status, op)
	if err != nil {
		return nil, err
	}
	expected := rep.Status
	rep.Status = next
	if err := s.reportRepo.UpdateWithStatus(ctx, rep, expected); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *damageAssessor) AssessDamage(ctx context.Context, actor domain.Actor, reportID int32, input AssessmentInput) (*domain.DamageReport, error) {
	if !actor.Admin {
		return nil, domain.NewAuthorizationError("administrative privilege is required to assess damage")
	}
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextDamageStatus(rep.Status, domain.DamageOpAssess)
	if err != nil {
		return nil, err
	}

	expected := rep.Status
	s.applyAssessment(rep, input)
	rep.Status = next

	// Severe damage takes the vehicle out of the rentable pool before the
	// assessment is committed; the remote call is idempotent, so a retry
	// after a conflict repeats it harmlessly.
	if rep.Severity == domain.DamageSeverityMajor || rep.Severity == domain.DamageSeverityTotalLoss {
		if err := s.fleet.FlagForMaintenance(ctx, rep.VehicleID); err != nil {
			return nil, err
		}
	}

	if err := s.reportRepo.UpdateWithStatus(ctx, rep, expected); err != nil {
		return nil, err
	}

	s.publish(ctx, domain.Event{
		Type:          domain.EventDamageAssessed,
		ReportID:      rep.ID,
		RentalID:      rep.RentalID,
		AmountCents:   rep.CustomerLiabilityCents,
		CustomerName:  rep.CustomerName,
		CustomerEmail: rep.CustomerEmail,
		OccurredAt:    time.Now(),
	})
	return rep, nil
}

func (s *damageAssessor) UpdateAssessment(ctx context.Context, actor domain.Actor, reportID int32, input AssessmentInput) (*domain.DamageReport, error) {
	if !actor.Admin {
		return nil, domain.NewAuthorizationError("administrative privilege is required to assess damage")
	}
	rep, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if rep.Status != domain.DamageStatusUnderAssessment {
		return nil, domain.NewStateConflictError("assessment can only be updated while a report is in status %s, current status is %s",
			domain.DamageStatusUnderAssessment, rep.Status)
	}

	s.applyAssessment(rep, input)

	if rep.Severity == domain.DamageSeverityMajor || rep.Severity == domain.DamageSeverityTotalLoss {
		if err := s.fleet.FlagForMaintenance(ctx, rep.VehicleID); err != nil {
			return nil, err
		}
	}

	// Status stays UNDER_ASSESSMENT; the guard still closes concurrent moves.
	if err := s.reportRepo.UpdateWithStatus(ctx, rep, domain.DamageStatusUnderAssessment); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *damageAssessor) applyAssessment(rep *domain.DamageReport, input AssessmentInput) {
	rep.RepairCostEstimateCents = input.RepairCostEstimateCents
	rep.InsuranceCoverage = input.InsuranceCoverage
	rep.InsuranceDeductibleCents = input.InsuranceDeductibleCents
	if input.Category != "" {
		rep.Category = input.Category
	}
	if input.Severity != nil {
		rep.Severity = *input.Severity
	} else {
		rep.Severity = ClassifySeverity(s.severity, input.RepairCostEstimateCents)
	}
	rep.CustomerLiabilityCents = CalculateCustomerLiability(input.RepairCostEstimateCents, input.InsuranceCoverage, input.InsuranceDeductibleCents)
}

func (s *damageAssessor) publish(ctx context.Context, event domain.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warn("event publish failed", "type", event.Type, "report_id", event.ReportID, "error", err)
	}
}
