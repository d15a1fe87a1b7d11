package service

import (
	"fmt"
	"math"
	"time"

	"car-rental-adjustments/internal/config"
	"car-rental-adjustments/internal/domain"
)

const hourlyTierMaxHours = 6

type penaltyCalculator struct {
	cfg config.PenaltyConfig
}

func NewPenaltyCalculator(cfg config.PenaltyConfig) PenaltyCalculator {
	return &penaltyCalculator{cfg: cfg}
}

func (c *penaltyCalculator) Calculate(endDate string, dailyRateCents int64, returnTime time.Time) (*domain.PenaltyResult, error) {
	if dailyRateCents <= 0 {
		return nil, domain.NewValidationError("daily rate must be positive, got %d", dailyRateCents)
	}
	due, err := time.ParseInLocation("2006-01-02", endDate, returnTime.Location())
	if err != nil {
		return nil, domain.NewValidationError("invalid end date %q, expected yyyy-mm-dd", endDate)
	}
	// The contracted return is due at the end of the end date.
	endOfDay := time.Date(due.Year(), due.Month(), due.Day(), 23, 59, 59, 0, returnTime.Location())

	result := &domain.PenaltyResult{
		DailyRateCents: dailyRateCents,
		Status:         domain.LateReturnStatusNone,
	}

	minutesLate := int64(math.Ceil(returnTime.Sub(endOfDay).Minutes()))
	if minutesLate <= int64(c.cfg.GracePeriodMinutes) {
		result.Status = domain.LateReturnStatusGracePeriod
		result.Breakdown = append(result.Breakdown,
			fmt.Sprintf("returned %d minutes past due, within the %d-minute grace period: no penalty", max64(minutesLate, 0), c.cfg.GracePeriodMinutes))
		return result, nil
	}

	lateHours := int32(math.Ceil(float64(minutesLate) / 60.0))
	result.LateHours = lateHours
	result.Breakdown = append(result.Breakdown,
		fmt.Sprintf("%d minutes past due rounds up to %d late hours", minutesLate, lateHours))

	var penalty int64
	if lateHours <= hourlyTierMaxHours {
		penalty, err = c.hourlyPenalty(dailyRateCents, lateHours)
		if err != nil {
			return nil, err
		}
		result.Status = domain.LateReturnStatusLate
		result.Breakdown = append(result.Breakdown,
			fmt.Sprintf("hourly tier: %d cents x %.2f x %d hours = %d cents", dailyRateCents, c.cfg.HourlyRate, lateHours, penalty))
	} else {
		// Money is computed on ceil(hours/24) days while the severity
		// threshold stays on raw hours. The dual accounting is observed
		// production behavior and is kept as-is.
		lateDays := (lateHours + 23) / 24
		result.LateDays = lateDays
		penalty, err = c.dailyPenalty(dailyRateCents, lateDays)
		if err != nil {
			return nil, err
		}
		result.Status = domain.LateReturnStatusLate
		if lateHours >= int32(c.cfg.SeverelyLateThresholdHours) {
			result.Status = domain.LateReturnStatusSeverelyLate
		}
		result.Breakdown = append(result.Breakdown,
			fmt.Sprintf("daily tier: %d late hours rounds up to %d late days; %d cents x %.2f x %d days = %d cents",
				lateHours, lateDays, dailyRateCents, c.cfg.DailyPenaltyRate, lateDays, penalty))
	}

	capCents := int64(math.Round(float64(dailyRateCents) * c.cfg.PenaltyCapMultiplier))
	if penalty > capCents {
		penalty = capCents
		result.CappedAtMax = true
		result.Breakdown = append(result.Breakdown, fmt.Sprintf("capped at 5x daily rate (%d cents)", capCents))
	}
	result.PenaltyAmountCents = penalty
	return result, nil
}

// hourlyPenalty is the guarded sub-calculation for the 1-6 hour tier.
// Calling it outside that range is a programming error.
func (c *penaltyCalculator) hourlyPenalty(dailyRateCents int64, lateHours int32) (int64, error) {
	if lateHours < 1 || lateHours > hourlyTierMaxHours {
		return 0, domain.NewValidationError("hourly penalty tier requires 1-%d late hours, got %d", hourlyTierMaxHours, lateHours)
	}
	return int64(math.Round(float64(dailyRateCents) * c.cfg.HourlyRate * float64(lateHours))), nil
}

// dailyPenalty is the guarded sub-calculation for the 7-hours-and-up tier.
func (c *penaltyCalculator) dailyPenalty(dailyRateCents int64, lateDays int32) (int64, error) {
	if lateDays < 1 {
		return 0, domain.NewValidationError("daily penalty tier requires at least 1 late day, got %d", lateDays)
	}
	return int64(math.Round(float64(dailyRateCents) * c.cfg.DailyPenaltyRate * float64(lateDays))), nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
