package service_test

import (
	"fmt"
	"testing"
	"time"

	"car-rental-adjustments/internal/config"
	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func penaltyConfig() config.PenaltyConfig {
	return config.PenaltyConfig{
		GracePeriodMinutes:         60,
		HourlyRate:                 0.10,
		DailyPenaltyRate:           1.50,
		SeverelyLateThresholdHours: 24,
		PenaltyCapMultiplier:       5.0,
	}
}

// dueEndOfDay is the contracted return moment for endDate 2026-03-10.
var dueEndOfDay = time.Date(2026, 3, 10, 23, 59, 59, 0, time.UTC)

const (
	testEndDate   = "2026-03-10"
	testDailyRate = int64(10_000)
)

func TestPenaltyCalculator_GracePeriod(t *testing.T) {
	calc := service.NewPenaltyCalculator(penaltyConfig())

	t.Run("exactly at grace boundary", func(t *testing.T) {
		result, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(60*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, domain.LateReturnStatusGracePeriod, result.Status)
		assert.Equal(t, int64(0), result.PenaltyAmountCents)
		assert.Equal(t, int32(0), result.LateHours)
	})

	t.Run("one minute past grace", func(t *testing.T) {
		result, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(61*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, domain.LateReturnStatusLate, result.Status)
		assert.Equal(t, int32(2), result.LateHours, "61 minutes rounds up to 2 hours")
		assert.Equal(t, int64(2_000), result.PenaltyAmountCents)
	})

	t.Run("returned before due", func(t *testing.T) {
		result, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(-3*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, domain.LateReturnStatusGracePeriod, result.Status)
		assert.Equal(t, int64(0), result.PenaltyAmountCents)
	})
}

func TestPenaltyCalculator_TierBoundary(t *testing.T) {
	calc := service.NewPenaltyCalculator(penaltyConfig())

	sixHours, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int32(6), sixHours.LateHours)
	assert.Equal(t, int64(6_000), sixHours.PenaltyAmountCents, "hourly tier: 10% per hour")
	assert.Equal(t, int32(0), sixHours.LateDays)

	sevenHours, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(7*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int32(7), sevenHours.LateHours)
	assert.Equal(t, int32(1), sevenHours.LateDays)
	assert.Equal(t, int64(15_000), sevenHours.PenaltyAmountCents, "daily tier: 150% per day")

	// The jump from 6000 to 15000 across one hour is the priced policy.
	assert.Greater(t, sevenHours.PenaltyAmountCents, sixHours.PenaltyAmountCents*2)
}

func TestPenaltyCalculator_SeverelyLate(t *testing.T) {
	calc := service.NewPenaltyCalculator(penaltyConfig())

	at23, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.LateReturnStatusLate, at23.Status)
	assert.Equal(t, int32(1), at23.LateDays)

	at24, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.LateReturnStatusSeverelyLate, at24.Status)
	assert.Equal(t, int32(24), at24.LateHours)
	assert.Equal(t, int32(1), at24.LateDays, "severity uses raw hours while money uses days")
	assert.Equal(t, at23.PenaltyAmountCents, at24.PenaltyAmountCents)
}

func TestPenaltyCalculator_Cap(t *testing.T) {
	calc := service.NewPenaltyCalculator(penaltyConfig())

	result, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(5*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, result.CappedAtMax)
	assert.Equal(t, int64(50_000), result.PenaltyAmountCents)
	assert.Contains(t, result.Breakdown[len(result.Breakdown)-1], "capped at 5x daily rate")
}

func TestPenaltyCalculator_CapHolds(t *testing.T) {
	calc := service.NewPenaltyCalculator(penaltyConfig())
	capCents := int64(50_000)

	for hours := 1; hours <= 1000; hours += 7 {
		t.Run(fmt.Sprintf("%dh", hours), func(t *testing.T) {
			result, err := calc.Calculate(testEndDate, testDailyRate, dueEndOfDay.Add(time.Duration(hours)*time.Hour))
			require.NoError(t, err)
			assert.LessOrEqual(t, result.PenaltyAmountCents, capCents)
			assert.GreaterOrEqual(t, result.PenaltyAmountCents, int64(0))
		})
	}
}

func TestPenaltyCalculator_Validation(t *testing.T) {
	calc := service.NewPenaltyCalculator(penaltyConfig())

	_, err := calc.Calculate(testEndDate, 0, dueEndOfDay)
	assert.True(t, domain.IsKind(err, domain.ErrKindValidation))

	_, err = calc.Calculate("03/10/2026", testDailyRate, dueEndOfDay)
	assert.True(t, domain.IsKind(err, domain.ErrKindValidation))
}
