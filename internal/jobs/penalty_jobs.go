package jobs

import (
	"context"
	"time"

	"car-rental-adjustments/internal/logger"
)

// ApplyLateReturnPenalties sweeps rentals whose contracted return has passed
// without any late-return adjustment and stores the computed penalty. Each
// rental is priced as if it came back right now; once the status leaves NONE
// the sweep never touches the rental again, so a later waiver is not undone.
func (jr *JobRunner) ApplyLateReturnPenalties() {
	jr.runWithRecovery("ApplyLateReturnPenalties", func() {
		ctx := context.Background()
		now := time.Now()

		rentals, err := jr.rentals.ListPastDue(ctx, now)
		if err != nil {
			logger.Error("Failed to list past-due rentals", "error", err)
			return
		}

		applied := 0
		for _, rental := range rentals {
			result, err := jr.penalty.Calculate(rental.EndDate, rental.DailyRateCents, now)
			if err != nil {
				logger.Error("Failed to price late return",
					"rental_id", rental.ID, "end_date", rental.EndDate, "error", err)
				continue
			}
			if err := jr.rentals.UpdateLateReturn(ctx, rental.ID, result.Status, result.LateHours, result.PenaltyAmountCents); err != nil {
				logger.Error("Failed to store late-return penalty", "rental_id", rental.ID, "error", err)
				continue
			}
			applied++
			logger.Debug("Applied late-return penalty",
				"rental_id", rental.ID,
				"status", result.Status,
				"late_hours", result.LateHours,
				"penalty_cents", result.PenaltyAmountCents,
				"capped", result.CappedAtMax)
		}

		logger.Info("Applied late-return penalties", "candidates", len(rentals), "applied", applied)
	})
}
