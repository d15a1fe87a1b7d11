package jobs

import (
	"car-rental-adjustments/internal/config"
	"car-rental-adjustments/internal/logger"
	"car-rental-adjustments/internal/repository"
	"car-rental-adjustments/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	rentals repository.RentalRepository
	penalty service.PenaltyCalculator
	config  *config.Config
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(rentals repository.RentalRepository, penalty service.PenaltyCalculator, cfg *config.Config) *JobRunner {
	return &JobRunner{
		rentals: rentals,
		penalty: penalty,
		config:  cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllNightlyJobs runs all nightly jobs (for manual execution)
func (jr *JobRunner) RunAllNightlyJobs() {
	jr.ApplyLateReturnPenalties()
}
