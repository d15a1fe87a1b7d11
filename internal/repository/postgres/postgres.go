package postgres

import (
	"database/sql"

	"car-rental-adjustments/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.RentalRepository
	repository.DamageReportRepository
	repository.PenaltyWaiverRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		RentalRepository:        NewRentalRepository(db),
		DamageReportRepository:  NewDamageReportRepository(db),
		PenaltyWaiverRepository: NewPenaltyWaiverRepository(db),
	}
}
