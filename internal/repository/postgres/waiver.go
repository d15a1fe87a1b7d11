package postgres

import (
	"context"
	"database/sql"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/repository"
)

type penaltyWaiverRepository struct {
	db *sql.DB
}

func NewPenaltyWaiverRepository(db *sql.DB) repository.PenaltyWaiverRepository {
	return &penaltyWaiverRepository{db: db}
}

func (r *penaltyWaiverRepository) Create(ctx context.Context, w *domain.PenaltyWaiver) error {
	query := `INSERT INTO penalty_waivers (rental_id, original_penalty_cents, waived_amount_cents, remaining_penalty_cents,
	            reason, admin_id, waived_at, refund_initiated, refund_transaction_id, deleted)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false) RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		w.RentalID, w.OriginalPenaltyCents, w.WaivedAmountCents, w.RemainingPenaltyCents,
		w.Reason, w.AdminID, w.WaivedAt, w.RefundInitiated, w.RefundTransactionID,
	).Scan(&w.ID)
}

func (r *penaltyWaiverRepository) ListByRental(ctx context.Context, rentalID int32) ([]domain.PenaltyWaiver, error) {
	query := `SELECT id, rental_id, original_penalty_cents, waived_amount_cents, remaining_penalty_cents,
	            reason, admin_id, waived_at, refund_initiated, refund_transaction_id, deleted
	          FROM penalty_waivers WHERE rental_id = $1 AND deleted = false ORDER BY waived_at ASC`
	rows, err := r.db.QueryContext(ctx, query, rentalID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waivers []domain.PenaltyWaiver
	for rows.Next() {
		var w domain.PenaltyWaiver
		if err := rows.Scan(&w.ID, &w.RentalID, &w.OriginalPenaltyCents, &w.WaivedAmountCents, &w.RemainingPenaltyCents,
			&w.Reason, &w.AdminID, &w.WaivedAt, &w.RefundInitiated, &w.RefundTransactionID, &w.Deleted); err != nil {
			return nil, err
		}
		waivers = append(waivers, w)
	}
	return waivers, rows.Err()
}
