package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/repository"
)

type rentalRepository struct {
	db *sql.DB
}

func NewRentalRepository(db *sql.DB) repository.RentalRepository {
	return &rentalRepository{db: db}
}

const rentalColumns = `id, customer_id, customer_name, customer_email, vehicle_id, vehicle_brand, vehicle_model, vehicle_plate,
	start_date, end_date, daily_rate_cents, currency, late_return_status, late_hours, penalty_amount_cents, penalty_paid,
	damage_report_count, created_on, updated_on`

func scanRental(row interface{ Scan(...any) error }) (*domain.Rental, error) {
	rt := &domain.Rental{}
	err := row.Scan(&rt.ID, &rt.CustomerID, &rt.CustomerName, &rt.CustomerEmail, &rt.VehicleID, &rt.VehicleBrand,
		&rt.VehicleModel, &rt.VehiclePlate, &rt.StartDate, &rt.EndDate, &rt.DailyRateCents, &rt.Currency,
		&rt.LateReturnStatus, &rt.LateHours, &rt.PenaltyAmountCents, &rt.PenaltyPaid, &rt.DamageReportCount,
		&rt.CreatedOn, &rt.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) GetByID(ctx context.Context, id int32) (*domain.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`
	rt, err := scanRental(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("rental %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *rentalRepository) UpdateLateReturn(ctx context.Context, rentalID int32, status domain.LateReturnStatus, lateHours int32, penaltyCents int64) error {
	query := `UPDATE rentals SET late_return_status=$1, late_hours=$2, penalty_amount_cents=$3, updated_on=$4 WHERE id=$5 AND late_return_status=$6`
	res, err := r.db.ExecContext(ctx, query, status, lateHours, penaltyCents, time.Now(), rentalID, domain.LateReturnStatusNone)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewStateConflictError("rental %d already carries a late-return adjustment", rentalID)
	}
	return nil
}

func (r *rentalRepository) UpdatePenaltyAmount(ctx context.Context, rentalID int32, expectedCents, newCents int64) error {
	query := `UPDATE rentals SET penalty_amount_cents=$1, updated_on=$2 WHERE id=$3 AND penalty_amount_cents=$4`
	res, err := r.db.ExecContext(ctx, query, newCents, time.Now(), rentalID, expectedCents)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewStateConflictError("penalty on rental %d changed concurrently", rentalID)
	}
	return nil
}

func (r *rentalRepository) IncrementDamageReportCount(ctx context.Context, rentalID int32) error {
	query := `UPDATE rentals SET damage_report_count = damage_report_count + 1, updated_on=$1 WHERE id=$2`
	res, err := r.db.ExecContext(ctx, query, time.Now(), rentalID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("rental %d not found", rentalID)
	}
	return nil
}

func (r *rentalRepository) ListPastDue(ctx context.Context, asOf time.Time) ([]domain.Rental, error) {
	// end_date is a yyyy-mm-dd date column due end-of-day, so a rental is
	// past due once asOf's date is strictly after it.
	query := `SELECT ` + rentalColumns + ` FROM rentals
	          WHERE end_date < $1 AND late_return_status = $2
	          ORDER BY end_date ASC`
	rows, err := r.db.QueryContext(ctx, query, asOf.Format("2006-01-02"), domain.LateReturnStatusNone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rentals []domain.Rental
	for rows.Next() {
		rt, err := scanRental(rows)
		if err != nil {
			return nil, err
		}
		rentals = append(rentals, *rt)
	}
	return rentals, rows.Err()
}
