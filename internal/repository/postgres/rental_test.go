package postgres

import (
	"context"
	"testing"
	"time"

	"car-rental-adjustments/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rentalRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "customer_id", "customer_name", "customer_email", "vehicle_id", "vehicle_brand", "vehicle_model",
		"vehicle_plate", "start_date", "end_date", "daily_rate_cents", "currency", "late_return_status",
		"late_hours", "penalty_amount_cents", "penalty_paid", "damage_report_count", "created_on", "updated_on",
	})
}

func TestRentalRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewRentalRepository(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		now := time.Now()
		mock.ExpectQuery(`SELECT .+ FROM rentals WHERE id = \$1`).
			WithArgs(int32(2)).
			WillReturnRows(rentalRows().AddRow(
				2, 7, "Dana Field", "dana@example.com", 3, "Skoda", "Octavia", "AB-123-CD",
				"2026-03-01", "2026-03-10", 10_000, "EUR", "NONE", 0, 0, false, 0, now, now,
			))

		rental, err := repo.GetByID(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int32(7), rental.CustomerID)
		assert.Equal(t, domain.LateReturnStatusNone, rental.LateReturnStatus)
	})

	t.Run("missing row maps to not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .+ FROM rentals WHERE id = \$1`).
			WithArgs(int32(404)).
			WillReturnRows(rentalRows())

		_, err := repo.GetByID(ctx, 404)
		assert.True(t, domain.IsKind(err, domain.ErrKindNotFound))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_UpdatePenaltyAmount(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewRentalRepository(db)
	ctx := context.Background()

	t.Run("matched expectation updates", func(t *testing.T) {
		mock.ExpectExec(`UPDATE rentals SET penalty_amount_cents=\$1, updated_on=\$2 WHERE id=\$3 AND penalty_amount_cents=\$4`).
			WithArgs(int64(0), sqlmock.AnyArg(), int32(2), int64(1_500)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.UpdatePenaltyAmount(ctx, 2, 1_500, 0))
	})

	t.Run("zero rows means the stored amount moved", func(t *testing.T) {
		mock.ExpectExec(`UPDATE rentals SET penalty_amount_cents=\$1, updated_on=\$2 WHERE id=\$3 AND penalty_amount_cents=\$4`).
			WithArgs(int64(0), sqlmock.AnyArg(), int32(2), int64(1_500)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePenaltyAmount(ctx, 2, 1_500, 0)
		assert.True(t, domain.IsKind(err, domain.ErrKindStateConflict))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_UpdateLateReturn(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewRentalRepository(db)

	t.Run("applies while no adjustment is recorded", func(t *testing.T) {
		mock.ExpectExec(`UPDATE rentals SET late_return_status=\$1, late_hours=\$2, penalty_amount_cents=\$3, updated_on=\$4 WHERE id=\$5 AND late_return_status=\$6`).
			WithArgs(domain.LateReturnStatusSeverelyLate, int32(30), int64(30_000), sqlmock.AnyArg(), int32(2), domain.LateReturnStatusNone).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateLateReturn(context.Background(), 2, domain.LateReturnStatusSeverelyLate, 30, 30_000)
		assert.NoError(t, err)
	})

	t.Run("zero rows means an adjustment already landed", func(t *testing.T) {
		mock.ExpectExec(`UPDATE rentals SET late_return_status=\$1, late_hours=\$2, penalty_amount_cents=\$3, updated_on=\$4 WHERE id=\$5 AND late_return_status=\$6`).
			WithArgs(domain.LateReturnStatusLate, int32(3), int64(3_000), sqlmock.AnyArg(), int32(2), domain.LateReturnStatusNone).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateLateReturn(context.Background(), 2, domain.LateReturnStatusLate, 3, 3_000)
		assert.True(t, domain.IsKind(err, domain.ErrKindStateConflict))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRentalRepository_ListPastDue(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()
	repo := NewRentalRepository(db)

	now := time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC)
	rowTime := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM rentals\s+WHERE end_date < \$1 AND late_return_status = \$2`).
		WithArgs("2026-03-15", domain.LateReturnStatusNone).
		WillReturnRows(rentalRows().AddRow(
			2, 7, "Dana Field", "dana@example.com", 3, "Skoda", "Octavia", "AB-123-CD",
			"2026-03-01", "2026-03-10", 10_000, "EUR", "NONE", 0, 0, false, 0, rowTime, rowTime,
		))

	rentals, err := repo.ListPastDue(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, rentals, 1)
	assert.Equal(t, "2026-03-10", rentals[0].EndDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}
