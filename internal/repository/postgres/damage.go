package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"car-rental-adjustments/internal/domain"
	"car-rental-adjustments/internal/repository"
)

type damageReportRepository struct {
	db *sql.DB
}

func NewDamageReportRepository(db *sql.DB) repository.DamageReportRepository {
	return &damageReportRepository{db: db}
}

func (r *damageReportRepository) Create(ctx context.Context, rep *domain.DamageReport) error {
	query := `INSERT INTO damage_reports (rental_id, vehicle_id, vehicle_brand, vehicle_model, vehicle_plate,
	            customer_name, customer_email, description, location, severity, category, status,
	            insurance_coverage, insurance_deductible_cents, payment_status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	          RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query,
		rep.RentalID, rep.VehicleID, rep.VehicleBrand, rep.VehicleModel, rep.VehiclePlate,
		rep.CustomerName, rep.CustomerEmail, rep.Description, rep.Location, rep.Severity, rep.Category, rep.Status,
		rep.InsuranceCoverage, rep.InsuranceDeductibleCents, rep.PaymentStatus, now, now,
	).Scan(&rep.ID)
}

func (r *damageReportRepository) GetByID(ctx context.Context, id int32) (*domain.DamageReport, error) {
	rep := &domain.DamageReport{}
	query := `SELECT id, rental_id, vehicle_id, vehicle_brand, vehicle_model, vehicle_plate, customer_name, customer_email,
	            description, location, severity, category, status, repair_cost_estimate_cents, insurance_coverage,
	            insurance_deductible_cents, customer_liability_cents, payment_status, payment_failure_reason, transaction_id,
	            dispute_reason, dispute_comments, disputed_by, disputed_at, resolution_notes, resolved_by, resolved_at,
	            created_on, updated_on
	          FROM damage_reports WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&rep.ID, &rep.RentalID, &rep.VehicleID, &rep.VehicleBrand, &rep.VehicleModel, &rep.VehiclePlate,
		&rep.CustomerName, &rep.CustomerEmail, &rep.Description, &rep.Location, &rep.Severity, &rep.Category,
		&rep.Status, &rep.RepairCostEstimateCents, &rep.InsuranceCoverage, &rep.InsuranceDeductibleCents,
		&rep.CustomerLiabilityCents, &rep.PaymentStatus, &rep.PaymentFailureReason, &rep.TransactionID,
		&rep.DisputeReason, &rep.DisputeComments, &rep.DisputedBy, &rep.DisputedAt,
		&rep.ResolutionNotes, &rep.ResolvedBy, &rep.ResolvedAt, &rep.CreatedOn, &rep.UpdatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("damage report %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// UpdateWithStatus writes all mutable fields in one conditional update. The
// WHERE clause on the expected status is the atomic guard for every
// lifecycle transition.
func (r *damageReportRepository) UpdateWithStatus(ctx context.Context, rep *domain.DamageReport, expectedStatus domain.DamageStatus) error {
	query := `UPDATE damage_reports SET
	            description=$1, location=$2, severity=$3, category=$4, status=$5,
	            repair_cost_estimate_cents=$6, insurance_coverage=$7, insurance_deductible_cents=$8,
	            customer_liability_cents=$9, payment_status=$10, payment_failure_reason=$11, transaction_id=$12,
	            dispute_reason=$13, dispute_comments=$14, disputed_by=$15, disputed_at=$16,
	            resolution_notes=$17, resolved_by=$18, resolved_at=$19, updated_on=$20
	          WHERE id=$21 AND status=$22`
	res, err := r.db.ExecContext(ctx, query,
		rep.Description, rep.Location, rep.Severity, rep.Category, rep.Status,
		rep.RepairCostEstimateCents, rep.InsuranceCoverage, rep.InsuranceDeductibleCents,
		rep.CustomerLiabilityCents, rep.PaymentStatus, rep.PaymentFailureReason, rep.TransactionID,
		rep.DisputeReason, rep.DisputeComments, rep.DisputedBy, rep.DisputedAt,
		rep.ResolutionNotes, rep.ResolvedBy, rep.ResolvedAt, time.Now(),
		rep.ID, expectedStatus)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewStateConflictError("damage report %d is no longer in status %s", rep.ID, expectedStatus)
	}
	return nil
}

func (r *damageReportRepository) RecordPaymentFailure(ctx context.Context, reportID int32, reason string) error {
	query := `UPDATE damage_reports SET payment_status=$1, payment_failure_reason=$2, updated_on=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, domain.PaymentStatusFailed, reason, time.Now(), reportID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("damage report %d not found", reportID)
	}
	return nil
}

func (r *damageReportRepository) CreatePhoto(ctx context.Context, p *domain.DamagePhoto) error {
	query := `INSERT INTO damage_photos (report_id, storage_key, uploaded_by, size_bytes, content_type, sort_order, deleted, created_on)
	          VALUES ($1, $2, $3, $4, $5,
	                  (SELECT COALESCE(MAX(sort_order), 0) + 1 FROM damage_photos WHERE report_id = $1),
	                  false, $6)
	          RETURNING id, sort_order`
	return r.db.QueryRowContext(ctx, query, p.ReportID, p.StorageKey, p.UploadedBy, p.SizeBytes, p.ContentType, time.Now()).
		Scan(&p.ID, &p.SortOrder)
}

func (r *damageReportRepository) GetPhotoByID(ctx context.Context, photoID int32) (*domain.DamagePhoto, error) {
	p := &domain.DamagePhoto{}
	query := `SELECT id, report_id, storage_key, uploaded_by, size_bytes, content_type, sort_order, deleted, created_on
	          FROM damage_photos WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, photoID).Scan(
		&p.ID, &p.ReportID, &p.StorageKey, &p.UploadedBy, &p.SizeBytes, &p.ContentType, &p.SortOrder, &p.Deleted, &p.CreatedOn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("damage photo %d not found", photoID)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *damageReportRepository) ListPhotos(ctx context.Context, reportID int32) ([]domain.DamagePhoto, error) {
	query := `SELECT id, report_id, storage_key, uploaded_by, size_bytes, content_type, sort_order, deleted, created_on
	          FROM damage_photos WHERE report_id = $1 AND deleted = false ORDER BY sort_order ASC`
	rows, err := r.db.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.DamagePhoto
	for rows.Next() {
		var p domain.DamagePhoto
		if err := rows.Scan(&p.ID, &p.ReportID, &p.StorageKey, &p.UploadedBy, &p.SizeBytes, &p.ContentType, &p.SortOrder, &p.Deleted, &p.CreatedOn); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *damageReportRepository) SoftDeletePhoto(ctx context.Context, photoID int32) error {
	query := `UPDATE damage_photos SET deleted = true WHERE id = $1 AND deleted = false`
	res, err := r.db.ExecContext(ctx, query, photoID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("damage photo %d not found", photoID)
	}
	return nil
}
