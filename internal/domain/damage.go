package domain

import "time"

type DamageStatus string

const (
	DamageStatusReported        DamageStatus = "REPORTED"
	DamageStatusUnderAssessment DamageStatus = "UNDER_ASSESSMENT"
	DamageStatusAssessed        DamageStatus = "ASSESSED"
	DamageStatusCharged         DamageStatus = "CHARGED"
	DamageStatusDisputed        DamageStatus = "DISPUTED"
	DamageStatusResolved        DamageStatus = "RESOLVED"
)

type DamageSeverity string

const (
	DamageSeverityMinor     DamageSeverity = "MINOR"
	DamageSeverityModerate  DamageSeverity = "MODERATE"
	DamageSeverityMajor     DamageSeverity = "MAJOR"
	DamageSeverityTotalLoss DamageSeverity = "TOTAL_LOSS"
)

type PaymentStatus string

const (
	PaymentStatusNone     PaymentStatus = "NONE"
	PaymentStatusCaptured PaymentStatus = "CAPTURED"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "PARTIALLY_REFUNDED"
)

// DamageOperation names a lifecycle action a caller wants to perform.
type DamageOperation string

const (
	DamageOpStartAssessment DamageOperation = "START_ASSESSMENT"
	DamageOpAssess          DamageOperation = "ASSESS"
	DamageOpReopen          DamageOperation = "REOPEN_ASSESSMENT"
	DamageOpCharge          DamageOperation = "CHARGE"
	DamageOpDispute         DamageOperation = "DISPUTE"
	DamageOpResolve         DamageOperation = "RESOLVE"
)

// damageTransitions is the single authority on which operation is legal from
// which status. Every service transition goes through NextDamageStatus; no
// handler checks statuses ad hoc.
var damageTransitions = map[DamageStatus]map[DamageOperation]DamageStatus{
	DamageStatusReported: {
		DamageOpStartAssessment: DamageStatusUnderAssessment,
		DamageOpAssess:          DamageStatusAssessed,
	},
	DamageStatusUnderAssessment: {
		DamageOpAssess: DamageStatusAssessed,
	},
	DamageStatusAssessed: {
		DamageOpReopen: DamageStatusUnderAssessment,
		DamageOpCharge: DamageStatusCharged,
	},
	DamageStatusCharged: {
		DamageOpDispute: DamageStatusDisputed,
	},
	DamageStatusDisputed: {
		DamageOpResolve: DamageStatusResolved,
	},
	DamageStatusResolved: {},
}

// NextDamageStatus returns the status the report moves to when op is applied
// from current, or a state-conflict error naming the offending status.
func NextDamageStatus(current DamageStatus, op DamageOperation) (DamageStatus, error) {
	next, ok := damageTransitions[current][op]
	if !ok {
		return "", NewStateConflictError("operation %s is not allowed while a damage report is in status %s", op, current)
	}
	return next, nil
}

// DamageReport is one damage incident on a rental, from the initial report
// through assessment, charge, dispute, and resolution. Vehicle and customer
// fields are snapshotted from the rental at report time.
type DamageReport struct {
	ID            int32  `json:"id"`
	RentalID      int32  `json:"rental_id"`
	VehicleID     int32  `json:"vehicle_id"`
	VehicleBrand  string `json:"vehicle_brand"`
	VehicleModel  string `json:"vehicle_model"`
	VehiclePlate  string `json:"vehicle_plate"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`

	Description string         `json:"description"`
	Location    string         `json:"location"`
	Category    string         `json:"category"`
	Severity    DamageSeverity `json:"severity"`
	Status      DamageStatus   `json:"status"`

	RepairCostEstimateCents  *int64 `json:"repair_cost_estimate_cents,omitempty"`
	InsuranceCoverage        bool   `json:"insurance_coverage"`
	InsuranceDeductibleCents int64  `json:"insurance_deductible_cents"`
	CustomerLiabilityCents   int64  `json:"customer_liability_cents"`

	PaymentStatus        PaymentStatus `json:"payment_status"`
	PaymentFailureReason string        `json:"payment_failure_reason,omitempty"`
	TransactionID        string        `json:"transaction_id,omitempty"`

	DisputeReason   string     `json:"dispute_reason,omitempty"`
	DisputeComments string     `json:"dispute_comments,omitempty"`
	DisputedBy      *int32     `json:"disputed_by,omitempty"`
	DisputedAt      *time.Time `json:"disputed_at,omitempty"`

	ResolutionNotes string     `json:"resolution_notes,omitempty"`
	ResolvedBy      *int32     `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time `json:"resolved_at,omitempty"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}

// DamagePhoto is a stored photo attached to a damage report. Deletion is
// soft; deleted photos never appear in listings.
type DamagePhoto struct {
	ID          int32     `json:"id"`
	ReportID    int32     `json:"report_id"`
	StorageKey  string    `json:"storage_key"`
	UploadedBy  int32     `json:"uploaded_by"`
	SizeBytes   int64     `json:"size_bytes"`
	ContentType string    `json:"content_type"`
	SortOrder   int32     `json:"sort_order"`
	Deleted     bool      `json:"deleted"`
	CreatedOn   time.Time `json:"created_on"`
}
