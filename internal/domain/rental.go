package domain

import "time"

type LateReturnStatus string

const (
	LateReturnStatusNone         LateReturnStatus = "NONE"
	LateReturnStatusGracePeriod  LateReturnStatus = "GRACE_PERIOD"
	LateReturnStatusLate         LateReturnStatus = "LATE"
	LateReturnStatusSeverelyLate LateReturnStatus = "SEVERELY_LATE"
)

// Rental carries the fields this engine reads and mutates. Catalog data
// (brand, model, plate, customer contact) is snapshotted here at booking
// time so later renames do not rewrite adjustment history.
type Rental struct {
	ID             int32  `json:"id"`
	CustomerID     int32  `json:"customer_id"`
	CustomerName   string `json:"customer_name"`
	CustomerEmail  string `json:"customer_email"`
	VehicleID      int32  `json:"vehicle_id"`
	VehicleBrand   string `json:"vehicle_brand"`
	VehicleModel   string `json:"vehicle_model"`
	VehiclePlate   string `json:"vehicle_plate"`
	StartDate      string `json:"start_date"` // yyyy-mm-dd
	EndDate        string `json:"end_date"`   // yyyy-mm-dd, return due end-of-day
	DailyRateCents int64  `json:"daily_rate_cents"`
	Currency       string `json:"currency"`

	// Adjustment-engine owned fields.
	LateReturnStatus   LateReturnStatus `json:"late_return_status"`
	LateHours          int32            `json:"late_hours"`
	PenaltyAmountCents int64            `json:"penalty_amount_cents"`
	PenaltyPaid        bool             `json:"penalty_paid"`
	DamageReportCount  int32            `json:"damage_report_count"`

	CreatedOn time.Time `json:"created_on"`
	UpdatedOn time.Time `json:"updated_on"`
}
