package domain

// PenaltyResult is the outcome of one late-return penalty calculation. The
// breakdown lines record each step in plain language for audit display.
type PenaltyResult struct {
	LateHours          int32            `json:"late_hours"`
	LateDays           int32            `json:"late_days"`
	DailyRateCents     int64            `json:"daily_rate_cents"`
	PenaltyAmountCents int64            `json:"penalty_amount_cents"`
	Status             LateReturnStatus `json:"status"`
	CappedAtMax        bool             `json:"capped_at_max"`
	Breakdown          []string         `json:"breakdown"`
}
