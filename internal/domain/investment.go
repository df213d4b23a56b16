package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Investment is a funded request. The active projection pointer is the only
// field the amendment workflow mutates.
type Investment struct {
	ID                 string
	Name               string
	ClientID           string
	ActiveProjectionID string
	RequestID          string
	Terminated         bool
	TerminationReason  string
	CreatedBy          string
	UpdatedBy          string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Projection is an immutable financial plan. Amendments never edit one; they
// point at a new increment projection instead.
type Projection struct {
	ID                 string
	ProductType        string
	Capital            decimal.Decimal
	Term               int
	NominalRate        decimal.Decimal
	TotalYield         decimal.Decimal
	TotalOperatingCost decimal.Decimal
	PayoffValue        decimal.Decimal
	CreatedAt          time.Time
}

// Schedule is the ordered period list derived from a projection.
type Schedule struct {
	ID           string
	ProjectionID string
	Active       bool
	Periods      []SchedulePeriod
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SchedulePeriod is a single accrual/payment period.
type SchedulePeriod struct {
	Index           int
	StartDate       time.Time
	EndDate         time.Time
	Rate            decimal.Decimal
	Capital         decimal.Decimal
	Yield           decimal.Decimal
	OperatingCost   decimal.Decimal
	AccumulatedRent decimal.Decimal
	EndingCapital   decimal.Decimal
}

// BelongsTo reports whether the schedule was derived from projectionID.
func (s *Schedule) BelongsTo(projectionID string) bool {
	return s.ProjectionID == projectionID
}
