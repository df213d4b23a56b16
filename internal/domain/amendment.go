package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AmendmentState is the lifecycle position of an amendment.
type AmendmentState int

const (
	AmendmentStateProjected          AmendmentState = 1
	AmendmentStateDocumentsGenerated AmendmentState = 2
	AmendmentStateCompleted          AmendmentState = 3
)

// AmendmentMotive is the document motive code sent to the document generator.
const AmendmentMotive = "Amendment"

var amendmentStateNames = map[AmendmentState]string{
	AmendmentStateProjected:          "projected",
	AmendmentStateDocumentsGenerated: "documents_generated",
	AmendmentStateCompleted:          "completed",
}

// String returns the wire name of the state.
func (s AmendmentState) String() string {
	if name, ok := amendmentStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// IsValid checks if the state is one of the known states.
func (s AmendmentState) IsValid() bool {
	_, ok := amendmentStateNames[s]
	return ok
}

// Amendment records a capital/term increase applied to an existing investment.
type Amendment struct {
	ID                    string
	InvestmentID          string
	OriginalProjectionID  string
	OriginalScheduleID    string
	IncrementProjectionID *string
	IncrementScheduleID   *string
	IncrementPeriod       int
	IncrementAmount       decimal.Decimal
	Sequence              int
	Name                  string
	State                 AmendmentState
	DocumentsGenerated    bool
	FlowContinued         bool
	CreatedBy             string
	UpdatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// AmendmentName formats the display name for the seq-th amendment of an investment.
func AmendmentName(investmentName string, seq int) string {
	return fmt.Sprintf("%s - AD-%02d", investmentName, seq)
}

// Validate checks creation-time fields.
func (a *Amendment) Validate() error {
	if a.InvestmentID == "" || a.OriginalProjectionID == "" || a.OriginalScheduleID == "" {
		return ErrMissingID
	}
	if a.IncrementPeriod <= 0 {
		return ErrInvalidPeriod
	}
	if !a.IncrementAmount.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

// HasIncrement reports whether the increment projection and schedule are set.
func (a *Amendment) HasIncrement() bool {
	return a.IncrementProjectionID != nil && *a.IncrementProjectionID != "" &&
		a.IncrementScheduleID != nil && *a.IncrementScheduleID != ""
}

// CanSetIncrement checks whether the increment may still be changed.
func (a *Amendment) CanSetIncrement() error {
	if a.State == AmendmentStateCompleted {
		return ErrAmendmentCompleted
	}
	return nil
}

// SetIncrement stores the increment projection/schedule. State is unchanged.
func (a *Amendment) SetIncrement(projectionID, scheduleID, actorID string, at time.Time) error {
	if err := a.CanSetIncrement(); err != nil {
		return err
	}
	if projectionID == "" || scheduleID == "" {
		return ErrMissingID
	}
	if projectionID == a.OriginalProjectionID {
		return ErrSameProjection
	}
	a.IncrementProjectionID = &projectionID
	a.IncrementScheduleID = &scheduleID
	a.touch(actorID, at)
	return nil
}

// CanGenerateDocuments checks the Projected -> DocumentsGenerated transition.
func (a *Amendment) CanGenerateDocuments() error {
	if a.State != AmendmentStateProjected {
		return ErrAmendmentNotProjected
	}
	return nil
}

// MarkDocumentsGenerated advances to DocumentsGenerated.
func (a *Amendment) MarkDocumentsGenerated(actorID string, at time.Time) error {
	if err := a.CanGenerateDocuments(); err != nil {
		return err
	}
	a.DocumentsGenerated = true
	a.State = AmendmentStateDocumentsGenerated
	a.touch(actorID, at)
	return nil
}

// CanContinueFlow checks the DocumentsGenerated -> Completed transition.
func (a *Amendment) CanContinueFlow() error {
	if !a.HasIncrement() {
		return ErrIncrementNotSet
	}
	if a.State != AmendmentStateDocumentsGenerated {
		return ErrDocumentsNotGenerated
	}
	return nil
}

// Complete advances to Completed.
func (a *Amendment) Complete(actorID string, at time.Time) error {
	if err := a.CanContinueFlow(); err != nil {
		return err
	}
	a.FlowContinued = true
	a.State = AmendmentStateCompleted
	a.touch(actorID, at)
	return nil
}

// Clone returns a deep copy.
func (a *Amendment) Clone() *Amendment {
	c := *a
	if a.IncrementProjectionID != nil {
		v := *a.IncrementProjectionID
		c.IncrementProjectionID = &v
	}
	if a.IncrementScheduleID != nil {
		v := *a.IncrementScheduleID
		c.IncrementScheduleID = &v
	}
	return &c
}

func (a *Amendment) touch(actorID string, at time.Time) {
	a.UpdatedBy = actorID
	a.UpdatedAt = at
}

// AmendmentDetail joins an amendment with the projections and schedules it references.
// Schedule periods are only populated by the full-detail read.
type AmendmentDetail struct {
	Amendment           *Amendment
	Investment          *Investment
	OriginalProjection  *Projection
	OriginalSchedule    *Schedule
	IncrementProjection *Projection
	IncrementSchedule   *Schedule
}
