package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Every sentinel below wraps exactly one of these so callers can
// match either the kind or the specific condition with errors.Is.
var (
	ErrNotFound            = errors.New("not found")
	ErrConflict            = errors.New("conflict")
	ErrInvalidState        = errors.New("invalid state")
	ErrPreconditionFailed  = errors.New("precondition failed")
	ErrCollaboratorFailure = errors.New("collaborator failure")
	ErrInvalidInput        = errors.New("invalid input")
)

var (
	// Lookup errors
	ErrInvestmentNotFound = fmt.Errorf("investment %w", ErrNotFound)
	ErrProjectionNotFound = fmt.Errorf("projection %w", ErrNotFound)
	ErrScheduleNotFound   = fmt.Errorf("schedule %w", ErrNotFound)
	ErrAmendmentNotFound  = fmt.Errorf("amendment %w", ErrNotFound)
	ErrContractNotFound   = fmt.Errorf("contract number %w", ErrNotFound)

	// Amendment errors
	ErrAmendmentConflict     = fmt.Errorf("%w: amendment already exists for investment and increment period", ErrConflict)
	ErrAmendmentNotProjected = fmt.Errorf("%w: amendment is past the projected state", ErrInvalidState)
	ErrAmendmentCompleted    = fmt.Errorf("%w: amendment is completed", ErrInvalidState)
	ErrIncrementNotSet       = fmt.Errorf("%w: increment projection is not set", ErrPreconditionFailed)
	ErrDocumentsNotGenerated = fmt.Errorf("%w: documents have not been generated", ErrPreconditionFailed)
	ErrOriginalNotActive     = fmt.Errorf("%w: original projection is no longer active for the investment", ErrPreconditionFailed)

	// Schedule errors
	ErrActiveScheduleConflict = fmt.Errorf("%w: projection already has an active schedule", ErrConflict)

	// Validation errors
	ErrInvalidPeriod              = fmt.Errorf("%w: increment period must be positive", ErrInvalidInput)
	ErrInvalidAmount              = fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	ErrMissingID                  = fmt.Errorf("%w: identifier is required", ErrInvalidInput)
	ErrScheduleProjectionMismatch = fmt.Errorf("%w: schedule does not belong to projection", ErrInvalidInput)
	ErrSameProjection             = fmt.Errorf("%w: increment projection equals original projection", ErrInvalidInput)

	// Collaborator errors
	ErrDocumentsNotGeneratedByCollaborator = fmt.Errorf("%w: document generator affected no records", ErrCollaboratorFailure)
	ErrSequenceGeneration                  = fmt.Errorf("%w: contract sequence could not be generated", ErrCollaboratorFailure)
)

// CollaboratorError wraps a failure reported by an external collaborator,
// keeping both the kind and the original cause reachable via errors.Is.
func CollaboratorError(collaborator string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrCollaboratorFailure, collaborator, cause)
}

// ErrorKind returns a short label for the kind err belongs to.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrPreconditionFailed):
		return "precondition_failed"
	case errors.Is(err, ErrCollaboratorFailure):
		return "collaborator_failure"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	default:
		return "internal"
	}
}
