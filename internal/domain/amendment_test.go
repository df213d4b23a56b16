package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestAmendmentName(t *testing.T) {
	tests := []struct {
		name       string
		investment string
		seq        int
		expected   string
	}{
		{name: "first amendment", investment: "INV-1", seq: 1, expected: "INV-1 - AD-01"},
		{name: "two digit sequence", investment: "INV-1", seq: 12, expected: "INV-1 - AD-12"},
		{name: "three digit sequence", investment: "Fondo Norte", seq: 100, expected: "Fondo Norte - AD-100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AmendmentName(tt.investment, tt.seq); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAmendment_Validate(t *testing.T) {
	tests := []struct {
		name        string
		period      int
		amount      decimal.Decimal
		scheduleID  string
		expectError error
	}{
		{name: "valid", period: 6, amount: decimal.NewFromInt(2000), scheduleID: "S1"},
		{name: "zero period", period: 0, amount: decimal.NewFromInt(2000), scheduleID: "S1", expectError: ErrInvalidPeriod},
		{name: "negative amount", period: 6, amount: decimal.NewFromInt(-1), scheduleID: "S1", expectError: ErrInvalidAmount},
		{name: "zero amount", period: 6, amount: decimal.Zero, scheduleID: "S1", expectError: ErrInvalidAmount},
		{name: "missing original schedule", period: 6, amount: decimal.NewFromInt(1), expectError: ErrMissingID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Amendment{
				InvestmentID:         "INV-1",
				OriginalProjectionID: "P1",
				OriginalScheduleID:   tt.scheduleID,
				IncrementPeriod:      tt.period,
				IncrementAmount:      tt.amount,
			}

			err := a.Validate()
			if tt.expectError == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError != nil && !errors.Is(err, tt.expectError) {
				t.Errorf("expected error %v, got %v", tt.expectError, err)
			}
			if tt.expectError != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected invalid input kind, got %v", err)
			}
		})
	}
}

func TestAmendment_Transitions(t *testing.T) {
	now := time.Now().UTC()

	t.Run("happy path", func(t *testing.T) {
		a := &Amendment{OriginalProjectionID: "P1", State: AmendmentStateProjected}

		if err := a.SetIncrement("P2", "S2", "user-1", now); err != nil {
			t.Fatalf("set increment: %v", err)
		}
		if a.State != AmendmentStateProjected {
			t.Fatalf("set increment must not change state, got %s", a.State)
		}
		if err := a.MarkDocumentsGenerated("user-1", now); err != nil {
			t.Fatalf("mark documents: %v", err)
		}
		if !a.DocumentsGenerated || a.State != AmendmentStateDocumentsGenerated {
			t.Fatalf("unexpected state after documents: %+v", a)
		}
		if err := a.Complete("user-2", now); err != nil {
			t.Fatalf("complete: %v", err)
		}
		if !a.FlowContinued || a.State != AmendmentStateCompleted || a.UpdatedBy != "user-2" {
			t.Fatalf("unexpected state after complete: %+v", a)
		}
	})

	t.Run("documents twice", func(t *testing.T) {
		a := &Amendment{State: AmendmentStateDocumentsGenerated, DocumentsGenerated: true}
		if err := a.MarkDocumentsGenerated("u", now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})

	t.Run("continue without increment", func(t *testing.T) {
		a := &Amendment{State: AmendmentStateDocumentsGenerated, DocumentsGenerated: true}
		if err := a.Complete("u", now); !errors.Is(err, ErrPreconditionFailed) {
			t.Fatalf("expected precondition failed, got %v", err)
		}
		if a.FlowContinued || a.State != AmendmentStateDocumentsGenerated {
			t.Fatalf("state must be unchanged, got %+v", a)
		}
	})

	t.Run("continue from projected", func(t *testing.T) {
		a := &Amendment{
			State:                 AmendmentStateProjected,
			IncrementProjectionID: strPtr("P2"),
			IncrementScheduleID:   strPtr("S2"),
		}
		if err := a.Complete("u", now); !errors.Is(err, ErrPreconditionFailed) {
			t.Fatalf("expected precondition failed, got %v", err)
		}
	})

	t.Run("increment after completion", func(t *testing.T) {
		a := &Amendment{State: AmendmentStateCompleted}
		if err := a.SetIncrement("P3", "S3", "u", now); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected invalid state, got %v", err)
		}
	})

	t.Run("increment equal to original", func(t *testing.T) {
		a := &Amendment{OriginalProjectionID: "P1", State: AmendmentStateProjected}
		if err := a.SetIncrement("P1", "S1", "u", now); !errors.Is(err, ErrSameProjection) {
			t.Fatalf("expected same projection error, got %v", err)
		}
	})
}

func TestAmendment_Clone(t *testing.T) {
	a := &Amendment{ID: "A1", IncrementProjectionID: strPtr("P2"), IncrementScheduleID: strPtr("S2")}
	c := a.Clone()
	*c.IncrementProjectionID = "changed"

	if *a.IncrementProjectionID != "P2" {
		t.Fatalf("clone shares increment pointer")
	}
}

func TestAmendmentState_String(t *testing.T) {
	if AmendmentStateCompleted.String() != "completed" {
		t.Fatalf("unexpected name %q", AmendmentStateCompleted.String())
	}
	if AmendmentState(9).IsValid() {
		t.Fatalf("state 9 must be invalid")
	}
}

func TestErrorKinds(t *testing.T) {
	kinds := map[error]error{
		ErrAmendmentNotFound:     ErrNotFound,
		ErrInvestmentNotFound:    ErrNotFound,
		ErrAmendmentConflict:     ErrConflict,
		ErrAmendmentNotProjected: ErrInvalidState,
		ErrIncrementNotSet:       ErrPreconditionFailed,
		ErrSequenceGeneration:    ErrCollaboratorFailure,
	}
	for err, kind := range kinds {
		if !errors.Is(err, kind) {
			t.Errorf("%v is not %v", err, kind)
		}
	}

	cause := errors.New("timeout")
	wrapped := CollaboratorError("documents", cause)
	if !errors.Is(wrapped, ErrCollaboratorFailure) || !errors.Is(wrapped, cause) {
		t.Fatalf("collaborator error lost its chain: %v", wrapped)
	}
}

func TestResolveActor(t *testing.T) {
	ctx := ContextWithActor(t.Context(), "ctx-user")
	if got := ResolveActor(ctx, "explicit"); got != "explicit" {
		t.Fatalf("expected explicit actor, got %s", got)
	}
	if got := ResolveActor(ctx, ""); got != "ctx-user" {
		t.Fatalf("expected context actor, got %s", got)
	}
	if got := ResolveActor(t.Context(), ""); got != SystemActor {
		t.Fatalf("expected system actor, got %s", got)
	}
}

func TestFormatContractNumber(t *testing.T) {
	if got := FormatContractNumber(2026, 7); got != "2026-0007" {
		t.Fatalf("unexpected number %s", got)
	}
	if got := FormatContractNumber(2026, 12345); got != "2026-12345" {
		t.Fatalf("unexpected number %s", got)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{err: nil, expected: ""},
		{err: ErrAmendmentNotFound, expected: "not_found"},
		{err: ErrAmendmentConflict, expected: "conflict"},
		{err: ErrAmendmentCompleted, expected: "invalid_state"},
		{err: ErrIncrementNotSet, expected: "precondition_failed"},
		{err: CollaboratorError("documents", errors.New("boom")), expected: "collaborator_failure"},
		{err: ErrInvalidPeriod, expected: "invalid_input"},
		{err: errors.New("other"), expected: "internal"},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.expected {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.expected)
		}
	}
}
