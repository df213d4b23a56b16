package dto

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iho/goinvest/internal/domain"
	"github.com/iho/goinvest/internal/usecase"
)

// CreateAmendmentRequest represents a request to open an amendment.
type CreateAmendmentRequest struct {
	OriginalProjectionID string `json:"original_projection_id"`
	IncrementPeriod      int    `json:"increment_period"`
	IncrementAmount      string `json:"increment_amount"`
}

// ToUseCaseInput converts to use case input. Amounts travel as strings so
// no precision is lost in JSON.
func (r *CreateAmendmentRequest) ToUseCaseInput(investmentID, actorID string) (usecase.CreateAmendmentInput, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(r.IncrementAmount))
	if err != nil {
		return usecase.CreateAmendmentInput{}, fmt.Errorf("%w: increment_amount %q", domain.ErrInvalidInput, r.IncrementAmount)
	}

	return usecase.CreateAmendmentInput{
		InvestmentID:         investmentID,
		OriginalProjectionID: r.OriginalProjectionID,
		IncrementPeriod:      r.IncrementPeriod,
		IncrementAmount:      amount,
		ActorID:              actorID,
	}, nil
}

// SetIncrementRequest attaches the increment projection and schedule.
type SetIncrementRequest struct {
	IncrementProjectionID string `json:"increment_projection_id"`
	IncrementScheduleID   string `json:"increment_schedule_id"`
}

// ToUseCaseInput converts to use case input.
func (r *SetIncrementRequest) ToUseCaseInput(amendmentID, actorID string) usecase.SetIncrementInput {
	return usecase.SetIncrementInput{
		AmendmentID:           amendmentID,
		IncrementProjectionID: r.IncrementProjectionID,
		IncrementScheduleID:   r.IncrementScheduleID,
		ActorID:               actorID,
	}
}

// ContractNumberRequest asks for the contract number of a pair.
type ContractNumberRequest struct {
	RequestID    string `json:"request_id"`
	ProjectionID string `json:"projection_id"`
}
