package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/goinvest/internal/domain"
)

// AmendmentResponse represents an amendment in API responses.
type AmendmentResponse struct {
	ID                    string          `json:"id"`
	InvestmentID          string          `json:"investment_id"`
	Name                  string          `json:"name"`
	Sequence              int             `json:"sequence"`
	OriginalProjectionID  string          `json:"original_projection_id"`
	OriginalScheduleID    string          `json:"original_schedule_id"`
	IncrementProjectionID *string         `json:"increment_projection_id"`
	IncrementScheduleID   *string         `json:"increment_schedule_id"`
	IncrementPeriod       int             `json:"increment_period"`
	IncrementAmount       decimal.Decimal `json:"increment_amount"`
	State                 string          `json:"state"`
	StateCode             int             `json:"state_code"`
	DocumentsGenerated    bool            `json:"documents_generated"`
	FlowContinued         bool            `json:"flow_continued"`
	CreatedBy             string          `json:"created_by"`
	UpdatedBy             string          `json:"updated_by"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// AmendmentFromDomain converts a domain amendment to a response.
func AmendmentFromDomain(a *domain.Amendment) *AmendmentResponse {
	return &AmendmentResponse{
		ID:                    a.ID,
		InvestmentID:          a.InvestmentID,
		Name:                  a.Name,
		Sequence:              a.Sequence,
		OriginalProjectionID:  a.OriginalProjectionID,
		OriginalScheduleID:    a.OriginalScheduleID,
		IncrementProjectionID: a.IncrementProjectionID,
		IncrementScheduleID:   a.IncrementScheduleID,
		IncrementPeriod:       a.IncrementPeriod,
		IncrementAmount:       a.IncrementAmount,
		State:                 a.State.String(),
		StateCode:             int(a.State),
		DocumentsGenerated:    a.DocumentsGenerated,
		FlowContinued:         a.FlowContinued,
		CreatedBy:             a.CreatedBy,
		UpdatedBy:             a.UpdatedBy,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

// AmendmentsFromDomain converts domain amendments to responses.
func AmendmentsFromDomain(amendments []*domain.Amendment) []*AmendmentResponse {
	result := make([]*AmendmentResponse, len(amendments))
	for i, a := range amendments {
		result[i] = AmendmentFromDomain(a)
	}
	return result
}

// ListAmendmentsResponse lists the amendments of one investment.
type ListAmendmentsResponse struct {
	InvestmentID string               `json:"investment_id"`
	Amendments   []*AmendmentResponse `json:"amendments"`
	Total        int                  `json:"total"`
}

// ProjectionResponse represents a projection header.
type ProjectionResponse struct {
	ID                 string          `json:"id"`
	ProductType        string          `json:"product_type"`
	Capital            decimal.Decimal `json:"capital"`
	Term               int             `json:"term"`
	NominalRate        decimal.Decimal `json:"nominal_rate"`
	TotalYield         decimal.Decimal `json:"total_yield"`
	TotalOperatingCost decimal.Decimal `json:"total_operating_cost"`
	PayoffValue        decimal.Decimal `json:"payoff_value"`
}

// ProjectionFromDomain converts a projection, tolerating nil.
func ProjectionFromDomain(p *domain.Projection) *ProjectionResponse {
	if p == nil {
		return nil
	}
	return &ProjectionResponse{
		ID:                 p.ID,
		ProductType:        p.ProductType,
		Capital:            p.Capital,
		Term:               p.Term,
		NominalRate:        p.NominalRate,
		TotalYield:         p.TotalYield,
		TotalOperatingCost: p.TotalOperatingCost,
		PayoffValue:        p.PayoffValue,
	}
}

// PeriodResponse represents one schedule period.
type PeriodResponse struct {
	Index           int             `json:"index"`
	StartDate       time.Time       `json:"start_date"`
	EndDate         time.Time       `json:"end_date"`
	Rate            decimal.Decimal `json:"rate"`
	Capital         decimal.Decimal `json:"capital"`
	Yield           decimal.Decimal `json:"yield"`
	OperatingCost   decimal.Decimal `json:"operating_cost"`
	AccumulatedRent decimal.Decimal `json:"accumulated_rent"`
	EndingCapital   decimal.Decimal `json:"ending_capital"`
}

// ScheduleResponse represents a schedule. Periods are only present on the
// full-detail read.
type ScheduleResponse struct {
	ID           string           `json:"id"`
	ProjectionID string           `json:"projection_id"`
	Active       bool             `json:"active"`
	Periods      []PeriodResponse `json:"periods,omitempty"`
}

// ScheduleFromDomain converts a schedule, tolerating nil.
func ScheduleFromDomain(s *domain.Schedule) *ScheduleResponse {
	if s == nil {
		return nil
	}
	resp := &ScheduleResponse{
		ID:           s.ID,
		ProjectionID: s.ProjectionID,
		Active:       s.Active,
	}
	for _, p := range s.Periods {
		resp.Periods = append(resp.Periods, PeriodResponse{
			Index:           p.Index,
			StartDate:       p.StartDate,
			EndDate:         p.EndDate,
			Rate:            p.Rate,
			Capital:         p.Capital,
			Yield:           p.Yield,
			OperatingCost:   p.OperatingCost,
			AccumulatedRent: p.AccumulatedRent,
			EndingCapital:   p.EndingCapital,
		})
	}
	return resp
}

// AmendmentDetailResponse joins an amendment with what it references.
type AmendmentDetailResponse struct {
	Amendment           *AmendmentResponse  `json:"amendment"`
	ActiveProjectionID  string              `json:"active_projection_id,omitempty"`
	OriginalProjection  *ProjectionResponse `json:"original_projection"`
	OriginalSchedule    *ScheduleResponse   `json:"original_schedule"`
	IncrementProjection *ProjectionResponse `json:"increment_projection"`
	IncrementSchedule   *ScheduleResponse   `json:"increment_schedule"`
}

// AmendmentDetailFromDomain converts a detail view.
func AmendmentDetailFromDomain(d *domain.AmendmentDetail) *AmendmentDetailResponse {
	resp := &AmendmentDetailResponse{
		Amendment:           AmendmentFromDomain(d.Amendment),
		OriginalProjection:  ProjectionFromDomain(d.OriginalProjection),
		OriginalSchedule:    ScheduleFromDomain(d.OriginalSchedule),
		IncrementProjection: ProjectionFromDomain(d.IncrementProjection),
		IncrementSchedule:   ScheduleFromDomain(d.IncrementSchedule),
	}
	if d.Investment != nil {
		resp.ActiveProjectionID = d.Investment.ActiveProjectionID
	}
	return resp
}

// ContractNumberResponse carries a minted contract number.
type ContractNumberResponse struct {
	RequestID    string `json:"request_id"`
	ProjectionID string `json:"projection_id"`
	Number       string `json:"number"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}
