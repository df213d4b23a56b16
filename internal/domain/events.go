package domain

import "time"

// Event types
const (
	EventTypeAmendmentCreated            = "amendment.created"
	EventTypeAmendmentDocumentsGenerated = "amendment.documents_generated"
	EventTypeAmendmentCompleted          = "amendment.completed"
	EventTypeContractNumberMinted        = "contract_number.minted"
)

// Aggregate types
const (
	AggregateTypeAmendment = "amendment"
	AggregateTypeContract  = "contract"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// AmendmentEventPayload builds the common payload for amendment events.
func AmendmentEventPayload(a *Amendment) map[string]any {
	payload := map[string]any{
		"amendment_id":     a.ID,
		"investment_id":    a.InvestmentID,
		"name":             a.Name,
		"state":            a.State.String(),
		"increment_period": a.IncrementPeriod,
		"increment_amount": a.IncrementAmount.String(),
	}
	if a.IncrementProjectionID != nil {
		payload["increment_projection_id"] = *a.IncrementProjectionID
	}
	if a.IncrementScheduleID != nil {
		payload["increment_schedule_id"] = *a.IncrementScheduleID
	}
	return payload
}
