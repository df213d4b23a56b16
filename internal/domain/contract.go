package domain

import (
	"fmt"
	"time"
)

// ContractSequence maps a (request, projection) pair to its contract number.
// Rows are write-once.
type ContractSequence struct {
	RequestID    string
	ProjectionID string
	Year         int
	Sequence     int
	Number       string
	CreatedAt    time.Time
}

// FormatContractNumber renders the YEAR-SEQ contract number.
func FormatContractNumber(year, seq int) string {
	return fmt.Sprintf("%d-%04d", year, seq)
}

// ContractKey is the cache/coalescing key for a pair.
func ContractKey(requestID, projectionID string) string {
	return requestID + ":" + projectionID
}
