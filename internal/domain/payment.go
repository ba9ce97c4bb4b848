package domain

import "time"

// PaymentOutcome classifies how a gateway notification was handled. The
// gateway itself always receives a success acknowledgement; outcomes exist so
// operators can observe what actually happened.
type PaymentOutcome string

const (
	PaymentOutcomeApplied          PaymentOutcome = "applied"
	PaymentOutcomeInvalidSignature PaymentOutcome = "invalid_signature"
	PaymentOutcomeBadStatusCode    PaymentOutcome = "bad_status_code"
	PaymentOutcomeNotSuccess       PaymentOutcome = "status_not_success"
	PaymentOutcomeBadReference     PaymentOutcome = "bad_order_reference"
	PaymentOutcomeOrderNotFound    PaymentOutcome = "order_not_found"
	PaymentOutcomeStoreError       PaymentOutcome = "store_error"
)

// PaymentEvent is the audit record of one gateway notification, successful or
// not. Recording is best effort and never affects the acknowledgement.
type PaymentEvent struct {
	ID         string
	OrderRef   string
	Amount     string
	Currency   string
	StatusCode string
	Outcome    PaymentOutcome
	ReceivedAt time.Time
}
