package domain

// MaxProcessedPayments bounds the ledger of confirmed payment-session ids kept
// on the client to make the confirmation page reload-safe.
const MaxProcessedPayments = 10

// PaymentConfirmation is the backend's answer to a checkout confirmation.
type PaymentConfirmation struct {
	SessionID string `json:"sessionId"`
	OrderID   FlexID `json:"orderId"`
	Status    string `json:"status"`
	// AlreadyProcessed is set locally when the ledger short-circuits a reload.
	AlreadyProcessed bool `json:"alreadyProcessed"`
}
