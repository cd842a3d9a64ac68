package girocheckout

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// Protocol-level result code of an API call ("rc" in responses).
const ProtocolSuccess = 0

// Payment-level result codes ("resultPayment"/"gcResultPayment"). These are
// the handful the classification logic checks for explicitly; every other
// code means failure.
const (
	ResultPaymentSuccess   = 4000
	ResultPaymentPending   = 4152 // asynchronous PayPal wallet payment
	ResultPaymentCancelled = 4502
	ResultPaymentRejected  = 4900
)

// Age verification result codes for GiropayID.
const (
	AgeVerificationSuccess     = 4020
	AgeVerificationNotPossible = 4021
	AgeVerificationFailed      = 4022
)

// Status is the generic transaction status vocabulary of the host framework.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Classify maps a payment result code to a transaction status. The mapping
// is a strict allow-list: exactly one code completes, exactly one is
// pending, and anything else - including codes the provider adds later -
// fails until explicitly listed here.
func Classify(code int) Status {
	switch code {
	case ResultPaymentSuccess:
		return StatusCompleted
	case ResultPaymentPending:
		return StatusPending
	default:
		return StatusFailed
	}
}

//go:embed messages.json
var messagesJSON []byte

type resultMessage struct {
	Code    int    `json:"code"`
	English string `json:"message-en"`
	German  string `json:"message-de"`
}

// Loaded once at process start; read-only afterwards, safe for concurrent use.
var resultMessages map[int]resultMessage

func init() {
	var entries []resultMessage
	if err := json.Unmarshal(messagesJSON, &entries); err != nil {
		panic(fmt.Sprintf("girocheckout: bundled messages.json is invalid: %v", err))
	}
	resultMessages = make(map[int]resultMessage, len(entries))
	for _, e := range entries {
		resultMessages[e.Code] = e
	}
}

// Message returns the human-readable text for a result code. Locale "de"
// selects German; anything else falls back to English. Unknown codes yield
// an empty string, not an error.
func Message(code int, locale string) string {
	m, ok := resultMessages[code]
	if !ok {
		return ""
	}
	if locale == "de" {
		return m.German
	}
	return m.English
}
