package domain

import (
	"fmt"
	"time"
)

// Mandate sequence values for SEPA direct debit collections.
const (
	MandateSequenceSingle    = 1
	MandateSequenceFirst     = 2
	MandateSequenceRecurring = 3
	MandateSequenceLast      = 4
)

// Mandate carries SEPA direct-debit authorization metadata.
type Mandate struct {
	Reference    string
	SignedOn     time.Time
	ReceiverName string
	Sequence     int // one of the MandateSequence* values, 0 to omit
}

// ValidateSequence rejects sequence values outside 1-4. Zero means the field
// is not sent at all.
func (m *Mandate) ValidateSequence() error {
	if m.Sequence < 0 || m.Sequence > MandateSequenceLast {
		return fmt.Errorf("mandate sequence must be one of %d, %d, %d, %d",
			MandateSequenceSingle, MandateSequenceFirst, MandateSequenceRecurring, MandateSequenceLast)
	}
	return nil
}

// ShippingAddress is the Paydirekt delivery address, taken from the host
// framework's card/customer object.
type ShippingAddress struct {
	FirstName  string
	LastName   string
	Company    string
	Street     string
	Additional string
	ZipCode    string
	City       string
	Country    string
	Email      string
}

// Item is one Paydirekt cart line. GrossAmount is in minor currency units.
type Item struct {
	Name        string `json:"name"`
	EAN         string `json:"ean,omitempty"`
	Quantity    int    `json:"quantity"`
	GrossAmount int64  `json:"grossAmount"`
}

// NewItem builds a cart line from a major-unit decimal price string, applying
// the lossy multiply-by-100-and-truncate rule.
func NewItem(name string, quantity int, price string) (Item, error) {
	minor, err := MinorUnits(price)
	if err != nil {
		return Item{}, fmt.Errorf("item %q: %w", name, err)
	}
	return Item{Name: name, Quantity: quantity, GrossAmount: minor}, nil
}

// InfoLabel is one of the up to five optional label/text pairs shown on the
// Giropay payment page.
type InfoLabel struct {
	Label string
	Text  string
}

// TransactionRequest is the single request value type for all operations.
// The Mode and the gateway's PaymentMethod select which fields apply, and
// the field policy validates the combination.
type TransactionRequest struct {
	// Merchant-assigned transaction id, mandatory for initiations and
	// capture/refund/void.
	TransactionID string

	// Amount in minor currency units plus ISO 4217 code.
	AmountMinor int64
	Currency    string

	// Free-text purpose, truncated per method before hashing.
	Description string

	// Interface variant. Zero value behaves as interactive.
	Mode Mode

	// Callback URLs. ReturnURL receives the payer after the hosted form;
	// NotifyURL receives the back-channel result.
	ReturnURL string
	NotifyURL string

	// Provider-issued reference of a prior transaction; required by
	// capture, refund and void.
	Reference string

	// Bank details (direct debit offline, EPS/Giropay).
	BIC           string
	IBAN          string
	BankCode      string
	BankAccount   string
	AccountHolder string
	Mandate       *Mandate

	// Stored-card handling. CardReference is an existing PKN; CreateCard
	// asks the provider to mint one. A present CardReference silently wins.
	CardReference string
	CreateCard    bool

	// Mobile display optimisation; nil leaves the field out entirely.
	Mobile *bool

	// Giropay page labels.
	Info []InfoLabel

	// Paydirekt.
	OrderID                 string
	Shipping                *ShippingAddress
	Items                   []Item
	ReconciliationReference string // refunds only

	// PaymentPage display options.
	PayMethods  []int
	FixedValues []int64
	FreeAmount  bool
	MinAmount   int64
	MaxAmount   int64
	TestMode    bool
	SuccessURL  string
	CancelURL   string
	FailURL     string
}
