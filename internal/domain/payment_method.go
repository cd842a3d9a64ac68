package domain

import (
	"fmt"
	"strings"
)

// PaymentMethod identifies the GiroCheckout payment method a request is built
// for. The set is closed; the gateway rejects anything outside it.
type PaymentMethod string

const (
	MethodCreditCard  PaymentMethod = "CreditCard"
	MethodDirectDebit PaymentMethod = "DirectDebit"
	MethodMaestro     PaymentMethod = "Maestro"
	MethodGiropay     PaymentMethod = "Giropay"
	MethodGiropayID   PaymentMethod = "GiropayID"
	MethodEPS         PaymentMethod = "eps"
	MethodPayPal      PaymentMethod = "PayPal"
	MethodPaydirekt   PaymentMethod = "Paydirekt"
	MethodPaymentPage PaymentMethod = "PaymentPage"
)

// DefaultMethod is used when a gateway is configured without an explicit
// payment method.
const DefaultMethod = MethodCreditCard

var paymentMethods = []PaymentMethod{
	MethodCreditCard,
	MethodDirectDebit,
	MethodMaestro,
	MethodGiropay,
	MethodGiropayID,
	MethodEPS,
	MethodPayPal,
	MethodPaydirekt,
	MethodPaymentPage,
}

// ParsePaymentMethod matches a method name case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for _, m := range paymentMethods {
		if strings.EqualFold(string(m), s) {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

// Valid reports whether m is one of the closed set of methods.
func (m PaymentMethod) Valid() bool {
	for _, known := range paymentMethods {
		if m == known {
			return true
		}
	}
	return false
}

func (m PaymentMethod) String() string { return string(m) }

// RequiresBIC reports whether the method cannot initiate without a bank
// identifier code.
func (m PaymentMethod) RequiresBIC() bool {
	return m == MethodEPS || m == MethodGiropay
}

// CarriesAmount reports whether initiation requests for the method carry a
// monetary amount. GiropayID is pure ID verification and carries none.
func (m PaymentMethod) CarriesAmount() bool {
	return m != MethodGiropayID
}

// SupportsPKN reports whether the method can reference a stored pseudo card
// number.
func (m PaymentMethod) SupportsPKN() bool {
	return m == MethodCreditCard || m == MethodDirectDebit
}

// Mode selects the interface variant of an initiation request. Interactive
// sends the payer to a hosted form; offline and recurring are
// server-to-server and suppress all display fields.
type Mode string

const (
	ModeInteractive Mode = "interactive"
	ModeOffline     Mode = "offline"
	ModeRecurring   Mode = "recurring"
)

// Interactive reports whether the payer is present. The zero value counts as
// interactive so a bare TransactionRequest behaves like the hosted flow.
func (m Mode) Interactive() bool {
	return m == ModeInteractive || m == ""
}

func (m Mode) Valid() bool {
	return m == "" || m == ModeInteractive || m == ModeOffline || m == ModeRecurring
}
