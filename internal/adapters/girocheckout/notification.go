package girocheckout

import (
	"net/url"
	"strconv"
	"strings"

	pkgerrors "github.com/girokit/girocheckout-go/pkg/errors"
)

// The provider delivers the browser redirect and the back-channel
// notification identically: gc-prefixed query fields. This fixed subset, in
// exactly this order, is what the signature covers; gcHash carries it.
var notificationHashFields = []string{
	"gcReference",
	"gcMerchantTxId",
	"gcBackendTxId",
	"gcAmount",
	"gcCurrency",
	"gcResultPayment",
	notifyHashField,
}

// Notification is a verified completion/notification message. It is only
// ever constructed after the hash check has passed; an unverified payload
// surfaces as an IntegrityError with no field access at all.
type Notification struct {
	values url.Values
	lang   string
}

// ParseNotification extracts the provider fields from a redirect or
// notification request, verifies the signature and classifies the result.
// The returned error is an *errors.IntegrityError when the hash does not
// validate.
func ParseNotification(values url.Values, passphrase, language string) (*Notification, error) {
	f := NewFields()
	for _, key := range notificationHashFields {
		f.Set(key, values.Get(key))
	}

	supplied := values.Get(notifyHashField)
	if !Verify(f, supplied, passphrase) {
		return nil, pkgerrors.NewIntegrityError(Sign(f, passphrase), supplied)
	}

	return &Notification{values: values, lang: normalizeLanguage(language)}, nil
}

// ReasonCode is the payment result code delivered with the notification.
func (n *Notification) ReasonCode() int {
	code, err := strconv.Atoi(n.values.Get("gcResultPayment"))
	if err != nil {
		return 0
	}
	return code
}

// Status maps the reason code onto the generic transaction vocabulary.
func (n *Notification) Status() Status {
	return Classify(n.ReasonCode())
}

// IsSuccessful reports a completed payment.
func (n *Notification) IsSuccessful() bool {
	return n.ReasonCode() == ResultPaymentSuccess
}

// IsCancelled reports that the payer aborted. Only the one dedicated code
// counts; every other non-success outcome is a plain failure.
func (n *Notification) IsCancelled() bool {
	return n.ReasonCode() == ResultPaymentCancelled
}

// Message looks the reason code up in the bundled result-code table, since
// the notification itself carries no text.
func (n *Notification) Message() string {
	return Message(n.ReasonCode(), n.lang)
}

// TransactionReference is the provider-issued transaction id.
func (n *Notification) TransactionReference() string {
	return n.values.Get("gcReference")
}

// TransactionID is the merchant's own transaction id, echoed back.
func (n *Notification) TransactionID() string {
	return n.values.Get("gcMerchantTxId")
}

// BackendTransactionID is the provider's backend id.
func (n *Notification) BackendTransactionID() string {
	return n.values.Get("gcBackendTxId")
}

// AmountMinor is the paid amount in minor units.
func (n *Notification) AmountMinor() int64 {
	v, err := strconv.ParseInt(n.values.Get("gcAmount"), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// Currency is the ISO currency code.
func (n *Notification) Currency() string {
	return n.values.Get("gcCurrency")
}

// CardReference is the PKN saved during the payment, when one was created.
// Use it as the cardReference of later offline or recurring charges.
func (n *Notification) CardReference() string {
	return n.values.Get("gcPkn")
}

// MaskedNumber returns the masked card number delivered alongside a saved
// PKN. A non-default mask character replaces the asterisks.
func (n *Notification) MaskedNumber(mask string) string {
	number := n.values.Get("gcCardnumber")
	if mask != "" && mask != "*" {
		number = strings.ReplaceAll(number, "*", mask)
	}
	return number
}

// ExpiryMonth is the saved card's expiry month, 0 when absent.
func (n *Notification) ExpiryMonth() int {
	month, _ := n.expiryParts()
	return month
}

// ExpiryYear is the saved card's four-digit expiry year, 0 when absent.
func (n *Notification) ExpiryYear() int {
	_, year := n.expiryParts()
	return year
}

// gcCardExpDate arrives as "MM/YYYY".
func (n *Notification) expiryParts() (month, year int) {
	expiry := n.values.Get("gcCardExpDate")
	parts := strings.SplitN(expiry, "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	month, _ = strconv.Atoi(parts[0])
	year, _ = strconv.Atoi(parts[1])
	return month, year
}

// AgeVerificationResult is the GiropayID age verification code, 0 when the
// notification carries none.
func (n *Notification) AgeVerificationResult() int {
	code, err := strconv.Atoi(n.values.Get("gcResultAVS"))
	if err != nil {
		return 0
	}
	return code
}

// IsAgeVerified reports a successful GiropayID age verification.
func (n *Notification) IsAgeVerified() bool {
	return n.AgeVerificationResult() == AgeVerificationSuccess
}

// VerifiedName is the optional payer name field of a GiropayID check.
func (n *Notification) VerifiedName() string {
	return n.values.Get("gcObvName")
}
