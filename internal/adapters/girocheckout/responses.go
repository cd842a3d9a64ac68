package girocheckout

import (
	"fmt"
	"strconv"
	"strings"
)

// rawResponse is the decoded JSON body of a direct API call. Accessors
// coerce the loosely typed values; the provider is inconsistent about
// numbers-as-strings.
type rawResponse map[string]any

func (r rawResponse) str(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		if v {
			return "1"
		}
		return "0"
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (r rawResponse) numOr(key string, def int) int {
	switch v := r[key].(type) {
	case float64:
		return int(v)
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func (r rawResponse) int64Or(key string, def int64) int64 {
	switch v := r[key].(type) {
	case float64:
		return int64(v)
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func (r rawResponse) flag(key string) bool {
	return r.numOr(key, 0) != 0
}

// apiResponse is the part every direct response shares: the protocol result
// code and its message. A missing rc counts as failed, never as success.
type apiResponse struct {
	data rawResponse
	lang string
}

// Code returns the protocol-level result code of the call. 0 is success.
func (r *apiResponse) Code() int {
	return r.data.numOr("rc", -1)
}

// Message returns the provider's own message for the call, if any.
func (r *apiResponse) Message() string {
	return r.data.str("msg")
}

// InitiationResponse classifies the answer to an authorize or purchase
// initiation.
type InitiationResponse struct {
	apiResponse
	offline bool
}

// TransactionReference is the provider-issued transaction id. It, not the
// merchant tx id, anchors all follow-up operations.
func (r *InitiationResponse) TransactionReference() string {
	return r.data.str("reference")
}

// RedirectURL is where to send the payer next, for interactive flows.
func (r *InitiationResponse) RedirectURL() string {
	return r.data.str("redirect")
}

// IsRedirect reports whether the payer must now be redirected.
func (r *InitiationResponse) IsRedirect() bool {
	return r.Code() == ProtocolSuccess && r.RedirectURL() != ""
}

// ReasonCode is the payment-level result, present on offline initiations.
func (r *InitiationResponse) ReasonCode() int {
	return r.data.numOr("resultPayment", 0)
}

// IsSuccessful reports immediate completion. Interactive initiations are
// never complete at this point - the redirect and the follow-up notification
// still have to happen. Offline calls complete immediately when both the
// protocol code and the payment reason agree.
func (r *InitiationResponse) IsSuccessful() bool {
	if !r.offline {
		return false
	}
	return r.Code() == ProtocolSuccess && r.ReasonCode() == ResultPaymentSuccess
}

// CardReference returns the PKN minted by an offline initiation that asked
// for one.
func (r *InitiationResponse) CardReference() string {
	return r.data.str("pkn")
}

// ReasonMessage translates the payment reason code for the given locale.
func (r *InitiationResponse) ReasonMessage(locale string) string {
	return Message(r.ReasonCode(), locale)
}

// SettlementResponse classifies capture, refund and void answers. These are
// the two-axis responses: the call can succeed at the protocol level while
// the payment itself is declined, and that is a failed settlement, not a
// partial success.
type SettlementResponse struct {
	apiResponse
}

// ReasonCode is the payment-level result code.
func (r *SettlementResponse) ReasonCode() int {
	return r.data.numOr("resultPayment", 0)
}

// IsSuccessful requires success on both axes.
func (r *SettlementResponse) IsSuccessful() bool {
	return r.Code() == ProtocolSuccess && r.ReasonCode() == ResultPaymentSuccess
}

// TransactionReference is the provider reference of this settlement.
func (r *SettlementResponse) TransactionReference() string {
	return r.data.str("reference")
}

// ParentReference is the provider reference of the transaction that was
// captured, refunded or voided.
func (r *SettlementResponse) ParentReference() string {
	return r.data.str("referenceParent")
}

// TransactionID is the merchant's own transaction id, echoed back.
func (r *SettlementResponse) TransactionID() string {
	return r.data.str("merchantTxId")
}

// BackendTransactionID is the provider's settlement backend id.
func (r *SettlementResponse) BackendTransactionID() string {
	return r.data.str("backendTxId")
}

// AmountMinor is the settled amount in minor units.
func (r *SettlementResponse) AmountMinor() int64 {
	return r.data.int64Or("amount", 0)
}

// Currency is the ISO currency code of the settlement.
func (r *SettlementResponse) Currency() string {
	return r.data.str("currency")
}

// ReasonMessage translates the payment reason code for the given locale.
func (r *SettlementResponse) ReasonMessage(locale string) string {
	return Message(r.ReasonCode(), locale)
}

// CardInfoResponse wraps the stored-card lookup. Lookups succeed on the
// protocol code alone; they carry no payment reason.
type CardInfoResponse struct {
	apiResponse
}

func (r *CardInfoResponse) IsSuccessful() bool {
	return r.Code() == ProtocolSuccess
}

// CardReference is the PKN to use for repeat and offline charges.
func (r *CardInfoResponse) CardReference() string {
	return r.data.str("pkn")
}

// MaskedNumber returns the masked card number, typically
// "411111******1111". A non-default mask character replaces the asterisks.
func (r *CardInfoResponse) MaskedNumber(mask string) string {
	number := r.data.str("cardnumber")
	if mask != "" && mask != "*" {
		number = strings.ReplaceAll(number, "*", mask)
	}
	return number
}

// ExpiryMonth is the card expiry month without leading zeros.
func (r *CardInfoResponse) ExpiryMonth() int {
	return r.data.numOr("expiremonth", 0)
}

// ExpiryYear is the four-digit card expiry year.
func (r *CardInfoResponse) ExpiryYear() int {
	return r.data.numOr("expireyear", 0)
}

// TransactionStatusResponse wraps the transaction status lookup.
type TransactionStatusResponse struct {
	apiResponse
}

func (r *TransactionStatusResponse) IsSuccessful() bool {
	return r.Code() == ProtocolSuccess
}

// ReasonCode is the payment result of the looked-up transaction.
func (r *TransactionStatusResponse) ReasonCode() int {
	return r.data.numOr("resultPayment", 0)
}

// Status translates the payment result into the generic vocabulary.
func (r *TransactionStatusResponse) Status() Status {
	return Classify(r.ReasonCode())
}

// BackendTransactionID is the provider's backend id for the transaction.
func (r *TransactionStatusResponse) BackendTransactionID() string {
	return r.data.str("backendTxId")
}

// ReasonMessage translates the payment reason code for the given locale.
func (r *TransactionStatusResponse) ReasonMessage(locale string) string {
	return Message(r.ReasonCode(), locale)
}

// BankStatusResponse wraps the Giropay bank capability check.
type BankStatusResponse struct {
	apiResponse
}

func (r *BankStatusResponse) IsSuccessful() bool {
	return r.Code() == ProtocolSuccess
}

func (r *BankStatusResponse) BIC() string {
	return r.data.str("bic")
}

func (r *BankStatusResponse) BankName() string {
	return r.data.str("bankname")
}

// SupportsGiropay reports whether the bank can process Giropay payments.
func (r *BankStatusResponse) SupportsGiropay() bool {
	return r.data.flag("giropay")
}

// SupportsGiropayID reports whether the bank can process GiropayID checks.
func (r *BankStatusResponse) SupportsGiropayID() bool {
	return r.data.flag("giropayid")
}

// IssuersResponse wraps the issuer bank list.
type IssuersResponse struct {
	apiResponse
}

func (r *IssuersResponse) IsSuccessful() bool {
	return r.Code() == ProtocolSuccess
}

// Issuers returns bank names keyed by BIC.
func (r *IssuersResponse) Issuers() map[string]string {
	out := make(map[string]string)
	if m, ok := r.data["issuer"].(map[string]any); ok {
		for bic, name := range m {
			if s, ok := name.(string); ok {
				out[bic] = s
			}
		}
	}
	return out
}

// Project is one PaymentPage-enabled project of the merchant.
type Project struct {
	ID         string
	Name       string
	PayMethods string
	Mode       string // TEST or LIVE
}

// ProjectsResponse wraps the PaymentPage project list.
type ProjectsResponse struct {
	apiResponse
}

func (r *ProjectsResponse) IsSuccessful() bool {
	return r.Code() == ProtocolSuccess
}

// Projects returns the configured projects.
func (r *ProjectsResponse) Projects() []Project {
	list, ok := r.data["projects"].([]any)
	if !ok {
		return nil
	}
	out := make([]Project, 0, len(list))
	for _, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		raw := rawResponse(m)
		out = append(out, Project{
			ID:         raw.str("id"),
			Name:       raw.str("name"),
			PayMethods: raw.str("paymethods"),
			Mode:       raw.str("mode"),
		})
	}
	return out
}

// SenderInfoResponse wraps the Giropay sender lookup.
type SenderInfoResponse struct {
	apiResponse
}

func (r *SenderInfoResponse) IsSuccessful() bool {
	return r.Code() == ProtocolSuccess
}

func (r *SenderInfoResponse) AccountHolder() string {
	return r.data.str("accountholder")
}

func (r *SenderInfoResponse) IBAN() string {
	return r.data.str("iban")
}

func (r *SenderInfoResponse) BIC() string {
	return r.data.str("bic")
}
