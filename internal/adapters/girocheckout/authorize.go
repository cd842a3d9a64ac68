package girocheckout

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/girokit/girocheckout-go/internal/domain"
	pkgerrors "github.com/girokit/girocheckout-go/pkg/errors"
)

// Transaction types of an initiation request.
const (
	txTypeAuth = "AUTH" // authorization only
	txTypeSale = "SALE" // authorization + capture
)

// Sentinel PKN value asking the provider to mint and return a new token.
const pknCreate = "create"

// Purpose length caps. The hosted payment page allows fewer characters than
// every other method.
const (
	purposeLength        = 27
	payPagePurposeLength = 20
)

// Per-operation endpoint paths, appended to Config.BaseURL.
const (
	pathTransactionStart   = "transaction/start"   // interactive initiation
	pathTransactionPayment = "transaction/payment" // offline/recurring initiation
	pathPaymentPageInit    = "paypage/init"
	pathCapture            = "transaction/capture"
	pathRefund             = "transaction/refund"
	pathVoid               = "transaction/void"
	pathTransactionStatus  = "transaction/status"
	pathCardInfo           = "creditcard/pkninfo"
	pathBankStatus         = "giropay/bankstatus"
	pathIssuers            = "giropay/issuer"
	pathSenderInfo         = "giropay/senderinfo"
	pathProjects           = "paypage/projects"
)

// Envelope is a signed, ordered field map plus the endpoint path it must be
// posted to. The trailing hash field is always last.
type Envelope struct {
	Path   string
	Fields *Fields
}

// BuildAuthorize builds the signed initiation envelope for an authorization.
func BuildAuthorize(cfg Config, req *domain.TransactionRequest) (*Envelope, error) {
	return buildInitiation(cfg, txTypeAuth, req)
}

// BuildPurchase builds the signed initiation envelope for a purchase
// (authorization plus capture in one step).
func BuildPurchase(cfg Config, req *domain.TransactionRequest) (*Envelope, error) {
	return buildInitiation(cfg, txTypeSale, req)
}

// buildInitiation assembles the ordered field map for transaction/start or
// transaction/payment. Field order is significant: it feeds the hash.
func buildInitiation(cfg Config, txType string, req *domain.TransactionRequest) (*Envelope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	method := cfg.PaymentMethod

	if !req.Mode.Valid() {
		return nil, pkgerrors.NewValidationError("mode", fmt.Sprintf("unknown mode %q", req.Mode))
	}
	interactive := req.Mode.Interactive()
	if !interactive && method != domain.MethodCreditCard && method != domain.MethodDirectDebit {
		return nil, pkgerrors.NewValidationError("mode",
			fmt.Sprintf("offline and recurring payments are not supported for %s", method))
	}
	if req.TransactionID == "" {
		return nil, pkgerrors.NewValidationError("merchantTxId", "is required")
	}

	if method == domain.MethodPaymentPage {
		return buildPaymentPage(cfg, txType, req)
	}

	f := NewFields()
	f.Set("merchantId", cfg.MerchantID)
	f.Set("projectId", cfg.ProjectID)
	f.Set("merchantTxId", req.TransactionID)

	// The ID verification variant carries no monetary amount at all.
	if method.CarriesAmount() {
		if req.Currency == "" {
			return nil, pkgerrors.NewValidationError("currency", "is required")
		}
		f.Set("amount", domain.FormatMinor(req.AmountMinor))
		f.Set("currency", req.Currency)
	}

	// Truncation happens before hashing.
	f.Set("purpose", truncate(req.Description, purposeLength))

	if method.RequiresBIC() {
		if req.BIC == "" {
			return nil, pkgerrors.NewValidationError("bic",
				fmt.Sprintf("is required for %s payments", method))
		}
		f.Set("bic", req.BIC)
	}

	if method == domain.MethodGiropay {
		setGiropayFields(f, req)
	}

	cardish := method == domain.MethodCreditCard ||
		method == domain.MethodDirectDebit ||
		method == domain.MethodMaestro

	if cardish || method == domain.MethodPaydirekt {
		f.Set("type", txType)
	}

	// Locale and the mobile flag only make sense when the payer is being
	// sent to the hosted form.
	if cardish && interactive {
		if locale := normalizeLanguage(cfg.Language); locale != "" {
			f.Set("locale", locale)
		}
		if req.Mobile != nil {
			f.Set("mobile", domain.FormatFlag(*req.Mobile))
		}
	}

	if method == domain.MethodDirectDebit {
		if err := setDirectDebitFields(f, req, interactive); err != nil {
			return nil, err
		}
	}

	if method.SupportsPKN() {
		if err := setPKNField(f, method, req, interactive); err != nil {
			return nil, err
		}
	}

	if method == domain.MethodCreditCard {
		f.Set("recurring", domain.FormatFlag(!interactive))
	}

	if method == domain.MethodPaydirekt {
		if err := setPaydirektFields(f, req); err != nil {
			return nil, err
		}
	}

	// Where to send the payer afterwards. Offline calls have no payer
	// present, so only the back channel applies.
	if interactive || method == domain.MethodPayPal {
		f.Set("urlRedirect", req.ReturnURL)
	}
	f.Set("urlNotify", req.NotifyURL)

	f.Set(hashField, Sign(f, cfg.Passphrase))

	path := pathTransactionStart
	if !interactive {
		path = pathTransactionPayment
	}
	return &Envelope{Path: path, Fields: f}, nil
}

func setGiropayFields(f *Fields, req *domain.TransactionRequest) {
	if req.IBAN != "" {
		f.Set("iban", req.IBAN)
	}
	for i, info := range req.Info {
		if i >= 5 {
			break
		}
		if info.Label == "" {
			continue
		}
		f.Set(fmt.Sprintf("info%dLabel", i+1), info.Label)
		f.Set(fmt.Sprintf("info%dText", i+1), info.Text)
	}
}

// setDirectDebitFields applies the direct-debit rules. Offline collections
// need a funding source and an account holder up front: the provider's own
// rejection for a missing field is an unhelpful "invalid hash".
func setDirectDebitFields(f *Fields, req *domain.TransactionRequest, interactive bool) error {
	if !interactive {
		haveBank := req.BankCode != "" && req.BankAccount != ""
		if req.IBAN == "" && !haveBank && req.CardReference == "" {
			return pkgerrors.NewValidationError("iban",
				"one of iban, bankCode+bankAccount or cardReference must be set for offline direct debit payments")
		}
		if req.IBAN != "" {
			f.Set("iban", req.IBAN)
		} else if req.CardReference == "" {
			f.Set("bankcode", req.BankCode)
			f.Set("bankaccount", req.BankAccount)
		}
		if req.AccountHolder == "" {
			return pkgerrors.NewValidationError("accountHolder",
				"must be set for offline direct debit payments")
		}
		f.Set("accountHolder", req.AccountHolder)
	}

	if m := req.Mandate; m != nil {
		if m.Reference != "" {
			f.Set("mandateReference", m.Reference)
		}
		if !m.SignedOn.IsZero() {
			f.Set("mandateSignedOn", m.SignedOn.Format("2006-01-02"))
		}
		if m.ReceiverName != "" {
			f.Set("mandateReceiverName", m.ReceiverName)
		}
		if m.Sequence != 0 {
			if err := m.ValidateSequence(); err != nil {
				return pkgerrors.NewValidationError("mandateSequence", err.Error())
			}
			f.Set("mandateSequence", strconv.Itoa(m.Sequence))
		}
	}
	return nil
}

// setPKNField applies the stored-card token rules. An existing token and a
// mint-new request are mutually exclusive; the existing token silently wins.
func setPKNField(f *Fields, method domain.PaymentMethod, req *domain.TransactionRequest, interactive bool) error {
	pkn := req.CardReference

	if method == domain.MethodCreditCard && !interactive && pkn == "" {
		return pkgerrors.NewValidationError("cardReference",
			"is required for a credit card payment without a payment page")
	}

	if pkn != "" {
		f.Set("pkn", pkn)
	} else if req.CreateCard {
		f.Set("pkn", pknCreate)
	}
	return nil
}

func setPaydirektFields(f *Fields, req *domain.TransactionRequest) error {
	if s := req.Shipping; s != nil {
		f.Set("shippingAddresseFirstName", s.FirstName)
		f.Set("shippingAddresseLastName", s.LastName)
		if s.Company != "" {
			f.Set("shippingCompany", s.Company)
		}
		if s.Additional != "" {
			f.Set("shippingAdditionalAddressInformation", s.Additional)
		}
		f.Set("shippingStreet", s.Street)
		f.Set("shippingZipCode", s.ZipCode)
		f.Set("shippingCity", s.City)
		f.Set("shippingCountry", s.Country)
		if s.Email != "" {
			f.Set("shippingEmail", s.Email)
		}
	}
	if req.OrderID != "" {
		f.Set("orderId", req.OrderID)
	}
	if len(req.Items) > 0 {
		for _, item := range req.Items {
			if item.Name == "" || item.Quantity <= 0 {
				return pkgerrors.NewValidationError("cart",
					"every cart item needs a name and a positive quantity")
			}
		}
		cart, err := json.Marshal(req.Items)
		if err != nil {
			return pkgerrors.NewValidationError("cart", err.Error())
		}
		f.Set("cart", string(cart))
	}
	return nil
}

// buildPaymentPage assembles the hosted-page initiation. The page abstracts
// the concrete method away, so it has its own display options and a separate
// callback URL per outcome instead of the single redirect+notify pair.
func buildPaymentPage(cfg Config, txType string, req *domain.TransactionRequest) (*Envelope, error) {
	if req.Currency == "" {
		return nil, pkgerrors.NewValidationError("currency", "is required")
	}

	f := NewFields()
	f.Set("merchantId", cfg.MerchantID)
	f.Set("projectId", cfg.ProjectID)
	f.Set("merchantTxId", req.TransactionID)
	f.Set("amount", domain.FormatMinor(req.AmountMinor))
	f.Set("currency", req.Currency)
	// The page shows the full description alongside the short purpose.
	f.Set("purpose", strings.TrimRight(truncate(req.Description, payPagePurposeLength), " "))
	f.Set("description", req.Description)
	f.Set("type", txType)

	if len(req.PayMethods) > 0 {
		methods := make([]string, len(req.PayMethods))
		for i, m := range req.PayMethods {
			methods[i] = strconv.Itoa(m)
		}
		f.Set("paymethods", strings.Join(methods, ","))
	}

	if len(req.FixedValues) > 0 {
		values := make([]string, len(req.FixedValues))
		for i, v := range req.FixedValues {
			values[i] = domain.FormatMinor(v)
		}
		encoded, err := json.Marshal(values)
		if err != nil {
			return nil, pkgerrors.NewValidationError("fixedValues", err.Error())
		}
		f.Set("fixedvalues", string(encoded))
	}

	if req.FreeAmount {
		f.Set("freeamount", domain.FormatFlag(true))
		// Fixed amounts override the free-amount bounds entirely.
		if len(req.FixedValues) == 0 {
			if req.MinAmount > 0 {
				f.Set("minamount", domain.FormatMinor(req.MinAmount))
			}
			if req.MaxAmount > 0 {
				f.Set("maxamount", domain.FormatMinor(req.MaxAmount))
			}
		}
	}

	if req.TestMode {
		f.Set("test", domain.FormatFlag(true))
	}

	if req.SuccessURL != "" {
		f.Set("successUrl", req.SuccessURL)
	}
	if req.CancelURL != "" {
		f.Set("backUrl", req.CancelURL)
	}
	if req.FailURL != "" {
		f.Set("failUrl", req.FailURL)
	}
	if req.NotifyURL != "" {
		f.Set("notifyUrl", req.NotifyURL)
	}

	f.Set(hashField, Sign(f, cfg.Passphrase))

	return &Envelope{Path: pathPaymentPageInit, Fields: f}, nil
}

// truncate cuts s to at most n characters, counting runes so multi-byte
// text cannot be corrupted mid-character.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
