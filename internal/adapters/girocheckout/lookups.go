package girocheckout

import (
	"fmt"

	"github.com/girokit/girocheckout-go/internal/domain"
	pkgerrors "github.com/girokit/girocheckout-go/pkg/errors"
)

// Lookup builders. All lookups are backend calls referencing either a prior
// transaction or nothing beyond the project credentials; none of them carry
// callback URLs or payment fields.

// BuildGetCard queries the stored-card details (PKN) saved by a previous
// transaction that ran with CreateCard set.
func BuildGetCard(cfg Config, reference string) (*Envelope, error) {
	return buildReferenceLookup(cfg, pathCardInfo, reference)
}

// BuildGetTransaction queries the current status of a prior transaction.
func BuildGetTransaction(cfg Config, reference string) (*Envelope, error) {
	return buildReferenceLookup(cfg, pathTransactionStatus, reference)
}

// BuildSenderInfo queries the payer's account details for a completed
// Giropay transaction.
func BuildSenderInfo(cfg Config, reference string) (*Envelope, error) {
	if err := requireGiropay(cfg); err != nil {
		return nil, err
	}
	return buildReferenceLookup(cfg, pathSenderInfo, reference)
}

func buildReferenceLookup(cfg Config, path, reference string) (*Envelope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if reference == "" {
		return nil, pkgerrors.NewValidationError("reference", "is required")
	}

	f := NewFields()
	f.Set("merchantId", cfg.MerchantID)
	f.Set("projectId", cfg.ProjectID)
	f.Set("reference", reference)
	f.Set(hashField, Sign(f, cfg.Passphrase))
	return &Envelope{Path: path, Fields: f}, nil
}

// BuildBankStatus asks whether a bank, identified by BIC, supports Giropay.
func BuildBankStatus(cfg Config, bic string) (*Envelope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := requireGiropay(cfg); err != nil {
		return nil, err
	}
	if bic == "" {
		return nil, pkgerrors.NewValidationError("bic", "is required")
	}

	f := NewFields()
	f.Set("merchantId", cfg.MerchantID)
	f.Set("projectId", cfg.ProjectID)
	f.Set("bic", bic)
	f.Set(hashField, Sign(f, cfg.Passphrase))
	return &Envelope{Path: pathBankStatus, Fields: f}, nil
}

// BuildIssuers requests the list of all Giropay-supporting banks.
func BuildIssuers(cfg Config) (*Envelope, error) {
	if err := requireGiropay(cfg); err != nil {
		return nil, err
	}
	return buildBareLookup(cfg, pathIssuers)
}

// BuildProjects requests the PaymentPage-enabled projects of the merchant.
func BuildProjects(cfg Config) (*Envelope, error) {
	return buildBareLookup(cfg, pathProjects)
}

func buildBareLookup(cfg Config, path string) (*Envelope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	f := NewFields()
	f.Set("merchantId", cfg.MerchantID)
	f.Set("projectId", cfg.ProjectID)
	f.Set(hashField, Sign(f, cfg.Passphrase))
	return &Envelope{Path: path, Fields: f}, nil
}

func requireGiropay(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	m := cfg.PaymentMethod
	if m != domain.MethodGiropay && m != domain.MethodGiropayID {
		return pkgerrors.NewValidationError("paymentType",
			fmt.Sprintf("operation requires a Giropay project, got %s", m))
	}
	return nil
}
