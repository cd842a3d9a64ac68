package girocheckout

import (
	"github.com/girokit/girocheckout-go/internal/domain"
	pkgerrors "github.com/girokit/girocheckout-go/pkg/errors"
)

// BuildCapture builds the envelope collecting a previously authorized
// amount. The prior transaction is referenced by the provider-issued
// reference, not the merchant's own id: after initiation the provider is the
// source of truth for transaction identity.
//
// Field order here is the one the live API accepts. The published docs list
// `reference` earlier in the set; the API rejects that ordering with a hash
// error, so the docs lose.
func BuildCapture(cfg Config, req *domain.TransactionRequest) (*Envelope, error) {
	return buildSettlement(cfg, pathCapture, req)
}

// BuildRefund builds the envelope returning a captured amount to the payer.
func BuildRefund(cfg Config, req *domain.TransactionRequest) (*Envelope, error) {
	return buildSettlement(cfg, pathRefund, req)
}

func buildSettlement(cfg Config, path string, req *domain.TransactionRequest) (*Envelope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if req.TransactionID == "" {
		return nil, pkgerrors.NewValidationError("merchantTxId", "is required")
	}
	if req.Reference == "" {
		return nil, pkgerrors.NewValidationError("reference",
			"the reference of the prior transaction is required")
	}
	if req.Currency == "" {
		return nil, pkgerrors.NewValidationError("currency", "is required")
	}

	f := NewFields()
	f.Set("merchantId", cfg.MerchantID)
	f.Set("projectId", cfg.ProjectID)
	f.Set("merchantTxId", req.TransactionID)
	f.Set("amount", domain.FormatMinor(req.AmountMinor))
	f.Set("currency", req.Currency)
	f.Set("reference", req.Reference)

	if req.Description != "" {
		f.Set("purpose", truncate(req.Description, purposeLength))
	}

	// Paydirekt refunds can carry a reconciliation reference for the
	// merchant's settlement report.
	if path == pathRefund && cfg.PaymentMethod == domain.MethodPaydirekt &&
		req.ReconciliationReference != "" {
		f.Set("merchantReconciliationReferenceNumber", req.ReconciliationReference)
	}

	f.Set(hashField, Sign(f, cfg.Passphrase))
	return &Envelope{Path: path, Fields: f}, nil
}

// BuildVoid builds the envelope cancelling an uncaptured authorization. No
// amount applies; the whole authorization is released.
func BuildVoid(cfg Config, req *domain.TransactionRequest) (*Envelope, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if req.Reference == "" {
		return nil, pkgerrors.NewValidationError("reference",
			"the reference of the prior transaction is required")
	}

	f := NewFields()
	f.Set("merchantId", cfg.MerchantID)
	f.Set("projectId", cfg.ProjectID)
	f.Set("merchantTxId", req.TransactionID)
	f.Set("reference", req.Reference)
	f.Set(hashField, Sign(f, cfg.Passphrase))
	return &Envelope{Path: pathVoid, Fields: f}, nil
}
