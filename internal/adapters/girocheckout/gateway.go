package girocheckout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/girokit/girocheckout-go/internal/adapters/ports"
	"github.com/girokit/girocheckout-go/internal/domain"
	pkgerrors "github.com/girokit/girocheckout-go/pkg/errors"
	"github.com/girokit/girocheckout-go/pkg/observability"
)

// Gateway is the entry point of the adapter: one method per API operation.
// It builds the signed envelope, posts it through the transport seam,
// verifies the response hash and hands back a classified response.
//
// A Gateway is immutable after New and safe for concurrent use. It keeps no
// per-transaction state and never retries; retry policy belongs to the
// caller.
type Gateway struct {
	cfg    Config
	client ports.HTTPClient
	logger *zap.Logger
}

// New validates the configuration and builds a gateway. A nil logger is
// replaced with a no-op logger.
func New(cfg Config, client ports.HTTPClient, logger *zap.Logger) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if client == nil {
		return nil, fmt.Errorf("girocheckout: http client must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{cfg: cfg, client: client, logger: logger}, nil
}

// Authorize initiates an authorization. Interactive modes answer with a
// redirect URL; offline and recurring modes settle immediately.
func (g *Gateway) Authorize(ctx context.Context, req *domain.TransactionRequest) (*InitiationResponse, error) {
	return g.initiate(ctx, "authorize", BuildAuthorize, req)
}

// Purchase initiates an authorization plus capture in one step.
func (g *Gateway) Purchase(ctx context.Context, req *domain.TransactionRequest) (*InitiationResponse, error) {
	return g.initiate(ctx, "purchase", BuildPurchase, req)
}

func (g *Gateway) initiate(ctx context.Context, op string,
	build func(Config, *domain.TransactionRequest) (*Envelope, error),
	req *domain.TransactionRequest) (*InitiationResponse, error) {

	env, err := build(g.cfg, req)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, op, env)
	if err != nil {
		return nil, err
	}
	return &InitiationResponse{
		apiResponse: g.wrap(data),
		offline:     !req.Mode.Interactive(),
	}, nil
}

// Capture collects a previously authorized amount.
func (g *Gateway) Capture(ctx context.Context, req *domain.TransactionRequest) (*SettlementResponse, error) {
	return g.settle(ctx, "capture", BuildCapture, req)
}

// Refund returns a captured amount to the payer.
func (g *Gateway) Refund(ctx context.Context, req *domain.TransactionRequest) (*SettlementResponse, error) {
	return g.settle(ctx, "refund", BuildRefund, req)
}

// Void cancels an uncaptured authorization.
func (g *Gateway) Void(ctx context.Context, req *domain.TransactionRequest) (*SettlementResponse, error) {
	return g.settle(ctx, "void", BuildVoid, req)
}

func (g *Gateway) settle(ctx context.Context, op string,
	build func(Config, *domain.TransactionRequest) (*Envelope, error),
	req *domain.TransactionRequest) (*SettlementResponse, error) {

	env, err := build(g.cfg, req)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, op, env)
	if err != nil {
		return nil, err
	}
	return &SettlementResponse{apiResponse: g.wrap(data)}, nil
}

// GetCard fetches the stored-card details saved by a prior transaction.
func (g *Gateway) GetCard(ctx context.Context, reference string) (*CardInfoResponse, error) {
	env, err := BuildGetCard(g.cfg, reference)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, "get_card", env)
	if err != nil {
		return nil, err
	}
	return &CardInfoResponse{apiResponse: g.wrap(data)}, nil
}

// GetTransaction fetches the status of a prior transaction.
func (g *Gateway) GetTransaction(ctx context.Context, reference string) (*TransactionStatusResponse, error) {
	env, err := BuildGetTransaction(g.cfg, reference)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, "get_transaction", env)
	if err != nil {
		return nil, err
	}
	return &TransactionStatusResponse{apiResponse: g.wrap(data)}, nil
}

// BankStatus checks whether a bank supports Giropay.
func (g *Gateway) BankStatus(ctx context.Context, bic string) (*BankStatusResponse, error) {
	env, err := BuildBankStatus(g.cfg, bic)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, "bank_status", env)
	if err != nil {
		return nil, err
	}
	return &BankStatusResponse{apiResponse: g.wrap(data)}, nil
}

// Issuers lists all Giropay-supporting banks.
func (g *Gateway) Issuers(ctx context.Context) (*IssuersResponse, error) {
	env, err := BuildIssuers(g.cfg)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, "issuers", env)
	if err != nil {
		return nil, err
	}
	return &IssuersResponse{apiResponse: g.wrap(data)}, nil
}

// Projects lists the merchant's PaymentPage-enabled projects.
func (g *Gateway) Projects(ctx context.Context) (*ProjectsResponse, error) {
	env, err := BuildProjects(g.cfg)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, "projects", env)
	if err != nil {
		return nil, err
	}
	return &ProjectsResponse{apiResponse: g.wrap(data)}, nil
}

// SenderInfo fetches the payer's account details of a completed Giropay
// transaction.
func (g *Gateway) SenderInfo(ctx context.Context, reference string) (*SenderInfoResponse, error) {
	env, err := BuildSenderInfo(g.cfg, reference)
	if err != nil {
		return nil, err
	}
	data, err := g.call(ctx, "sender_info", env)
	if err != nil {
		return nil, err
	}
	return &SenderInfoResponse{apiResponse: g.wrap(data)}, nil
}

// CompleteAuthorize verifies and classifies the query values the payer
// brings back from the hosted form after an authorization.
func (g *Gateway) CompleteAuthorize(values url.Values) (*Notification, error) {
	return g.parseNotification(values)
}

// CompletePurchase verifies and classifies the query values the payer
// brings back from the hosted form after a purchase.
func (g *Gateway) CompletePurchase(values url.Values) (*Notification, error) {
	return g.parseNotification(values)
}

// AcceptNotification verifies and classifies a back-channel notification.
// With EnrichNotifications enabled it additionally fetches stored-card
// details when a successful payment arrives without them.
func (g *Gateway) AcceptNotification(ctx context.Context, values url.Values) (*Notification, error) {
	n, err := g.parseNotification(values)
	if err != nil {
		return nil, err
	}

	// TODO: default EnrichNotifications on once the pkninfo response hash
	// mismatch seen against the recorded fixtures is resolved; the lookup
	// works against the live API.
	if g.cfg.EnrichNotifications && n.IsSuccessful() &&
		n.CardReference() == "" && n.TransactionReference() != "" {
		g.enrichNotification(ctx, n)
	}
	return n, nil
}

func (g *Gateway) parseNotification(values url.Values) (*Notification, error) {
	n, err := ParseNotification(values, g.cfg.Passphrase, g.cfg.Language)
	if err != nil {
		observability.RecordHashFailure("notification")
		g.logger.Warn("rejected notification with invalid hash",
			zap.String("merchant_tx_id", values.Get("gcMerchantTxId")),
		)
		return nil, err
	}
	return n, nil
}

// enrichNotification is best effort: a failed lookup leaves the
// notification as delivered.
func (g *Gateway) enrichNotification(ctx context.Context, n *Notification) {
	card, err := g.GetCard(ctx, n.TransactionReference())
	if err != nil {
		g.logger.Warn("stored-card enrichment failed",
			zap.String("reference", n.TransactionReference()),
			zap.Error(err),
		)
		return
	}
	if !card.IsSuccessful() || card.CardReference() == "" {
		return
	}
	n.values.Set("gcPkn", card.CardReference())
	if number := card.MaskedNumber("*"); number != "" {
		n.values.Set("gcCardnumber", number)
	}
	if card.ExpiryMonth() != 0 && card.ExpiryYear() != 0 {
		n.values.Set("gcCardExpDate", fmt.Sprintf("%d/%d", card.ExpiryMonth(), card.ExpiryYear()))
	}
}

func (g *Gateway) wrap(data rawResponse) apiResponse {
	return apiResponse{data: data, lang: normalizeLanguage(g.cfg.Language)}
}

// call posts a signed envelope and returns the verified, decoded response
// body. The response hash arrives in the `hash` header and is checked
// against the raw body bytes before anything is parsed.
func (g *Gateway) call(ctx context.Context, op string, env *Envelope) (rawResponse, error) {
	start := time.Now()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.cfg.BaseURL+env.Path, strings.NewReader(env.Fields.Encode()))
	if err != nil {
		return nil, pkgerrors.NewTransportError(op, err)
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		observability.RecordRequest(op, "transport_error", time.Since(start))
		g.logger.Error("gateway request failed",
			zap.String("operation", op),
			zap.String("path", env.Path),
			zap.Error(err),
		)
		return nil, pkgerrors.NewTransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		observability.RecordRequest(op, "transport_error", time.Since(start))
		return nil, pkgerrors.NewTransportError(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		observability.RecordRequest(op, "transport_error", time.Since(start))
		g.logger.Error("gateway returned unexpected HTTP status",
			zap.String("operation", op),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, pkgerrors.NewTransportError(op,
			fmt.Errorf("unexpected HTTP status %d", resp.StatusCode))
	}

	headerHash := resp.Header.Get(responseHashHeader)
	if !VerifyBody(body, headerHash, g.cfg.Passphrase) {
		observability.RecordRequest(op, "integrity_error", time.Since(start))
		observability.RecordHashFailure("response")
		g.logger.Error("response hash does not validate, discarding payload",
			zap.String("operation", op),
		)
		return nil, pkgerrors.NewIntegrityError(SignBody(body, g.cfg.Passphrase), headerHash)
	}

	var data rawResponse
	if err := json.Unmarshal(body, &data); err != nil {
		observability.RecordRequest(op, "decode_error", time.Since(start))
		return nil, pkgerrors.NewTransportError(op, fmt.Errorf("decoding response body: %w", err))
	}

	observability.RecordRequest(op, "ok", time.Since(start))
	g.logger.Info("gateway call completed",
		zap.String("operation", op),
		zap.Int("rc", data.numOr("rc", -1)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}
