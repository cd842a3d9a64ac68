package girocheckout

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/girokit/girocheckout-go/internal/domain"
	pkgerrors "github.com/girokit/girocheckout-go/pkg/errors"
)

type mockHTTPClient struct {
	DoFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.DoFunc(req)
}

// signedResponse builds an HTTP response whose hash header validates against
// the body.
func signedResponse(status int, body, passphrase string) *http.Response {
	header := http.Header{}
	header.Set("hash", SignBody([]byte(body), passphrase))
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newTestGateway(t *testing.T, method domain.PaymentMethod, client *mockHTTPClient) *Gateway {
	t.Helper()
	g, err := New(testConfig(method), client, zap.NewNop())
	require.NoError(t, err)
	return g
}

func TestNewValidatesInputs(t *testing.T) {
	_, err := New(Config{}, &mockHTTPClient{}, zap.NewNop())
	var verr *pkgerrors.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = New(testConfig(domain.MethodCreditCard), nil, zap.NewNop())
	require.Error(t, err)

	g, err := New(testConfig(domain.MethodCreditCard), &mockHTTPClient{}, nil)
	require.NoError(t, err)
	require.NotNil(t, g)
}

func TestGatewayPurchaseRedirect(t *testing.T) {
	var captured *http.Request
	var capturedBody string
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			captured = req
			raw, _ := io.ReadAll(req.Body)
			capturedBody = string(raw)
			body := `{"rc":0,"msg":"","reference":"ref-1","redirect":"https://pay.example/form"}`
			return signedResponse(http.StatusOK, body, "secret@46892"), nil
		},
	}

	g := newTestGateway(t, domain.MethodCreditCard, client)
	resp, err := g.Purchase(context.Background(), baseRequest())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, captured.Method)
	assert.Equal(t, DefaultBaseURL+pathTransactionStart, captured.URL.String())
	assert.Equal(t, "application/x-www-form-urlencoded; charset=utf-8",
		captured.Header.Get("Content-Type"))

	// the posted body is the signed form
	form, err := url.ParseQuery(capturedBody)
	require.NoError(t, err)
	assert.Equal(t, "12345678", form.Get("merchantId"))
	assert.Equal(t, "SALE", form.Get("type"))
	assert.NotEmpty(t, form.Get("hash"))

	assert.Equal(t, 0, resp.Code())
	assert.True(t, resp.IsRedirect())
	assert.Equal(t, "https://pay.example/form", resp.RedirectURL())
	assert.Equal(t, "ref-1", resp.TransactionReference())

	// interactive initiations are never complete yet
	assert.False(t, resp.IsSuccessful())
}

func TestGatewayOfflineAuthorizeSuccess(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			body := `{"rc":0,"msg":"","reference":"ref-2","resultPayment":4000,"pkn":"pkn-new"}`
			return signedResponse(http.StatusOK, body, "secret@46892"), nil
		},
	}

	req := baseRequest()
	req.Mode = domain.ModeOffline
	req.CardReference = "pkn-456"

	g := newTestGateway(t, domain.MethodCreditCard, client)
	resp, err := g.Authorize(context.Background(), req)
	require.NoError(t, err)

	assert.True(t, resp.IsSuccessful())
	assert.Equal(t, ResultPaymentSuccess, resp.ReasonCode())
	assert.Equal(t, "pkn-new", resp.CardReference())
}

func TestGatewayRejectsBadResponseHash(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			resp := signedResponse(http.StatusOK, `{"rc":0,"reference":"ref-1"}`, "secret@46892")
			resp.Header.Set("hash", "0000000000000000000000000000dead")
			return resp, nil
		},
	}

	g := newTestGateway(t, domain.MethodCreditCard, client)
	_, err := g.Purchase(context.Background(), baseRequest())

	var ierr *pkgerrors.IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "0000000000000000000000000000dead", ierr.Supplied)
}

func TestGatewayTransportFailures(t *testing.T) {
	t.Run("network error", func(t *testing.T) {
		client := &mockHTTPClient{
			DoFunc: func(req *http.Request) (*http.Response, error) {
				return nil, errors.New("connection refused")
			},
		}
		g := newTestGateway(t, domain.MethodCreditCard, client)
		_, err := g.Purchase(context.Background(), baseRequest())

		var terr *pkgerrors.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Equal(t, "purchase", terr.Op)
	})

	t.Run("http error status", func(t *testing.T) {
		client := &mockHTTPClient{
			DoFunc: func(req *http.Request) (*http.Response, error) {
				return signedResponse(http.StatusBadGateway, "upstream down", "secret@46892"), nil
			},
		}
		g := newTestGateway(t, domain.MethodCreditCard, client)
		_, err := g.Purchase(context.Background(), baseRequest())

		var terr *pkgerrors.TransportError
		require.ErrorAs(t, err, &terr)
		assert.Contains(t, terr.Error(), "502")
	})

	t.Run("undecodable body", func(t *testing.T) {
		client := &mockHTTPClient{
			DoFunc: func(req *http.Request) (*http.Response, error) {
				return signedResponse(http.StatusOK, "not json", "secret@46892"), nil
			},
		}
		g := newTestGateway(t, domain.MethodCreditCard, client)
		_, err := g.Purchase(context.Background(), baseRequest())

		var terr *pkgerrors.TransportError
		require.ErrorAs(t, err, &terr)
	})
}

// A settlement needs both the protocol code and the payment reason to agree.
func TestGatewayCaptureTwoAxisSuccess(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{name: "both succeed", body: `{"rc":0,"resultPayment":4000,"reference":"c-1","referenceParent":"ref-1"}`, want: true},
		{name: "payment declined", body: `{"rc":0,"resultPayment":4900,"reference":"c-1"}`, want: false},
		{name: "protocol failure", body: `{"rc":503,"msg":"system error"}`, want: false},
		{name: "missing rc never succeeds", body: `{"resultPayment":4000}`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockHTTPClient{
				DoFunc: func(req *http.Request) (*http.Response, error) {
					return signedResponse(http.StatusOK, tt.body, "secret@46892"), nil
				},
			}
			g := newTestGateway(t, domain.MethodCreditCard, client)
			resp, err := g.Capture(context.Background(), settlementRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.IsSuccessful())
		})
	}
}

func TestGatewayGetTransaction(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			body := `{"rc":0,"resultPayment":"4152","backendTxId":"b-7"}`
			return signedResponse(http.StatusOK, body, "secret@46892"), nil
		},
	}

	g := newTestGateway(t, domain.MethodCreditCard, client)
	resp, err := g.GetTransaction(context.Background(), "ref-1")
	require.NoError(t, err)

	// lookups succeed on the protocol code alone
	assert.True(t, resp.IsSuccessful())
	assert.Equal(t, StatusPending, resp.Status())
	assert.Equal(t, "b-7", resp.BackendTransactionID())
}

func TestGatewayGetCard(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			body := `{"rc":0,"pkn":"pkn-456","cardnumber":"411111******1111","expiremonth":"4","expireyear":"2027"}`
			return signedResponse(http.StatusOK, body, "secret@46892"), nil
		},
	}

	g := newTestGateway(t, domain.MethodCreditCard, client)
	resp, err := g.GetCard(context.Background(), "ref-1")
	require.NoError(t, err)

	assert.True(t, resp.IsSuccessful())
	assert.Equal(t, "pkn-456", resp.CardReference())
	assert.Equal(t, "411111xxxxxx1111", resp.MaskedNumber("x"))
	assert.Equal(t, 4, resp.ExpiryMonth())
	assert.Equal(t, 2027, resp.ExpiryYear())
}

func TestGatewayBankStatusAndIssuers(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			var body string
			switch req.URL.Path {
			case "/girocheckout/api/v2/" + pathBankStatus:
				body = `{"rc":0,"bic":"TESTDETT421","bankname":"Testbank","giropay":1,"giropayid":0}`
			case "/girocheckout/api/v2/" + pathIssuers:
				body = `{"rc":0,"issuer":{"TESTDETT421":"Testbank","GENODETT488":"GAD Testbank"}}`
			default:
				t.Fatalf("unexpected path %s", req.URL.Path)
			}
			return signedResponse(http.StatusOK, body, "secret@46892"), nil
		},
	}

	g := newTestGateway(t, domain.MethodGiropay, client)

	bank, err := g.BankStatus(context.Background(), "TESTDETT421")
	require.NoError(t, err)
	assert.Equal(t, "Testbank", bank.BankName())
	assert.True(t, bank.SupportsGiropay())
	assert.False(t, bank.SupportsGiropayID())

	issuers, err := g.Issuers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"TESTDETT421": "Testbank",
		"GENODETT488": "GAD Testbank",
	}, issuers.Issuers())
}

func TestGatewayProjects(t *testing.T) {
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			body := `{"rc":0,"projects":[{"id":"1234","name":"Shop","paymethods":"1,11","mode":"TEST"}]}`
			return signedResponse(http.StatusOK, body, "secret@46892"), nil
		},
	}

	g := newTestGateway(t, domain.MethodCreditCard, client)
	resp, err := g.Projects(context.Background())
	require.NoError(t, err)

	require.Len(t, resp.Projects(), 1)
	assert.Equal(t, Project{ID: "1234", Name: "Shop", PayMethods: "1,11", Mode: "TEST"}, resp.Projects()[0])
}

func TestGatewayCompletePurchase(t *testing.T) {
	g := newTestGateway(t, domain.MethodCreditCard, &mockHTTPClient{})

	n, err := g.CompletePurchase(signedNotification(t, "secret@46892", nil))
	require.NoError(t, err)
	assert.True(t, n.IsSuccessful())

	tampered := signedNotification(t, "secret@46892", nil)
	tampered.Set("gcAmount", "999999")
	_, err = g.CompletePurchase(tampered)
	var ierr *pkgerrors.IntegrityError
	require.ErrorAs(t, err, &ierr)
}

func TestGatewayAcceptNotificationEnrichment(t *testing.T) {
	lookups := 0
	client := &mockHTTPClient{
		DoFunc: func(req *http.Request) (*http.Response, error) {
			lookups++
			body := `{"rc":0,"pkn":"pkn-456","cardnumber":"411111******1111","expiremonth":4,"expireyear":2027}`
			return signedResponse(http.StatusOK, body, "secret@46892"), nil
		},
	}

	t.Run("disabled by default", func(t *testing.T) {
		g := newTestGateway(t, domain.MethodCreditCard, client)
		n, err := g.AcceptNotification(context.Background(), signedNotification(t, "secret@46892", nil))
		require.NoError(t, err)
		assert.Empty(t, n.CardReference())
		assert.Zero(t, lookups)
	})

	t.Run("enabled fills stored-card fields", func(t *testing.T) {
		cfg := testConfig(domain.MethodCreditCard)
		cfg.EnrichNotifications = true
		g, err := New(cfg, client, zap.NewNop())
		require.NoError(t, err)

		n, err := g.AcceptNotification(context.Background(), signedNotification(t, "secret@46892", nil))
		require.NoError(t, err)
		assert.Equal(t, 1, lookups)
		assert.Equal(t, "pkn-456", n.CardReference())
		assert.Equal(t, "411111******1111", n.MaskedNumber("*"))
		assert.Equal(t, 4, n.ExpiryMonth())
		assert.Equal(t, 2027, n.ExpiryYear())
	})

	t.Run("skipped for failed payments", func(t *testing.T) {
		lookups = 0
		cfg := testConfig(domain.MethodCreditCard)
		cfg.EnrichNotifications = true
		g, err := New(cfg, client, zap.NewNop())
		require.NoError(t, err)

		values := signedNotification(t, "secret@46892", map[string]string{
			"gcResultPayment": strconv.Itoa(ResultPaymentRejected),
		})
		_, err = g.AcceptNotification(context.Background(), values)
		require.NoError(t, err)
		assert.Zero(t, lookups)
	})
}
