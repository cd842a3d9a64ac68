package girocheckout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Status
	}{
		{name: "success completes", code: ResultPaymentSuccess, want: StatusCompleted},
		{name: "paypal pending", code: ResultPaymentPending, want: StatusPending},
		{name: "cancelled fails", code: ResultPaymentCancelled, want: StatusFailed},
		{name: "rejected fails", code: ResultPaymentRejected, want: StatusFailed},
		{name: "expired session fails", code: 4501, want: StatusFailed},
		{name: "unknown future code fails", code: 4999, want: StatusFailed},
		{name: "zero fails", code: 0, want: StatusFailed},
		{name: "negative fails", code: -1, want: StatusFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.code))
		})
	}
}

// Exactly one code may complete a payment and exactly one may leave it
// pending; everything else in a wide scan must fail.
func TestClassifyAllowListIsStrict(t *testing.T) {
	var completed, pending int
	for code := 0; code < 10000; code++ {
		switch Classify(code) {
		case StatusCompleted:
			completed++
		case StatusPending:
			pending++
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, pending)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name   string
		code   int
		locale string
		want   string
	}{
		{name: "german", code: 4000, locale: "de", want: "Transaktion erfolgreich"},
		{name: "english", code: 4000, locale: "en", want: "Transaction successful"},
		{name: "unknown locale falls back to english", code: 4000, locale: "fr", want: "Transaction successful"},
		{name: "empty locale falls back to english", code: 4000, locale: "", want: "Transaction successful"},
		{name: "unknown code is empty", code: 1, locale: "de", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Message(tt.code, tt.locale))
		})
	}
}

func TestMessageTableCoversClassifiedCodes(t *testing.T) {
	for _, code := range []int{
		ResultPaymentSuccess,
		ResultPaymentPending,
		ResultPaymentCancelled,
		ResultPaymentRejected,
	} {
		assert.NotEmpty(t, Message(code, "en"), "code %d has no english text", code)
		assert.NotEmpty(t, Message(code, "de"), "code %d has no german text", code)
	}
}
