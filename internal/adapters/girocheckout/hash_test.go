package girocheckout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignKnownVectors(t *testing.T) {
	t.Run("ordered field values", func(t *testing.T) {
		f := NewFields()
		f.Set("merchantId", "1234567")
		f.Set("projectId", "1234")
		f.Set("field1", "Wert1")
		f.Set("field2", "Wert2")

		assert.Equal(t, "184d3f805959fc9fff2d07ccec1d1022", Sign(f, "secret"))
	})

	t.Run("empty map signs the empty string", func(t *testing.T) {
		assert.Equal(t, "5c8db03f04cec0f43bcb060023914190", Sign(NewFields(), "secret"))
	})
}

func TestSignIsDeterministic(t *testing.T) {
	f := NewFields()
	f.Set("merchantId", "1234567")
	f.Set("projectId", "1234")
	f.Set("amount", "123")

	first := Sign(f, "secret")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Sign(f, "secret"))
	}
}

func TestSignIgnoresHashFields(t *testing.T) {
	f := NewFields()
	f.Set("merchantId", "1234567")
	f.Set("projectId", "1234")
	want := Sign(f, "secret")

	f.Set(hashField, "deadbeef")
	f.Set(notifyHashField, "cafebabe")
	assert.Equal(t, want, Sign(f, "secret"))
}

func TestSignDependsOnOrder(t *testing.T) {
	a := NewFields()
	a.Set("first", "1")
	a.Set("second", "2")

	b := NewFields()
	b.Set("second", "2")
	b.Set("first", "1")

	assert.NotEqual(t, Sign(a, "secret"), Sign(b, "secret"))
}

func TestVerifyDetectsTampering(t *testing.T) {
	f := NewFields()
	f.Set("merchantId", "1234567")
	f.Set("amount", "100")
	good := Sign(f, "secret")
	require.True(t, Verify(f, good, "secret"))

	f.Set("amount", "10000")
	assert.False(t, Verify(f, good, "secret"))

	assert.False(t, Verify(f, Sign(f, "secret"), "other-passphrase"))
	assert.False(t, Verify(f, "", "secret"))
}

func TestVerifyBody(t *testing.T) {
	body := []byte(`{"reference":"abc","rc":0,"msg":""}`)
	good := SignBody(body, "secret")

	assert.True(t, VerifyBody(body, good, "secret"))
	assert.False(t, VerifyBody(append(body, ' '), good, "secret"))
	assert.False(t, VerifyBody(body, good, "wrong"))
}
