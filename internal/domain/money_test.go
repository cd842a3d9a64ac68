package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    int64
		wantErr bool
	}{
		{name: "whole euros", amount: "10", want: 1000},
		{name: "euros and cents", amount: "1.23", want: 123},
		{name: "single cent", amount: "0.01", want: 1},
		{name: "zero", amount: "0", want: 0},
		{name: "sub-cent fraction truncates", amount: "1.239", want: 123},
		{name: "sub-cent fraction never rounds up", amount: "0.019", want: 1},
		{name: "large amount", amount: "99999.99", want: 9999999},
		{name: "not a number", amount: "ten", wantErr: true},
		{name: "empty", amount: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MinorUnits(tt.amount)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMinor(t *testing.T) {
	assert.Equal(t, "123", FormatMinor(123))
	assert.Equal(t, "0", FormatMinor(0))
}

func TestFormatFlag(t *testing.T) {
	assert.Equal(t, "1", FormatFlag(true))
	assert.Equal(t, "0", FormatFlag(false))
}

func TestNewItem(t *testing.T) {
	item, err := NewItem("Bobbycar", 3, "25.99")
	require.NoError(t, err)
	assert.Equal(t, Item{Name: "Bobbycar", Quantity: 3, GrossAmount: 2599}, item)

	_, err = NewItem("broken", 1, "not-a-price")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
