package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "7,99", want: "7.99"},
		{in: "7.99", want: "7.99"},
		{in: " 12 ", want: "12"},
		{in: "0", want: "0"},
		{in: "0,001", want: "0.001"},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "1,000.50", wantErr: true},
		{in: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "price", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "5", want: 5},
		{in: " 0 ", want: 0},
		{in: "1000000", want: 1000000},
		{in: "", wantErr: true},
		{in: "-1", wantErr: true},
		{in: "1.5", wantErr: true},
		{in: "ten", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseQuantity(tt.in)
			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
				assert.Equal(t, "quantity", vErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfirmationTokens(t *testing.T) {
	for _, answer := range []string{"s", "S", "sim", "SIM", "y", "Yes", " yes "} {
		assert.True(t, IsAffirmative(answer), answer)
		assert.False(t, IsNegative(answer), answer)
	}
	for _, answer := range []string{"n", "N", "nao", "não", "NÃO", "no"} {
		assert.True(t, IsNegative(answer), answer)
		assert.False(t, IsAffirmative(answer), answer)
	}
	for _, answer := range []string{"", "maybe", "ok", "1"} {
		assert.False(t, IsAffirmative(answer), answer)
		assert.False(t, IsNegative(answer), answer)
	}
}
