package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in      string
		want    Money
		wantErr bool
	}{
		{in: "1200", want: 120000},
		{in: "1200.5", want: 120050},
		{in: "1200.05", want: 120005},
		{in: ".99", want: 99},
		{in: "-3.10", want: -310},
		{in: "1.234", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "1.-5", wantErr: true},
		{in: "1.+5", wantErr: true},
		{in: "+5", wantErr: true},
		{in: "-", wantErr: true},
		{in: "+", wantErr: true},
		{in: ".", wantErr: true},
		{in: "-.", wantErr: true},
		{in: "--1", wantErr: true},
		{in: "1 000", wantErr: true},
		{in: "92233720368547758", wantErr: true},
		{in: "9223372036854775807", wantErr: true},
		{in: "92233720368547757.99", want: 9223372036854775799},
		{in: "1200.", want: 120000},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMoney(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "0.00", Money(0).String())
	assert.Equal(t, "12.05", Money(1205).String())
	assert.Equal(t, "-0.50", Money(-50).String())
}

func TestMoneyUnmarshalAcceptsNumberAndString(t *testing.T) {
	var body struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"450.00","b":99.5}`), &body))
	assert.Equal(t, Money(45000), body.A)
	assert.Equal(t, Money(9950), body.B)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"450.00","b":"99.50"}`, string(out))
}
