package payment_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"poscalc-service/internal/payment"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   float64
		expected int64
	}{
		{name: "TwoDecimals", amount: 1234.56, expected: 123456},
		{name: "Zero", amount: 0, expected: 0},
		{name: "RoundsThirdDecimalUp", amount: 12.345, expected: 1235},
		{name: "RoundsThirdDecimalDown", amount: 12.344, expected: 1234},
		{name: "WholeAmount", amount: 1394.00, expected: 139400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, payment.MinorUnits(tt.amount))
		})
	}
}

func TestSanitizePayerID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "DigitsOnly", input: "12345678", expected: "12345678"},
		{name: "StripsNonDigits", input: "12a3456", expected: "123456"},
		{name: "StripsSeparators", input: "12.345.678", expected: "12345678"},
		{name: "CapsAtTen", input: "123456789012345", expected: "1234567890"},
		{name: "Empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, payment.SanitizePayerID(tt.input))
		})
	}
}

func TestValidatePayerID(t *testing.T) {
	assert.NoError(t, payment.ValidatePayerID("1234567"))
	assert.NoError(t, payment.ValidatePayerID("1234567890"))
	assert.ErrorIs(t, payment.ValidatePayerID("123456"), payment.ErrInvalidPayerID)
	assert.ErrorIs(t, payment.ValidatePayerID("12345678901"), payment.ErrInvalidPayerID)
	assert.ErrorIs(t, payment.ValidatePayerID(""), payment.ErrInvalidPayerID)

	// Non-digits are stripped before the length check.
	assert.NoError(t, payment.ValidatePayerID("12a34567"))
	assert.ErrorIs(t, payment.ValidatePayerID("12a3456789012"), payment.ErrInvalidPayerID)
}

func TestNewReference(t *testing.T) {
	now := time.UnixMilli(1724245000000)
	assert.Equal(t, "REF-1724245000000", payment.NewReference(now))
}

func TestNewRequest(t *testing.T) {
	request := payment.NewRequest(1394.00, "12345678", payment.DefaultTerminalSlot, payment.SaleTransaction)

	assert.Equal(t, int64(139400), request.Amount)
	assert.Equal(t, "12345678", request.DocumentNumber)
	assert.Equal(t, "1", request.WaiterNum)
	assert.Equal(t, 1, request.TransType)
	assert.Regexp(t, `^REF-\d+$`, request.ReferenceNo)
}
