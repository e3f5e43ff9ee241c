package payment

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultTerminalSlot identifies the register issuing the payment.
	DefaultTerminalSlot = "1"
	// SaleTransaction is the reader's classification code for a sale.
	SaleTransaction = 1

	payerIDMinDigits = 7
	payerIDMaxDigits = 10
)

var ErrInvalidPayerID = errors.Errorf("document number must have %d to %d digits", payerIDMinDigits, payerIDMaxDigits)

// Request is what the card reader is invoked with. Built fresh per
// attempt, consumed by one call, never persisted.
type Request struct {
	Amount         int64  `json:"amount"`
	ReferenceNo    string `json:"referenceNo"`
	DocumentNumber string `json:"documentNumber"`
	WaiterNum      string `json:"waiterNum"`
	TransType      int    `json:"transType"`
}

// SanitizePayerID strips everything but digits and caps the result at the
// maximum document length. This is the entry-field rule applied while the
// operator types; submission validates the full digit string instead, so an
// over-long ID is rejected rather than silently truncated.
func SanitizePayerID(input string) string {
	digits := digitsOf(input)
	if len(digits) > payerIDMaxDigits {
		return digits[:payerIDMaxDigits]
	}
	return digits
}

func digitsOf(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidatePayerID strips non-digits, then accepts digit strings of length
// 7 through 10.
func ValidatePayerID(payerID string) error {
	digits := digitsOf(payerID)
	if len(digits) < payerIDMinDigits || len(digits) > payerIDMaxDigits {
		return ErrInvalidPayerID
	}
	return nil
}

// MinorUnits converts a local amount to integer cents. The amount is fixed
// to two decimal places rounding half away from zero, so 12.345 becomes
// 12.35 and then 1235.
func MinorUnits(amount float64) int64 {
	thousandths := math.Round(amount * 1000)
	return int64(math.Round(thousandths / 10))
}

// NewReference builds the per-attempt time-based reference.
func NewReference(now time.Time) string {
	return fmt.Sprintf("REF-%d", now.UnixMilli())
}

func NewRequest(amountBs float64, payerID, slot string, transType int) Request {
	return Request{
		Amount:         MinorUnits(amountBs),
		ReferenceNo:    NewReference(time.Now()),
		DocumentNumber: payerID,
		WaiterNum:      slot,
		TransType:      transType,
	}
}
