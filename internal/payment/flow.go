package payment

import (
	"context"
	"log/slog"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"poscalc-service/internal/logging"
	"poscalc-service/internal/notify"
)

var (
	approvedCounter = metrics.GetOrCreateCounter(`payment_total{result="approved"}`)
	declinedCounter = metrics.GetOrCreateCounter(`payment_total{result="declined"}`)
	errorCounter    = metrics.GetOrCreateCounter(`payment_total{result="error"}`)
	rejectedCounter = metrics.GetOrCreateCounter(`payment_total{result="rejected"}`)
)

type State string

const (
	StateIdle       State = "IDLE"
	StateCollecting State = "COLLECTING"
	StateSubmitting State = "SUBMITTING"
)

// defaultAmount is what the entry field resets to after an approved sale.
const defaultAmount = "1"

var ErrNotCollecting = errors.New("no payment collection in progress")

// ReaderClient is the external payment operation.
type ReaderClient interface {
	Process(ctx context.Context, request Request) (ReaderResult, error)
}

// Flow owns the transient state of a payment attempt: the display amount,
// the collection form, one reader call per confirmation, and the settled
// outcome. Attempts share nothing with each other.
type Flow struct {
	reader    ReaderClient
	notifier  *notify.Center
	logger    *slog.Logger
	slot      string
	transType int

	mu     sync.Mutex
	state  State
	amount string
}

func NewFlow(reader ReaderClient, notifier *notify.Center, logger *slog.Logger, slot string, transType int) *Flow {
	return &Flow{
		reader:    reader,
		notifier:  notifier,
		logger:    logger,
		slot:      slot,
		transType: transType,
		state:     StateIdle,
		amount:    defaultAmount,
	}
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *Flow) Amount() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount
}

func (f *Flow) SetAmount(amount string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.amount = amount
}

// Open shows the collection form. No-op while a submission is in flight.
func (f *Flow) Open() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateIdle {
		f.state = StateCollecting
	}
}

// Cancel dismisses the collection form without submitting.
func (f *Flow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateCollecting {
		f.state = StateIdle
	}
}

// Confirm validates the payer ID, issues the reader call once and settles
// the attempt. The collection form closes the moment validation passes,
// before the call returns, so the result lands on the base screen. A
// transport error or unrecognized reply settles as a generic failure; the
// cause is logged, never surfaced.
func (f *Flow) Confirm(ctx context.Context, payerID string, amountBs float64) (Outcome, error) {
	f.mu.Lock()
	if f.state != StateCollecting {
		f.mu.Unlock()
		return Outcome{}, ErrNotCollecting
	}

	digits := digitsOf(payerID)
	if err := ValidatePayerID(digits); err != nil {
		f.mu.Unlock()
		rejectedCounter.Inc()
		return Outcome{}, err
	}

	request := NewRequest(amountBs, digits, f.slot, f.transType)
	f.state = StateSubmitting
	f.mu.Unlock()

	ctx = logging.AppendCtx(ctx, slog.String("attempt_id", uuid.NewString()))
	f.logger.InfoContext(ctx, "Submitting payment", "reference", request.ReferenceNo)

	result, err := f.reader.Process(ctx, request)

	var succeeded bool
	switch {
	case err != nil:
		f.logger.ErrorContext(ctx, "Payment call failed", "reference", request.ReferenceNo, "error", err)
		errorCounter.Inc()
	case result.Succeeded():
		succeeded = true
		approvedCounter.Inc()
	default:
		declinedCounter.Inc()
	}

	f.mu.Lock()
	if succeeded {
		f.amount = defaultAmount
	}
	f.state = StateIdle
	f.mu.Unlock()

	f.notifier.Publish(succeeded)
	f.logger.InfoContext(ctx, "Payment settled", "reference", request.ReferenceNo, "succeeded", succeeded)

	return Outcome{Succeeded: succeeded}, nil
}
