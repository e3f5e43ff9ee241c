package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// Reader talks to the card-reader bridge over HTTP. The bridge fronts the
// terminal's native payment service.
type Reader struct {
	client *http.Client
	url    string
	logger *slog.Logger
}

func NewReader(url string, timeout time.Duration, logger *slog.Logger) *Reader {
	return &Reader{
		client: &http.Client{Timeout: timeout},
		url:    url,
		logger: logger,
	}
}

func (r *Reader) Process(ctx context.Context, request Request) (ReaderResult, error) {
	r.logger.InfoContext(ctx, "Sending payment to card reader",
		"reference", request.ReferenceNo, "amount", request.Amount)

	payload, err := json.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "encoding payment request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url+"/transactions", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "creating payment request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "calling card reader")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading card reader response")
	}

	r.logger.InfoContext(ctx, "Card reader responded",
		"reference", request.ReferenceNo, "status", resp.Status, "body", string(body))

	if resp.StatusCode >= 400 {
		return nil, errors.Errorf("card reader responded %s", resp.Status)
	}

	return ParseReaderResult(body)
}

// Ping probes the bridge, mirroring the native module's service-connection
// check.
func (r *Reader) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url+"/status", nil)
	if err != nil {
		return errors.Wrap(err, "creating status request")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling card reader status")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return errors.Errorf("card reader status responded %s", resp.Status)
	}
	return nil
}
