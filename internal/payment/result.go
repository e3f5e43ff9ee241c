package payment

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// Outcome is the terminal classification of one payment attempt.
type Outcome struct {
	Succeeded bool `json:"succeeded"`
}

// ReaderResult is the card reader's answer in one of its observed shapes.
// The reader bridge replies with a JSON object carrying a success flag, a
// status string or a response code, or with a bare string. Each shape
// classifies itself.
type ReaderResult interface {
	Succeeded() bool
}

// FlagResult is an object bearing an explicit success flag.
type FlagResult bool

func (r FlagResult) Succeeded() bool { return bool(r) }

// StatusResult is an object bearing a status string.
type StatusResult string

func (r StatusResult) Succeeded() bool { return string(r) == "success" }

// CodeResult is an object bearing an ISO-style response code.
type CodeResult string

func (r CodeResult) Succeeded() bool { return string(r) == "00" }

// TextResult is a plain string reply. Classified by keyword, the way the
// reader phrases an approval ("Pago Exitosa").
type TextResult string

func (r TextResult) Succeeded() bool {
	return strings.Contains(strings.ToLower(string(r)), "exitosa")
}

type readerEnvelope struct {
	Success      *bool   `json:"success"`
	Status       *string `json:"status"`
	ResponseCode *string `json:"responseCode"`
}

// ParseReaderResult maps a raw reader reply onto the result union. Fields
// are checked in the order the reader populates them: success flag, status,
// response code. A reply that matches no known shape is an error; the
// caller maps it to a failed outcome.
func ParseReaderResult(body []byte) (ReaderResult, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, errors.New("empty reader response")
	}

	if trimmed[0] == '{' {
		var envelope readerEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, errors.Wrap(err, "decoding reader response")
		}
		switch {
		case envelope.Success != nil:
			return FlagResult(*envelope.Success), nil
		case envelope.Status != nil:
			return StatusResult(*envelope.Status), nil
		case envelope.ResponseCode != nil:
			return CodeResult(*envelope.ResponseCode), nil
		}
		return nil, errors.Errorf("unrecognized reader response shape: %s", trimmed)
	}

	var text string
	if err := json.Unmarshal(body, &text); err != nil {
		// Not JSON at all; readers also reply with raw text bodies.
		text = trimmed
	}
	return TextResult(text), nil
}
