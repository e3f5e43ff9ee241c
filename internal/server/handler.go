package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pkg/errors"

	"poscalc-service/internal/convert"
	"poscalc-service/internal/notify"
	"poscalc-service/internal/payment"
	"poscalc-service/internal/rate"
)

// ReaderProbe reports whether the card-reader bridge is reachable.
type ReaderProbe interface {
	Ping(ctx context.Context) error
}

// Handler is the HTTP surface the screen drives.
type Handler struct {
	store    *rate.Store
	flow     *payment.Flow
	probe    ReaderProbe
	notifier *notify.Center
	logger   *slog.Logger
}

func New(store *rate.Store, flow *payment.Flow, probe ReaderProbe, notifier *notify.Center, logger *slog.Logger) *Handler {
	return &Handler{store: store, flow: flow, probe: probe, notifier: notifier, logger: logger}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /liveness", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("GET /rates", h.getRates)
	mux.HandleFunc("POST /rates/refresh", h.refreshRates)
	mux.HandleFunc("POST /rates/select", h.selectRate)
	mux.HandleFunc("GET /convert", h.getConversion)

	mux.HandleFunc("GET /payment", h.getPayment)
	mux.HandleFunc("POST /payment/amount", h.setAmount)
	mux.HandleFunc("POST /payment/open", h.openPayment)
	mux.HandleFunc("POST /payment/cancel", h.cancelPayment)
	mux.HandleFunc("POST /payment/confirm", h.confirmPayment)

	mux.HandleFunc("GET /reader/status", h.getReaderStatus)

	mux.HandleFunc("GET /notification", h.getNotification)
	mux.HandleFunc("DELETE /notification", h.dismissNotification)

	return mux
}

func (h *Handler) getRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) refreshRates(w http.ResponseWriter, r *http.Request) {
	h.store.Refresh(r.Context())
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) selectRate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Currency == "" {
		writeError(w, http.StatusBadRequest, "currency is required")
		return
	}

	h.store.Select(body.Currency)
	writeJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) getConversion(w http.ResponseWriter, r *http.Request) {
	amount := r.URL.Query().Get("amount")
	if amount == "" {
		amount = h.flow.Amount()
	}

	snapshot := h.store.Snapshot()
	writeJSON(w, http.StatusOK, convert.Convert(amount, snapshot.Selected))
}

func (h *Handler) getPayment(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"state":  h.flow.State(),
		"amount": h.flow.Amount(),
	})
}

func (h *Handler) setAmount(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount string `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.flow.SetAmount(body.Amount)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) openPayment(w http.ResponseWriter, r *http.Request) {
	h.flow.Open()
	writeJSON(w, http.StatusOK, map[string]any{"state": h.flow.State()})
}

func (h *Handler) cancelPayment(w http.ResponseWriter, r *http.Request) {
	h.flow.Cancel()
	writeJSON(w, http.StatusOK, map[string]any{"state": h.flow.State()})
}

func (h *Handler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PayerID string `json:"payerId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// The screen confirms the amount it is displaying, converted against
	// the currently selected rate.
	snapshot := h.store.Snapshot()
	conversion := convert.Convert(h.flow.Amount(), snapshot.Selected)

	outcome, err := h.flow.Confirm(r.Context(), body.PayerID, conversion.LocalAmount)
	switch {
	case errors.Is(err, payment.ErrNotCollecting):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, payment.ErrInvalidPayerID):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		h.logger.ErrorContext(r.Context(), "Payment confirmation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "payment confirmation failed")
	default:
		writeJSON(w, http.StatusOK, outcome)
	}
}

func (h *Handler) getReaderStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.probe.Ping(r.Context()); err != nil {
		h.logger.ErrorContext(r.Context(), "Card reader unreachable", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]bool{"connected": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"connected": true})
}

func (h *Handler) getNotification(w http.ResponseWriter, r *http.Request) {
	notification := h.notifier.Current()
	if notification == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, notification)
}

func (h *Handler) dismissNotification(w http.ResponseWriter, r *http.Request) {
	h.notifier.Dismiss()
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
