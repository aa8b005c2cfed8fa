package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/digkill/PromptLibrary/internal/billing"
)

type checkoutRequest struct {
	PlanType string `json:"planType"`
}

type redirectResponse struct {
	URL string `json:"url"`
}

func (s *Server) handleListActivePlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.svc.Plans.ListActive(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	url, err := s.svc.Billing.Checkout(r.Context(), accountFrom(r.Context()), req.PlanType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, redirectResponse{URL: url})
}

func (s *Server) handlePortal(w http.ResponseWriter, r *http.Request) {
	url, err := s.svc.Billing.Portal(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, redirectResponse{URL: url})
}

func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	sub, err := s.svc.Billing.Sync(r.Context(), accountFrom(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handleStripeWebhook verifies and applies a Stripe event. An event that
// fails to apply answers 500 so Stripe redelivers it.
func (s *Server) handleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Billing.Enabled() || s.webhookSecret == "" {
		writeErrorCode(w, http.StatusServiceUnavailable, "billing_disabled", "billing is not configured")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, billing.MaxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErrorCode(w, http.StatusRequestEntityTooLarge, "payload_too_large", "payload too large")
			return
		}
		writeErrorCode(w, http.StatusBadRequest, "invalid_body", "read body error")
		return
	}

	event, err := billing.ConstructEvent(body, r.Header.Get("Stripe-Signature"), s.webhookSecret)
	if err != nil {
		s.log.Warn("stripe webhook signature rejected", "err", err)
		writeErrorCode(w, http.StatusBadRequest, "invalid_signature", "invalid signature")
		return
	}
	upd, err := billing.Decode(event)
	if err != nil {
		s.log.Warn("stripe webhook malformed", "event_id", event.ID, "type", event.Type, "err", err)
		writeErrorCode(w, http.StatusBadRequest, "malformed_event", err.Error())
		return
	}
	if err := s.svc.Billing.HandleEvent(r.Context(), upd); err != nil {
		s.log.Error("stripe webhook failed", "event_id", upd.EventID, "type", upd.EventType, "err", err)
		writeErrorCode(w, http.StatusInternalServerError, "internal", "event not applied")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
