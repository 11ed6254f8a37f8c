package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/soutoadv/whatsapp-intake/internal/bookings"
	"github.com/soutoadv/whatsapp-intake/internal/conversation"
	"github.com/soutoadv/whatsapp-intake/pkg/logging"
)

const defaultBookingsLimit = 100

// BookingLister exposes recorded bookings for the admin endpoints.
type BookingLister interface {
	List(ctx context.Context, limit int) ([]bookings.Record, error)
}

// SessionReader looks up a sender's conversation session without creating
// one: inspecting an unknown sender must not mint a session.
type SessionReader interface {
	Lookup(ctx context.Context, sender string) (*conversation.Session, error)
}

// AdminHandler serves the read-only operator endpoints: recorded bookings
// and per-sender session state.
type AdminHandler struct {
	bookings BookingLister
	sessions SessionReader
	logger   *logging.Logger
}

// NewAdminHandler creates the handler.
func NewAdminHandler(bookings BookingLister, sessions SessionReader, logger *logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{
		bookings: bookings,
		sessions: sessions,
		logger:   logger,
	}
}

// ListBookings handles GET /admin/bookings?limit=n.
func (h *AdminHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	limit := defaultBookingsLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, `{"error":"invalid limit"}`, http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	records, err := h.bookings.List(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if records == nil {
		records = []bookings.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"bookings": records,
		"count":    len(records),
	})
}

// GetSession handles GET /admin/sessions/{sender}. The sender path segment
// is URL-escaped by callers since transport addresses contain '@'.
func (h *AdminHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	sender, err := url.PathUnescape(chi.URLParam(r, "sender"))
	if err != nil || strings.TrimSpace(sender) == "" {
		http.Error(w, `{"error":"invalid sender"}`, http.StatusBadRequest)
		return
	}

	session, err := h.sessions.Lookup(r.Context(), sender)
	if errors.Is(err, conversation.ErrSessionNotFound) {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load session", "sender", sender, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sender":  sender,
		"session": session,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
