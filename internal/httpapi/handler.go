package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/event"
	"github.com/ibher16/antrian-lab-ibsi/internal/models"
	"github.com/ibher16/antrian-lab-ibsi/internal/store"
)

// Broadcaster delivers an encoded event to every connected surface.
type Broadcaster interface {
	Broadcast(payload []byte)
}

type Handler struct {
	store  store.TicketStore
	hub    Broadcaster
	logger *zap.Logger
}

func NewHandler(ticketStore store.TicketStore, hub Broadcaster, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: ticketStore, hub: hub, logger: logger}
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("POST /api/queue/create", h.handleCreate)
	mux.HandleFunc("GET /api/queue/waiting", h.handleWaiting)
	mux.HandleFunc("GET /api/queue/stats", h.handleStats)
	mux.HandleFunc("GET /api/queue/recent", h.handleRecent)
	mux.HandleFunc("GET /api/queue/categories", h.handleCategories)
	mux.HandleFunc("POST /api/queue/call", h.handleCall)
	mux.HandleFunc("POST /api/queue/call-manual", h.handleCallManual)
	mux.HandleFunc("POST /api/queue/recall", h.handleRecall)
	mux.HandleFunc("POST /api/queue/skip", h.handleSkip)
	mux.HandleFunc("POST /api/queue/finish", h.handleFinish)
	mux.HandleFunc("POST /api/queue/reset", h.handleReset)
	mux.HandleFunc("GET /api/display/video", h.handleGetVideo)
	mux.HandleFunc("POST /api/display/video", h.handleUpdateVideo)
	return mux
}

type createTicketRequest struct {
	CategoryID int `json:"category_id"`
}

type callTicketRequest struct {
	TicketID int `json:"ticket_id"`
	Counter  int `json:"counter"`
}

type callManualRequest struct {
	Code    string `json:"code"`
	Counter int    `json:"counter"`
}

type recallRequest struct {
	Counter int `json:"counter"`
}

type ticketIDRequest struct {
	TicketID int `json:"ticket_id"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ticket, err := h.store.CreateTicket(r.Context(), req.CategoryID)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(event.NewTicket(ticket))
	h.logger.Info("ticket created", zap.String("code", ticket.FormattedCode))
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleWaiting(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.store.WaitingTickets(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleRecent(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.store.RecentTickets(r.Context(), 5)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	if tickets == nil {
		tickets = []models.Ticket{}
	}
	writeJSON(w, http.StatusOK, tickets)
}

func (h *Handler) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.Categories(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) handleCall(w http.ResponseWriter, r *http.Request) {
	var req callTicketRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.callAndBroadcast(w, r, req.TicketID, req.Counter)
}

func (h *Handler) handleCallManual(w http.ResponseWriter, r *http.Request) {
	var req callManualRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ticket, err := h.store.TicketByCode(r.Context(), req.Code)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	h.callAndBroadcast(w, r, ticket.ID, req.Counter)
}

func (h *Handler) callAndBroadcast(w http.ResponseWriter, r *http.Request, ticketID, counter int) {
	ticket, err := h.store.CallTicket(r.Context(), ticketID, counter)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(event.CallTicket(ticket))
	h.logger.Info("ticket called", zap.String("code", ticket.FormattedCode), zap.Int("counter", counter))
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleRecall(w http.ResponseWriter, r *http.Request) {
	var req recallRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ticket, err := h.store.RecallTicket(r.Context(), req.Counter)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(event.CallTicket(ticket))
	h.logger.Info("ticket recalled", zap.String("code", ticket.FormattedCode), zap.Int("counter", req.Counter))
	writeJSON(w, http.StatusOK, ticket)
}

func (h *Handler) handleSkip(w http.ResponseWriter, r *http.Request) {
	var req ticketIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.store.SkipTicket(r.Context(), req.TicketID); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
}

func (h *Handler) handleFinish(w http.ResponseWriter, r *http.Request) {
	var req ticketIDRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.store.FinishTicket(r.Context(), req.TicketID); err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "finished"})
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := h.store.ResetQueue(r.Context()); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(event.ResetQueue())
	h.logger.Warn("queue reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleGetVideo(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.DisplaySettings(r.Context())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *Handler) handleUpdateVideo(w http.ResponseWriter, r *http.Request) {
	var settings models.DisplaySettings
	if !decodeJSON(w, r, &settings) {
		return
	}
	if err := h.store.UpdateDisplaySettings(r.Context(), settings); err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.publish(event.UpdateVideo(settings))
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) publish(ev event.Event) {
	payload, err := event.Encode(ev)
	if err != nil {
		h.logger.Error("encode event", zap.String("kind", string(ev.Kind)), zap.Error(err))
		return
	}
	h.hub.Broadcast(payload)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrTicketNotFound):
		writeError(w, http.StatusNotFound, "ticket_not_found", "ticket not found for today")
	case errors.Is(err, store.ErrCategoryNotFound):
		writeError(w, http.StatusNotFound, "category_not_found", "unknown category")
	case errors.Is(err, store.ErrNothingToRecall):
		writeError(w, http.StatusNotFound, "nothing_to_recall", "no ticket to recall on this counter")
	case errors.Is(err, store.ErrCounterBusy):
		writeError(w, http.StatusConflict, "counter_busy", "counter already has a calling ticket")
	case errors.Is(err, store.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", "ticket is not in a state that allows this action")
	default:
		h.logger.Error("store error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}
