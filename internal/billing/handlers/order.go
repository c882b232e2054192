package handlers

import (
	"net/http"

	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/domain"
)

type OrderHandler struct {
	svc service.OrderLifecycle
	lg  *logger.Logger
}

func (h *OrderHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	lines, err := h.svc.Confirm(r.Context(), sessionID, "")
	if err != nil {
		writeError(w, err)
		return
	}
	resp := domain.ConfirmResponse{SessionID: sessionID}
	for _, l := range lines {
		resp.OrderIDs = append(resp.OrderIDs, l.ID)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *OrderHandler) AdvanceStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(r, "order_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid order id")
		return
	}
	var req domain.AdvanceStatusRequest
	if !decodeJSON(r, &req) {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	line, err := h.svc.Advance(r.Context(), orderID, domain.LineStatus(req.Status), req.ChangedBy)
	if err != nil {
		h.lg.Debug("advance_rejected", map[string]any{"order_id": orderID, "error": err.Error()})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewLineResponse(line))
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	lines, err := h.svc.ListConfirmed(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]domain.LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.NewLineResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "orders": out})
}
