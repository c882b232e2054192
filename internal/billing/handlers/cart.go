package handlers

import (
	"net/http"

	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/domain"
)

type CartHandler struct {
	svc service.CartLedger
	lg  *logger.Logger
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	var req domain.AddItemRequest
	if !decodeJSON(r, &req) {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	line, err := h.svc.AddItem(r.Context(), sessionID, req)
	if err != nil {
		h.lg.Debug("cart_add_rejected", map[string]any{"session_id": sessionID, "error": err.Error()})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, domain.NewLineResponse(line))
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathID(r, "line_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid line id")
		return
	}
	var req domain.UpdateQuantityRequest
	if !decodeJSON(r, &req) {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	line, removed, err := h.svc.UpdateQuantity(r.Context(), lineID, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	if removed {
		writeJSON(w, http.StatusOK, map[string]any{"line_id": lineID, "removed": true})
		return
	}
	writeJSON(w, http.StatusOK, domain.NewLineResponse(line))
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	lineID, ok := pathID(r, "line_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid line id")
		return
	}
	if err := h.svc.RemoveItem(r.Context(), lineID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"line_id": lineID, "removed": true})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	if err := h.svc.Clear(r.Context(), sessionID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "cleared": true})
}

func (h *CartHandler) List(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	lines, err := h.svc.List(r.Context(), sessionID, r.URL.Query().Get("diner"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]domain.LineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.NewLineResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "items": out})
}
