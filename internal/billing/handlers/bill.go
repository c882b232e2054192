package handlers

import (
	"net/http"

	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
)

type BillHandler struct {
	svc service.BillAggregator
	lg  *logger.Logger
}

func (h *BillHandler) MyShare(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	share, err := h.svc.MyShare(r.Context(), sessionID, r.URL.Query().Get("diner"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

func (h *BillHandler) TableTotal(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	total, err := h.svc.TableTotal(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, total)
}

func (h *BillHandler) PerDiner(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	bills, err := h.svc.PerDiner(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session_id": sessionID, "diners": bills})
}
