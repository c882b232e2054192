package handlers

import (
	"net/http"

	"dinesplit/internal/billing/service"
	"dinesplit/internal/common/logger"
	"dinesplit/internal/domain"
)

type SplitHandler struct {
	svc service.SplitManager
	lg  *logger.Logger
}

func (h *SplitHandler) CreateOrReuse(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathID(r, "session_id")
	if !ok {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid session id")
		return
	}
	var req domain.CreateSplitRequest
	if !decodeJSON(r, &req) {
		writeProblem(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	split, err := h.svc.CreateOrReuse(r.Context(), sessionID, req)
	if err != nil {
		h.lg.Debug("split_rejected", map[string]any{"session_id": sessionID, "error": err.Error()})
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, domain.NewSplitResponse(split))
}
