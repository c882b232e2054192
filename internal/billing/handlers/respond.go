package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"dinesplit/internal/domain"
)

// writeJSON отдаёт JSON с нужным статусом
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProblem — единый формат ошибок (упрощённый RFC7807 Problem+JSON)
func writeProblem(w http.ResponseWriter, code int, typ, detail string) {
	writeJSON(w, code, map[string]any{
		"type":   typ,
		"title":  http.StatusText(code),
		"status": code,
		"detail": detail,
	})
}

// writeError maps the domain error taxonomy onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	switch domain.KindOf(err) {
	case domain.KindValidation:
		writeProblem(w, http.StatusBadRequest, "validation_error", err.Error())
	case domain.KindNotFound:
		writeProblem(w, http.StatusNotFound, "not_found", err.Error())
	case domain.KindConflict:
		writeProblem(w, http.StatusConflict, "conflict", err.Error())
	case domain.KindPersistence:
		writeProblem(w, http.StatusServiceUnavailable, "persistence_error", err.Error())
	default:
		writeProblem(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// pathID достаёт числовой {param} из маршрута (ServeMux с шаблонами, Go 1.22+)
func pathID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(key), 10, 64)
	return id, err == nil && id > 0
}

func decodeJSON(r *http.Request, v any) bool {
	return json.NewDecoder(r.Body).Decode(v) == nil
}
