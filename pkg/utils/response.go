package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"worklog-backend/internal/apperr"
)

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error maps an error kind to its HTTP status and writes the JSON error
// body. Storage errors are logged with their cause but never leak it.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)

	status := http.StatusInternalServerError
	message := err.Error()

	switch kind {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindAuthorization:
		status = http.StatusForbidden
	case apperr.KindInvalidState:
		status = http.StatusConflict
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindStorage:
		log.Printf("[Storage] %v", err)
		message = "internal error"
	default:
		log.Printf("[Error] %v", err)
		message = "internal error"
	}

	JSON(w, status, map[string]string{
		"error": message,
		"kind":  kind.String(),
	})
}
