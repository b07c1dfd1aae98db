package handler

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/taskhub-auth/internal/apperr"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// statusFor maps an error kind to its HTTP status. Conflicts and missing
// users are plain 400s, and bad credentials are a 400 rather than a 401.
func statusFor(err *apperr.Error) int {
	if err.Code == apperr.CodeInvalidCredentials {
		return http.StatusBadRequest
	}

	switch err.Kind {
	case apperr.KindValidation, apperr.KindConflict, apperr.KindNotFound:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	appErr := apperr.From(err)
	writeJSON(w, statusFor(appErr), errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
