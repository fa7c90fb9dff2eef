package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hszk-dev/gocatalog/internal/domain/validation"
)

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			http.Error(w, "failed to encode response", http.StatusInternalServerError)
		}
	}
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func Error(w http.ResponseWriter, status int, err string, message string) {
	JSON(w, status, ErrorResponse{
		Error:   err,
		Message: message,
	})
}

// ValidationErrorResponse lists every violation of a rejected write.
type ValidationErrorResponse struct {
	Message string             `json:"message"`
	Errors  []validation.Error `json:"errors"`
}

func ValidationError(w http.ResponseWriter, failure *validation.Failure) {
	errs := failure.Errors
	if errs == nil {
		errs = []validation.Error{}
	}
	JSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
		Message: failure.Message,
		Errors:  errs,
	})
}
