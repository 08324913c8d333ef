package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/brightpath/fee-engine/ledger"
)

// errorBody is the JSON error envelope.
type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeError maps ledger errors to HTTP status codes:
//
//	400 validation, non-contiguous year, no next class
//	404 student / receipt / schedule not found
//	409 concurrent modification (after retries), duplicate student
//	422 overpayment, invalid status transition
//	500 everything else
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := ""

	switch {
	case errors.Is(err, ledger.ErrValidation),
		errors.Is(err, ledger.ErrNonContiguousYear),
		errors.Is(err, ledger.ErrNoNextClass):
		status = http.StatusBadRequest
	case ledger.IsNotFound(err):
		status = http.StatusNotFound
	case errors.Is(err, ledger.ErrOverpayment):
		status = http.StatusUnprocessableEntity
		code = "overpayment"
	case errors.Is(err, ledger.ErrInvalidTransition):
		status = http.StatusUnprocessableEntity
		code = "invalid_transition"
	case errors.Is(err, ledger.ErrConcurrentModification),
		errors.Is(err, ledger.ErrStudentExists):
		status = http.StatusConflict
	}

	writeJSON(w, status, errorBody{Error: err.Error(), Code: code})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &ledger.ValidationError{Field: "body", Message: "malformed JSON"}
	}
	return nil
}
