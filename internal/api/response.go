package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	fincherrors "github.com/rahulmohankumar24/finch-demo/internal/errors"
)

// maxBodySize caps request bodies. Imports are the largest payloads.
const maxBodySize = 32 << 20

// APIError is the standard error response format.
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// errorDetails carries the explanation and remedy of a FinchError.
type errorDetails struct {
	Why string `json:"why,omitempty"`
	Fix string `json:"fix,omitempty"`
}

// JSONResponse writes a successful JSON response.
func JSONResponse(w http.ResponseWriter, data any) {
	JSONResponseStatus(w, data, http.StatusOK)
}

// JSONResponseStatus writes a JSON response with a specific status code.
func JSONResponseStatus(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// JSONError writes a simple error response.
func JSONError(w http.ResponseWriter, message string, status int) {
	JSONResponseStatus(w, APIError{Error: message}, status)
}

// HandleError inspects the error and writes the matching response.
// FinchErrors map to their HTTP status; anything else is a 500.
func HandleError(w http.ResponseWriter, err error) {
	if fe := fincherrors.AsFinchError(err); fe != nil {
		resp := APIError{
			Error: fe.What,
			Code:  string(fe.Code),
		}
		if fe.Why != "" || fe.Fix != "" {
			resp.Details = errorDetails{Why: fe.Why, Fix: fe.Fix}
		}
		JSONResponseStatus(w, resp, fe.HTTPStatus())
		return
	}
	JSONError(w, err.Error(), http.StatusInternalServerError)
}

// decodeBody decodes a JSON request body into v. Malformed bodies become
// INVALID_INPUT errors.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fincherrors.ErrInvalidInput("body", "request body is empty")
		}
		return fincherrors.ErrInvalidInput("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

// requireFields returns INVALID_INPUT naming the first empty field.
// Arguments are name, value pairs.
func requireFields(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fincherrors.ErrInvalidInput(pairs[i], "is required")
		}
	}
	return nil
}
