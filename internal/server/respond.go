package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/blockfit/pkg/errors"
)

type errorResponse struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"error"`
	Status  string      `json:"status,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a coded error to an HTTP status. editorStatus is the
// editor's status line after the failed operation.
func writeError(w http.ResponseWriter, err error, editorStatus string) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, httpStatus(code), errorResponse{
		Code:    code,
		Message: errors.UserMessage(err),
		Status:  editorStatus,
	})
}

func httpStatus(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidLength, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidScript, errors.ErrCodeInvalidPath, errors.ErrCodeDecodeFailed:
		return http.StatusBadRequest
	case errors.ErrCodeNoSelection, errors.ErrCodeNoBackground, errors.ErrCodeGestureActive:
		return http.StatusConflict
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	}
	return http.StatusInternalServerError
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}
