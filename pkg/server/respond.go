package server

import (
	"encoding/json"
	"errors"
	"net/http"

	ferrors "github.com/matzehuels/floorplan/pkg/errors"
)

type errorBody struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(code ferrors.Code) int {
	switch code {
	case ferrors.ErrCodeInvalidInput, ferrors.ErrCodeInvalidName, ferrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ferrors.ErrCodeStructureNotFound, ferrors.ErrCodeMalformedSelector:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	status, code, msg := 0, ferrors.GetCode(err), ferrors.UserMessage(err)
	switch {
	case errors.As(err, &tooLarge):
		status, code = http.StatusRequestEntityTooLarge, ferrors.ErrCodeInvalidInput
		msg = "request body too large"
	case code == "":
		status, code = http.StatusInternalServerError, ferrors.ErrCodeInternal
	default:
		status = statusFor(code)
	}
	if status >= 500 {
		s.logger.Error("request failed", "id", requestIDFrom(r.Context()), "err", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Error: errorBody{
		Code:      string(code),
		Message:   msg,
		RequestID: requestIDFrom(r.Context()),
	}})
}
