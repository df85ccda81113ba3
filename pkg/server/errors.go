package server

import (
	"encoding/json"
	"net/http"

	"github.com/vango-dev/vdiff/internal/errors"
	"github.com/vango-dev/vdiff/pkg/protocol"
)

// maxErrorMessage caps the message carried by a FrameError.
const maxErrorMessage = 1024

// errorResponse is the JSON body of failed HTTP requests.
type errorResponse struct {
	Error *errors.Error `json:"error"`
}

// statusFor maps an error code to an HTTP status.
func statusFor(code string) int {
	switch code {
	case "E201", "E202", "E203", "E403":
		return http.StatusBadRequest
	case "E402":
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err *errors.Error) {
	writeJSON(w, statusFor(err.Code), errorResponse{Error: err})
}

// frameErrorCode maps an error code to the code carried by a FrameError.
func frameErrorCode(code string) protocol.ErrorCode {
	switch code {
	case "E201", "E202", "E203":
		return protocol.ErrInvalidSnapshot
	case "E401":
		return protocol.ErrInvalidFrame
	case "E402":
		return protocol.ErrPayloadTooLarge
	default:
		return protocol.ErrServerError
	}
}

// errorFrame encodes err as a non-fatal FrameError.
func errorFrame(err *errors.Error) []byte {
	msg := err.FormatCompact()
	if err.Detail != "" {
		msg += "\n" + err.Detail
	}
	if len(msg) > maxErrorMessage {
		msg = msg[:maxErrorMessage]
	}
	payload := protocol.EncodeErrorMessage(protocol.NewError(frameErrorCode(err.Code), msg))
	data, _ := protocol.NewFrame(protocol.FrameError, payload).Encode()
	return data
}
