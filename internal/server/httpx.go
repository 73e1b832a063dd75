package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"

	derrors "github.com/matzehuels/deliverynote/pkg/errors"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, msg string, code derrors.Code) {
	writeJSON(w, status, ErrorResponse{Error: msg, Code: string(code)})
}

// writeErr maps a coded error to a status and writes it.
func writeErr(w http.ResponseWriter, err error) {
	code := derrors.GetCode(err)
	writeError(w, statusFor(code), derrors.UserMessage(err), code)
}

func statusFor(code derrors.Code) int {
	switch code {
	case derrors.ErrCodeInvalidInput, derrors.ErrCodeInvalidField,
		derrors.ErrCodeInvalidFormat, derrors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case derrors.ErrCodeNotFound, derrors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case derrors.ErrCodeBusy:
		return http.StatusConflict
	case derrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return derrors.New(derrors.ErrCodeInvalidInput, "request body too large")
		}
		if errors.Is(err, io.EOF) {
			return derrors.New(derrors.ErrCodeInvalidInput, "request body is empty")
		}
		return derrors.Wrap(derrors.ErrCodeInvalidInput, err, "invalid JSON body")
	}
	return nil
}

// writeFile sends data as a download named filename.
func writeFile(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
