package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/conorfennell/studydeck/internal/domain"
)

// maxBody bounds request bodies; generate requests carry source text.
const maxBody = 1 << 20

// errorBody is the wire shape of every failure. Fields is only set for
// validation failures.
type errorBody struct {
	Error  string              `json:"error"`
	Kind   string              `json:"kind"`
	Fields map[string][]string `json:"fields,omitempty"`
}

func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindTransient:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	json.NewEncoder(w).Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	body := errorBody{Error: err.Error(), Kind: kind.String()}
	var de *domain.Error
	if errors.As(err, &de) {
		body.Fields = de.Fields
		if de.Kind == domain.KindValidation {
			body.Error = de.Message
		}
	}
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		s.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		body.Error = "internal server error"
	}
	writeJSON(w, status, body)
}

// decode reads a JSON body into v. Malformed bodies are reported with
// status 400 and a "body" field.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		msg := fmt.Sprintf("invalid JSON: %v", err)
		writeJSON(w, http.StatusBadRequest, errorBody{
			Error:  "malformed request body",
			Kind:   domain.KindValidation.String(),
			Fields: map[string][]string{"body": {msg}},
		})
		return err
	}
	return nil
}
