package server

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "github.com/jrsteele09/tenant-auth-server/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeJSON    = "application/json; charset=utf-8"
	serverErrorMessage = "Server error"

	// maxBodyBytes bounds every JSON request body
	maxBodyBytes = 1 << 20
)

var errInvalidBody = apperrors.Validation("Invalid request body")

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps a classified error to its status and public message. Unclassified errors are logged and hidden.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperrors.KindOf(err)
	if kind == apperrors.KindServer {
		log.Err(err).Stack().Str("method", r.Method).Str("path", r.URL.Path).Msg("request failed")
	}
	writeJSON(w, kind.HTTPStatus(), errorResponse{Error: apperrors.PublicMessage(err)})
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return errInvalidBody
	}
	return nil
}
