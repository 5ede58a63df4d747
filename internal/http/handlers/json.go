// Package handlers expone la API HTTP de Keywarden.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	apperr "github.com/dropDatabas3/keywarden/internal/http/errors"
)

const maxJSONBody = 64 << 10 // 64KB

func readStrictJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	ct := strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	if !strings.Contains(ct, "application/json") {
		apperr.WriteError(w, apperr.ErrBadRequest.WithDetail("Content-Type: application/json required"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var tooBig *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			apperr.WriteError(w, apperr.ErrInvalidJSON.WithDetail("empty body"))
		case errors.As(err, &tooBig):
			apperr.WriteError(w, apperr.ErrBodyTooLarge)
		default:
			apperr.WriteError(w, apperr.ErrInvalidJSON)
		}
		return false
	}

	// No debe haber datos extra
	if dec.More() {
		apperr.WriteError(w, apperr.ErrInvalidJSON.WithDetail("trailing data"))
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
