// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/toeirei/stratus/internal/core"
	"github.com/toeirei/stratus/internal/db"
	"github.com/toeirei/stratus/internal/logging"
)

type errorBody struct {
	Message string            `json:"message"`
	Errors  []core.FieldError `json:"errors,omitempty"`
}

var successBody = map[string]bool{"success": true}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debugf("http: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Message: msg})
}

// fail maps err to a response. Validation errors become 400, missing rows
// 404 with notFound, duplicates 409; anything else is logged and answered
// with a 500 carrying failure.
func fail(w http.ResponseWriter, err error, notFound, failure string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Message: ve.Message, Errors: ve.Errors})
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.Is(err, db.ErrDuplicate):
		writeError(w, http.StatusConflict, "Resource already exists")
	default:
		logging.Errorf("http: %s: %v", failure, err)
		writeError(w, http.StatusInternalServerError, failure)
	}
}

// decodeJSON reads a JSON body of at most maxBodyBytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return false
	}
	return true
}

// intParam parses a numeric URL parameter.
func intParam(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		return 0, false
	}
	return v, true
}

// queryInt returns the positive integer query parameter name, or def.
func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
