package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/ademuri/taste-engine/internal/catalog"
	"github.com/ademuri/taste-engine/internal/forecast"
)

const (
	codeNotAuthenticated = "not_authenticated"
	codeRateLimited      = "rate_limited"
	codeUpstream         = "upstream_error"
	codeInternal         = "internal_error"
	codeModelFailed      = "gemini_failed"
	codeInvalidPayload   = "invalid_payload"
)

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("WARN server: encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Error: code, Detail: detail})
}

// writeFailure maps an engine error onto a status and error code.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *catalog.UpstreamError
	var generation *forecast.GenerationError
	switch {
	case errors.Is(err, catalog.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, codeNotAuthenticated, "")
	case errors.Is(err, catalog.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, codeRateLimited, "")
	case errors.As(err, &upstream):
		writeError(w, http.StatusBadGateway, codeUpstream, upstream.Error())
	case errors.As(err, &generation):
		writeError(w, http.StatusBadGateway, codeModelFailed, generation.Detail)
	default:
		log.Printf("WARN server: request %s: %v", RequestID(r.Context()), err)
		writeError(w, http.StatusInternalServerError, codeInternal, err.Error())
	}
}
