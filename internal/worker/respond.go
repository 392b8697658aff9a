package worker

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/flowcheck/internal/claimcache"
	"github.com/thebtf/flowcheck/internal/factapi"
	"github.com/thebtf/flowcheck/internal/news"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Error codes returned in the "code" field.
const (
	codeInvalidRequest = "invalid_request"
	codeNotFound       = "not_found"
	codeConflict       = "conflict"
	codeNotConfigured  = "not_configured"
	codeUpstream       = "upstream_error"
	codeTimeout        = "upstream_timeout"
	codeDataIntegrity  = "data_integrity"
	codeInternal       = "internal"
)

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, _ *http.Request, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// writeUpstreamError maps core and client errors to HTTP responses and logs
// them. Errors are logged here and nowhere else.
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		integrity *claimcache.DataIntegrityError
		transport *factapi.TransportError
		remote    *factapi.RemoteError
		newsErr   *news.APIError
	)
	logger := requestLog(r)

	switch {
	case errors.Is(err, claimcache.ErrEmptyQuery):
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, err.Error())
	case errors.Is(err, factapi.ErrMissingAPIKey), errors.Is(err, news.ErrMissingAPIKey):
		logger.Warn().Err(err).Msg("External API not configured")
		writeError(w, r, http.StatusServiceUnavailable, codeNotConfigured, err.Error())
	case errors.As(err, &integrity):
		logger.Error().Err(err).Int64("claimId", integrity.ClaimID).Msg("Stored claim is corrupt")
		writeError(w, r, http.StatusInternalServerError, codeDataIntegrity, "stored claim result is corrupt")
	case errors.As(err, &transport):
		logger.Warn().Err(err).Bool("timeout", transport.Timeout()).Msg("Fact check transport failure")
		if transport.Timeout() {
			writeError(w, r, http.StatusGatewayTimeout, codeTimeout, "fact check service timed out")
			return
		}
		writeError(w, r, http.StatusBadGateway, codeUpstream, "failed to reach fact check service")
	case errors.As(err, &remote):
		logger.Warn().Err(err).Int("upstreamStatus", remote.Status).Msg("Fact check service error")
		writeError(w, r, http.StatusBadGateway, codeUpstream, "failed to fetch data from the API: "+remote.Message)
	case errors.As(err, &newsErr):
		logger.Warn().Err(err).Int("upstreamStatus", newsErr.Status).Msg("News service error")
		writeError(w, r, http.StatusBadGateway, codeUpstream, newsErr.Message)
	default:
		logger.Error().Err(err).Msg("Request failed")
		writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
	}
}

// writeInternal logs err and writes a 500.
func writeInternal(w http.ResponseWriter, r *http.Request, err error) {
	requestLog(r).Error().Err(err).Msg("Request failed")
	writeError(w, r, http.StatusInternalServerError, codeInternal, "internal error")
}
