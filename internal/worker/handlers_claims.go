package worker

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/thebtf/flowcheck/internal/claimcache"
	"github.com/thebtf/flowcheck/internal/worker/sse"
)

// Response headers set by /check_claim.
const (
	HeaderClaimCache = "X-Claim-Cache"
	HeaderClaimID    = "X-Claim-ID"
	HeaderClaimScore = "X-Claim-Score"
)

// checkClaimRequest is the POST body of /check_claim.
type checkClaimRequest struct {
	Claim string `json:"claim"`
}

// handleCheckClaim godoc
// @Summary Fact-check a claim
// @Description Returns the fact-check result for a claim. A stored result is
// @Description reused when a previous claim is similar enough; otherwise the
// @Description external service is queried and the result stored.
// @Tags claims
// @Accept json
// @Produce json
// @Param query query string false "Claim text (GET)"
// @Param force query bool false "Skip the history lookup"
// @Param body body checkClaimRequest false "Claim text (POST)"
// @Success 200 {object} map[string]any
// @Header 200 {string} X-Claim-Cache "hit or miss"
// @Failure 400 {object} errorResponse
// @Failure 500 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 504 {object} errorResponse
// @Router /check_claim [get]
// @Router /check_claim [post]
func (s *Service) handleCheckClaim(w http.ResponseWriter, r *http.Request) {
	var query string
	if r.Method == http.MethodPost {
		var req checkClaimRequest
		if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Claim) == "" {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest,
				"Invalid or missing JSON payload. Provide a 'claim' field.")
			return
		}
		query = req.Claim
	} else {
		query = r.URL.Query().Get("query")
		if strings.TrimSpace(query) == "" {
			writeError(w, r, http.StatusBadRequest, codeInvalidRequest,
				"No query provided. Use ?query=<your_query>")
			return
		}
	}

	var opts []claimcache.ResolveOption
	if force, _ := strconv.ParseBool(r.URL.Query().Get("force")); force {
		opts = append(opts, claimcache.WithForce())
	}

	res, err := s.claims.Resolve(r.Context(), query, opts...)
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}

	cacheState := "miss"
	if res.Hit {
		cacheState = "hit"
	}
	w.Header().Set(HeaderClaimCache, cacheState)
	w.Header().Set(HeaderClaimScore, strconv.FormatFloat(res.Score, 'f', 4, 64))
	if res.Claim != nil {
		w.Header().Set(HeaderClaimID, strconv.FormatInt(res.Claim.ID, 10))
	}

	if !res.Hit && res.Claim != nil {
		s.sseBroadcaster.Publish(sse.EventClaimCached, map[string]any{
			"claim_id": res.Claim.ID,
			"raw_text": res.Claim.RawText,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Payload)
}

// handleInnovationNews godoc
// @Summary Innovation news
// @Tags news
// @Produce json
// @Param query query string false "Search terms" default(innovation)
// @Success 200 {object} map[string]any
// @Failure 502 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /innovation_news [get]
func (s *Service) handleInnovationNews(w http.ResponseWriter, r *http.Request) {
	articles, err := s.news.Articles(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		writeUpstreamError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"articles": articles})
}
