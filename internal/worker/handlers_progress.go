package worker

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	gormdb "github.com/thebtf/flowcheck/internal/db/gorm"
	"github.com/thebtf/flowcheck/internal/trend"
	"github.com/thebtf/flowcheck/internal/worker/sse"
	"github.com/thebtf/flowcheck/pkg/models"
)

// UserIDHeader identifies the caller. Authentication happens upstream.
const UserIDHeader = "X-User-ID"

type createUserRequest struct {
	Username string `json:"username"`
}

type createProgressRequest struct {
	Achievement string `json:"achievement"`
}

type shareStoryRequest struct {
	Story string `json:"progress_story"`
}

type createGoalRequest struct {
	Goal       string `json:"goal"`
	TargetDate string `json:"target_date"`
}

// ForecastResponse is the body of the forecast and insights routes.
type ForecastResponse struct {
	Forecast *trend.Forecast `json:"forecast,omitempty"`
	Status   string          `json:"status"`
	UserID   int64           `json:"user_id"`
	Events   int             `json:"events"`
}

// InsightsResponse combines the milestone forecast with goal suggestions.
type InsightsResponse struct {
	NextMilestone *time.Time `json:"next_milestone"`
	ForecastResponse
	Suggestions []string `json:"suggestions"`
}

// Forecast statuses.
const (
	statusOK               = "ok"
	statusInsufficientData = "insufficient_data"
)

// callerUser resolves the X-User-ID header. It writes the error response
// and returns nil when the caller cannot be identified.
func (s *Service) callerUser(w http.ResponseWriter, r *http.Request) *models.User {
	return s.lookupUser(w, r, r.Header.Get(UserIDHeader))
}

func (s *Service) lookupUser(w http.ResponseWriter, r *http.Request, raw string) *models.User {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "a numeric user ID is required")
		return nil
	}
	user, err := s.userStore.GetUser(r.Context(), id)
	if err != nil {
		writeInternal(w, r, err)
		return nil
	}
	if user == nil {
		writeError(w, r, http.StatusNotFound, codeNotFound, "User not found")
		return nil
	}
	return user
}

// handleCreateUser godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param body body createUserRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /users [post]
func (s *Service) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Username) == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "Username is required")
		return
	}

	user, err := s.userStore.CreateUser(r.Context(), strings.TrimSpace(req.Username))
	if errors.Is(err, gormdb.ErrUsernameTaken) {
		writeError(w, r, http.StatusConflict, codeConflict, "Username already exists")
		return
	}
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// handleCreateProgress godoc
// @Summary Record an achievement
// @Tags progress
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller"
// @Param body body createProgressRequest true "Achievement"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /progress [post]
func (s *Service) handleCreateProgress(w http.ResponseWriter, r *http.Request) {
	var req createProgressRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Achievement) == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "Achievement is required")
		return
	}
	user := s.callerUser(w, r)
	if user == nil {
		return
	}

	event, err := s.progressStore.CreateProgress(r.Context(), user.ID, strings.TrimSpace(req.Achievement))
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	s.sseBroadcaster.Publish(sse.EventProgressCreated, event)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Progress updated successfully",
		"progress": event,
	})
}

// handleListProgress godoc
// @Summary List a user's achievements
// @Tags progress
// @Produce json
// @Param userID path int true "User ID"
// @Param limit query int false "Keep only the most recent events"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorResponse
// @Router /progress/{userID} [get]
func (s *Service) handleListProgress(w http.ResponseWriter, r *http.Request) {
	user := s.lookupUser(w, r, chi.URLParam(r, "userID"))
	if user == nil {
		return
	}

	events, err := s.progressStore.ListProgressByUser(r.Context(), user.ID, gormdb.ParseLimitParam(r, 0))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": user.ID, "progress": events})
}

// handleForecast godoc
// @Summary Predict the next milestone
// @Description Fits a linear trend over the user's achievements. Fewer than
// @Description three achievements yield status insufficient_data.
// @Tags progress
// @Produce json
// @Param userID path int true "User ID"
// @Success 200 {object} ForecastResponse
// @Failure 404 {object} errorResponse
// @Router /progress/{userID}/forecast [get]
func (s *Service) handleForecast(w http.ResponseWriter, r *http.Request) {
	user := s.lookupUser(w, r, chi.URLParam(r, "userID"))
	if user == nil {
		return
	}

	resp, err := s.forecast(r, user.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) forecast(r *http.Request, userID int64) (ForecastResponse, error) {
	events, err := s.progressStore.ListProgressByUser(r.Context(), userID, 0)
	if err != nil {
		return ForecastResponse{}, err
	}

	resp := ForecastResponse{UserID: userID, Events: len(events), Status: statusInsufficientData}
	f, ok := trend.PredictNext(models.EventTimes(events), trend.DefaultHorizon)
	s.metrics.RecordForecast(r.Context(), ok)
	if ok {
		resp.Status = statusOK
		resp.Forecast = &f
	}
	return resp, nil
}

// handleProgressInsights godoc
// @Summary Milestone forecast and goal suggestions
// @Tags progress
// @Produce json
// @Param X-User-ID header int true "Caller"
// @Success 200 {object} InsightsResponse
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /progress/insights [get]
func (s *Service) handleProgressInsights(w http.ResponseWriter, r *http.Request) {
	user := s.callerUser(w, r)
	if user == nil {
		return
	}

	fr, err := s.forecast(r, user.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	suggestions, err := s.recommendGoals(r.Context(), user.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	resp := InsightsResponse{ForecastResponse: fr, Suggestions: suggestions}
	if fr.Forecast != nil {
		next := fr.Forecast.NextAt
		resp.NextMilestone = &next
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleCreateGoal godoc
// @Summary Create a goal
// @Tags goals
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller"
// @Param body body createGoalRequest true "Goal"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /goal [post]
func (s *Service) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := decodeJSON(w, r, &req); err != nil ||
		strings.TrimSpace(req.Goal) == "" || strings.TrimSpace(req.TargetDate) == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "Goal and target_date are required")
		return
	}
	target, err := parseTargetDate(req.TargetDate)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest,
			"target_date must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
		return
	}
	user := s.callerUser(w, r)
	if user == nil {
		return
	}

	goal, err := s.goalStore.CreateGoal(r.Context(), user.ID, strings.TrimSpace(req.Goal), target)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	s.sseBroadcaster.Publish(sse.EventGoalCreated, goal)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Goal created successfully",
		"goal":    goal,
	})
}

// parseTargetDate accepts a calendar date or an RFC 3339 timestamp and
// returns it in canonical form. Timestamps are stored in UTC.
func parseTargetDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if d, err := time.Parse(time.DateOnly, raw); err == nil {
		return d.Format(time.DateOnly), nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return "", err
	}
	return ts.UTC().Format(time.RFC3339), nil
}

// handleListGoals godoc
// @Summary List the caller's goals
// @Tags goals
// @Produce json
// @Param X-User-ID header int true "Caller"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorResponse
// @Router /goals [get]
func (s *Service) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user := s.callerUser(w, r)
	if user == nil {
		return
	}

	goals, err := s.goalStore.ListGoalsByUser(r.Context(), user.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": user.ID, "goals": goals})
}

// handleRecommendations godoc
// @Summary Recommend related goals
// @Description Suggests goals of other users that fall in the same cluster as
// @Description the caller's most recent goal.
// @Tags goals
// @Produce json
// @Param X-User-ID header int true "Caller"
// @Success 200 {object} map[string]any
// @Failure 404 {object} errorResponse
// @Router /goals/recommendations [get]
func (s *Service) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	user := s.callerUser(w, r)
	if user == nil {
		return
	}

	recs, err := s.recommendGoals(r.Context(), user.ID)
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user_id": user.ID, "recommendations": recs})
}

// defaultCommunityLimit caps GET /progress/community without ?limit.
const defaultCommunityLimit = 50

// handleShareStory godoc
// @Summary Share a progress story with the community
// @Tags progress
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Caller"
// @Param body body shareStoryRequest true "Story"
// @Success 201 {object} map[string]any
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /progress/community [post]
func (s *Service) handleShareStory(w http.ResponseWriter, r *http.Request) {
	var req shareStoryRequest
	if err := decodeJSON(w, r, &req); err != nil || strings.TrimSpace(req.Story) == "" {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest, "progress_story is required")
		return
	}
	story := strings.TrimSpace(req.Story)
	if utf8.RuneCountInString(story) > models.MaxStoryLength {
		writeError(w, r, http.StatusBadRequest, codeInvalidRequest,
			fmt.Sprintf("progress_story must be at most %d characters", models.MaxStoryLength))
		return
	}
	user := s.callerUser(w, r)
	if user == nil {
		return
	}

	shared, err := s.communityStore.CreateStory(r.Context(), user, story)
	if err != nil {
		writeInternal(w, r, err)
		return
	}

	s.sseBroadcaster.Publish(sse.EventStoryShared, shared)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Story shared successfully",
		"story":   shared,
	})
}

// handleCommunityProgress godoc
// @Summary Recent community progress stories
// @Tags progress
// @Produce json
// @Param limit query int false "Maximum stories returned"
// @Success 200 {object} map[string]any
// @Router /progress/community [get]
func (s *Service) handleCommunityProgress(w http.ResponseWriter, r *http.Request) {
	stories, err := s.communityStore.ListRecentStories(r.Context(), gormdb.ParseLimitParam(r, defaultCommunityLimit))
	if err != nil {
		writeInternal(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"progress": stories})
}
