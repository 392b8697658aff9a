package worker

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	// Registers the OpenAPI document served under /swagger.
	_ "github.com/thebtf/flowcheck/docs"
)

func (s *Service) setupRoutes() {
	r := s.router

	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/version", s.handleVersion)
	r.Get("/ready", s.handleReady)
	r.Get("/coming_soon", s.handleComingSoon)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Group(func(r chi.Router) {
		r.Use(s.requireReady)

		r.Get("/check_claim", s.handleCheckClaim)
		r.Post("/check_claim", s.handleCheckClaim)
		r.Get("/innovation_news", s.handleInnovationNews)

		r.Post("/users", s.handleCreateUser)

		r.Post("/progress", s.handleCreateProgress)
		r.Get("/progress/insights", s.handleProgressInsights)
		r.Get("/progress/community", s.handleCommunityProgress)
		r.Post("/progress/community", s.handleShareStory)
		r.Get("/progress/{userID}", s.handleListProgress)
		r.Get("/progress/{userID}/forecast", s.handleForecast)

		r.Post("/goal", s.handleCreateGoal)
		r.Get("/goals", s.handleListGoals)
		r.Get("/goals/recommendations", s.handleRecommendations)

		r.Get("/api/events", s.sseBroadcaster.HandleSSE)
		r.Get("/api/stats", s.handleStats)
	})
}
