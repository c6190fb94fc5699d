package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/kbkolda/tripbotic/internal/api/interests"
	"github.com/kbkolda/tripbotic/internal/api/planner"
	"github.com/kbkolda/tripbotic/internal/api/trips"
)

// Config contains the handlers the router mounts. Server-wide middleware
// (logger, requestID, recoverer) is applied before mounting in main.go.
type Config struct {
	PlannerHandler   planner.Handler
	InterestsHandler interests.Handler
	TripsHandler     trips.Handler
}

// SetupRouter initializes and configures the main application router.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/itineraries/plan", cfg.PlannerHandler.PlanTrip)

		r.Get("/interests", cfg.InterestsHandler.GetInterests)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", cfg.TripsHandler.SaveTrip)
			r.Get("/", cfg.TripsHandler.ListTrips)
			r.Get("/{tripID}", cfg.TripsHandler.GetTrip)
		})
	})

	return r
}
