package container

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/kbkolda/tripbotic/app/db"
	"github.com/kbkolda/tripbotic/config"
	"github.com/kbkolda/tripbotic/internal/api/interests"
	"github.com/kbkolda/tripbotic/internal/api/places"
	"github.com/kbkolda/tripbotic/internal/api/planner"
	"github.com/kbkolda/tripbotic/internal/api/trips"
)

// Container holds all application dependencies.
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	PlannerHandler   *planner.HandlerImpl
	InterestsHandler *interests.HandlerImpl
	TripsHandler     *trips.HandlerImpl
}

// NewContainer initializes and returns a new dependency container. When no
// database is reachable, trips fall back to an in-memory store and the rest
// of the service stays up.
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	var pool *pgxpool.Pool
	var tripRepo trips.Repo

	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err == nil {
		pool, err = database.Init(dbConfig.ConnectionURL, logger)
	}
	if err != nil {
		logger.Warn("Database unavailable, using in-memory trip store", slog.Any("error", err))
		tripRepo = trips.NewMemoryTripRepo(logger)
	} else {
		tripRepo = trips.NewPostgresTripRepo(pool, logger)
	}

	resolver := interests.NewResolver(logger)
	interestsHandler := interests.NewHandlerImpl(resolver, logger)

	provider := places.NewFoursquareClient(cfg, os.Getenv("FOURSQUARE_API_KEY"), logger)
	plannerService := planner.NewServiceImpl(provider, resolver, logger)
	plannerHandler := planner.NewHandlerImpl(plannerService, logger)

	tripsService := trips.NewServiceImpl(tripRepo, logger)
	tripsHandler := trips.NewHandlerImpl(tripsService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		PlannerHandler:   plannerHandler,
		InterestsHandler: interestsHandler,
		TripsHandler:     tripsHandler,
	}, nil
}

// Close releases pooled resources.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}
