package handlers

import (
	"net/http"

	"pokedex-backend/internal/infrastructure/observability"
	"pokedex-backend/internal/middleware"
	"pokedex-backend/internal/service/pokemon"
	"pokedex-backend/internal/service/seed"
	"pokedex-backend/pkg/api"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v2"

// RouterDeps collects what the router needs.
type RouterDeps struct {
	PokemonService pokemon.Service
	SeedService    seed.Service
	Collector      *observability.Collector
	Logger         *zap.Logger
	ServiceName    string
	AllowedOrigins []string
}

// NewRouter builds the chi router with the full middleware chain.
func NewRouter(deps RouterDeps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	collector := deps.Collector
	if collector == nil {
		collector = observability.NewCollector("")
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()

	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(middleware.Recovery(logger))
	router.Use(observability.MetricsMiddleware(collector))
	router.Use(observability.TracingMiddleware(deps.ServiceName))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	router.Get("/health", healthCheck)
	router.Handle("/metrics", collector.Handler())
	router.Get("/api/swagger", api.SwaggerHandler())

	validator := NewValidator()
	pokemonHandler := NewPokemonHandler(deps.PokemonService, validator, logger)
	seedHandler := NewSeedHandler(deps.SeedService, logger)

	router.Route(APIPrefix, func(r chi.Router) {
		r.Route("/pokemon", func(r chi.Router) {
			r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("pokemon"), logger))

			r.Post("/", pokemonHandler.Create)
			r.Post("/bulk", pokemonHandler.CreateMany)
			r.Get("/", pokemonHandler.List)
			// One param name per segment; DELETE reads it as a record id.
			r.Get("/{term}", pokemonHandler.FindOne)
			r.Patch("/{term}", pokemonHandler.Update)
			r.Delete("/{term}", pokemonHandler.Delete)
		})

		// The upstream client carries its own breaker; seed failures stay INTERNAL.
		r.Get("/seed", seedHandler.Execute)
	})

	return router
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "healthy"})
}
