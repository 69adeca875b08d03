package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/gilchrisn/local-community-service/pkg/metrics"
)

// SetupRoutes registers the API under /api/v1 and the metrics endpoint
func SetupRoutes(router *mux.Router, handlers *Handlers, reg *metrics.Registry) {
	api := router.PathPrefix("/api/v1").Subrouter()

	// Graph management endpoints
	graphs := api.PathPrefix("/graphs").Subrouter()
	graphs.HandleFunc("", handlers.ListGraphs).Methods("GET")
	graphs.HandleFunc("", handlers.UploadGraph).Methods("POST")
	graphs.HandleFunc("/{graphId}", handlers.GetGraph).Methods("GET")
	graphs.HandleFunc("/{graphId}", handlers.DeleteGraph).Methods("DELETE")

	// Detection endpoint
	graphs.HandleFunc("/{graphId}/communities", handlers.DetectCommunities).Methods("POST")

	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	api.HandleFunc("/algorithms", handlers.ListAlgorithms).Methods("GET")

	router.Handle("/metrics", reg.Handler()).Methods("GET")

	api.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}).Methods("OPTIONS")
}

// NewRouter builds the complete handler with its middleware stack
func NewRouter(config *Config, reg *metrics.Registry) http.Handler {
	store := NewDatasetStore(reg)
	handlers := NewHandlers(config, store, NewDetectionService(config, reg))

	router := mux.NewRouter()
	SetupRoutes(router, handlers, reg)

	router.Use(LoggingMiddleware)
	router.Use(MetricsMiddleware(reg))
	router.Use(CORSMiddleware)
	router.Use(RecoveryMiddleware)

	return router
}
