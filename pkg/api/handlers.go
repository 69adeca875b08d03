package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/local-community-service/pkg/parser"
)

const version = "1.0.0"

// Handlers contains HTTP request handlers
type Handlers struct {
	config    *Config
	store     *DatasetStore
	detection *DetectionService
}

// NewHandlers creates new API handlers
func NewHandlers(config *Config, store *DatasetStore, detection *DetectionService) *Handlers {
	return &Handlers{
		config:    config,
		store:     store,
		detection: detection,
	}
}

// UploadGraph parses the request body as a graph and stores it. The format
// defaults to an edge list; ?format=metis selects METIS. ?name= labels it.
func (h *Handlers) UploadGraph(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = parser.FormatEdgeList
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "Unnamed Graph"
	}

	body := http.MaxBytesReader(w, r.Body, h.config.MaxUploadBytes())
	defer body.Close()

	p := parser.NewGraphParser().WithLogger(log.Logger)
	var (
		parsed *parser.ParseResult
		err    error
	)
	switch format {
	case parser.FormatEdgeList:
		parsed, err = p.ParseEdgeList(body)
	case parser.FormatMETIS:
		parsed, err = p.ParseMETIS(body)
	default:
		WriteErrorResponse(w, http.StatusBadRequest, "Unsupported graph format", errors.New(format))
		return
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteErrorResponse(w, http.StatusRequestEntityTooLarge, "Graph exceeds upload limit", err)
			return
		}
		log.Error().Err(err).Msg("Failed to parse uploaded graph")
		WriteErrorResponse(w, http.StatusBadRequest, "Failed to parse graph", err)
		return
	}
	if parsed.Graph.NumberOfNodes() == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "Graph has no nodes", nil)
		return
	}

	dataset, err := h.store.Add(name, format, parsed)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Failed to store graph", err)
		return
	}

	WriteSuccessResponse(w, http.StatusCreated, "Graph uploaded successfully", dataset)
}

// ListGraphs lists all stored graphs
func (h *Handlers) ListGraphs(w http.ResponseWriter, r *http.Request) {
	WriteSuccessResponse(w, http.StatusOK, "Graphs retrieved successfully", h.store.List())
}

// GetGraph retrieves a specific graph
func (h *Handlers) GetGraph(w http.ResponseWriter, r *http.Request) {
	graphID := mux.Vars(r)["graphId"]

	dataset, err := h.store.Get(graphID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Graph not found", err)
		return
	}

	WriteSuccessResponse(w, http.StatusOK, "Graph retrieved successfully", dataset)
}

// DeleteGraph deletes a graph
func (h *Handlers) DeleteGraph(w http.ResponseWriter, r *http.Request) {
	graphID := mux.Vars(r)["graphId"]

	if err := h.store.Delete(graphID); err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Graph not found", err)
		return
	}

	WriteSuccessResponse(w, http.StatusOK, "Graph deleted successfully", nil)
}

// DetectCommunities runs local community detection on a stored graph
func (h *Handlers) DetectCommunities(w http.ResponseWriter, r *http.Request) {
	graphID := mux.Vars(r)["graphId"]

	dataset, err := h.store.Get(graphID)
	if err != nil {
		WriteErrorResponse(w, http.StatusNotFound, "Graph not found", err)
		return
	}

	var req DetectRequest
	decoder := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	report, err := h.detection.Detect(r.Context(), dataset, &req)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrBadRequest) {
			status = http.StatusBadRequest
		}
		log.Error().
			Str("dataset_id", graphID).
			Err(err).
			Msg("Detection failed")
		WriteErrorResponse(w, status, "Detection failed", err)
		return
	}

	WriteSuccessResponse(w, http.StatusOK, "Communities detected successfully", report)
}

// HealthCheck returns server health status
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   version,
		"datasets":  len(h.store.List()),
	}
	WriteSuccessResponse(w, http.StatusOK, "Service is healthy", health)
}

// ListAlgorithms lists available detection strategies
func (h *Handlers) ListAlgorithms(w http.ResponseWriter, r *http.Request) {
	algorithms := []map[string]interface{}{
		{
			"name":        "prn",
			"description": "PageRank-Nibble: best sweep cut of an approximate personalized PageRank vector",
			"parameters": []map[string]interface{}{
				{"name": "alpha", "type": "number", "default": 0.1, "description": "Loop probability of the lazy random walk"},
				{"name": "epsilon", "type": "number", "default": 1e-5, "description": "Push tolerance of the PageRank approximation"},
			},
		},
		{
			"name":        "gce",
			"description": "Greedy Community Expansion",
			"parameters": []map[string]interface{}{
				{"name": "objective", "type": "string", "default": "M", "description": "M (internal/boundary weight) or L (density ratio)"},
				{"name": "max_community_size", "type": "integer", "default": 0, "description": "Growth cap, 0 for unlimited"},
			},
		},
	}
	WriteSuccessResponse(w, http.StatusOK, "Algorithms retrieved successfully", algorithms)
}
