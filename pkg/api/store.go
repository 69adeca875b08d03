package api

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/local-community-service/pkg/graph"
	"github.com/gilchrisn/local-community-service/pkg/metrics"
	"github.com/gilchrisn/local-community-service/pkg/parser"
)

var ErrDatasetNotFound = errors.New("dataset not found")

// Dataset is an uploaded graph held in memory
type Dataset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Format      string    `json:"format"`
	Nodes       int       `json:"nodes"`
	Edges       int       `json:"edges"`
	TotalWeight float64   `json:"total_weight"`
	CreatedAt   time.Time `json:"created_at"`

	graph  *graph.Graph
	parser *parser.GraphParser
}

// Graph returns the parsed graph
func (d *Dataset) Graph() *graph.Graph { return d.graph }

// Parser returns the id mapping of the graph
func (d *Dataset) Parser() *parser.GraphParser { return d.parser }

// DatasetStore keeps uploaded datasets in memory
type DatasetStore struct {
	datasets map[string]*Dataset
	mutex    sync.RWMutex
	metrics  *metrics.Registry
}

// NewDatasetStore creates an empty store
func NewDatasetStore(reg *metrics.Registry) *DatasetStore {
	return &DatasetStore{
		datasets: make(map[string]*Dataset),
		metrics:  reg,
	}
}

// Add registers a parsed graph under a fresh id
func (s *DatasetStore) Add(name, format string, parsed *parser.ParseResult) (*Dataset, error) {
	if parsed == nil || parsed.Graph == nil {
		return nil, fmt.Errorf("no graph to store")
	}

	dataset := &Dataset{
		ID:          uuid.New().String(),
		Name:        name,
		Format:      format,
		Nodes:       parsed.Graph.NumberOfNodes(),
		Edges:       parsed.Graph.NumberOfEdges(),
		TotalWeight: parsed.Graph.TotalEdgeWeight(),
		CreatedAt:   time.Now(),
		graph:       parsed.Graph,
		parser:      parsed.Parser,
	}

	s.mutex.Lock()
	s.datasets[dataset.ID] = dataset
	count := len(s.datasets)
	s.mutex.Unlock()

	s.metrics.SetDatasets(count)

	log.Info().
		Str("dataset_id", dataset.ID).
		Str("name", name).
		Int("nodes", dataset.Nodes).
		Int("edges", dataset.Edges).
		Msg("Dataset stored")

	return dataset, nil
}

// Get returns a dataset by id
func (s *DatasetStore) Get(id string) (*Dataset, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	dataset, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return dataset, nil
}

// List returns all datasets, oldest first
func (s *DatasetStore) List() []*Dataset {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]*Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Delete removes a dataset
func (s *DatasetStore) Delete(id string) error {
	s.mutex.Lock()
	if _, ok := s.datasets[id]; !ok {
		s.mutex.Unlock()
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	delete(s.datasets, id)
	count := len(s.datasets)
	s.mutex.Unlock()

	s.metrics.SetDatasets(count)
	log.Info().Str("dataset_id", id).Msg("Dataset deleted")
	return nil
}
