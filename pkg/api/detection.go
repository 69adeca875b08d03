package api

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gilchrisn/local-community-service/pkg/metrics"
	"github.com/gilchrisn/local-community-service/pkg/output"
	"github.com/gilchrisn/local-community-service/pkg/partition"
	"github.com/gilchrisn/local-community-service/pkg/scd"
	"github.com/gilchrisn/local-community-service/pkg/seeds"
)

// ErrBadRequest marks detection failures caused by the request itself
var ErrBadRequest = errors.New("bad detection request")

// DetectRequest is the body of a community detection request. Seeds are
// original node ids; SeedSpec accepts the same forms as the CLI
// (e.g. "top-degree:5"). At least one of them must be given.
type DetectRequest struct {
	Seeds            []string `json:"seeds"`
	SeedSpec         string   `json:"seed_spec"`
	Strategy         string   `json:"strategy"`
	Alpha            *float64 `json:"alpha"`
	Epsilon          *float64 `json:"epsilon"`
	Objective        string   `json:"objective"`
	MaxCommunitySize *int     `json:"max_community_size"`
	Partition        bool     `json:"partition"`
}

// DetectionService runs detectors over stored datasets
type DetectionService struct {
	config  *Config
	metrics *metrics.Registry
}

// NewDetectionService creates a detection service
func NewDetectionService(config *Config, reg *metrics.Registry) *DetectionService {
	return &DetectionService{config: config, metrics: reg}
}

func (s *DetectionService) detectorConfig(req *DetectRequest) *scd.Config {
	config := scd.NewConfig()
	config.Set("logging.level", s.config.LogLevel())
	config.Set("logging.enable_progress", false)
	if n := s.config.NumWorkers(); n > 0 {
		config.Set("performance.num_workers", n)
	}

	if req.Strategy != "" {
		config.Set("algorithm.strategy", req.Strategy)
	}
	if req.Alpha != nil {
		config.Set("algorithm.alpha", *req.Alpha)
	}
	if req.Epsilon != nil {
		config.Set("algorithm.epsilon", *req.Epsilon)
	}
	if req.Objective != "" {
		config.Set("gce.objective", req.Objective)
	}
	if req.MaxCommunitySize != nil {
		config.Set("gce.max_community_size", *req.MaxCommunitySize)
	}
	return config
}

func (s *DetectionService) resolveSeeds(dataset *Dataset, req *DetectRequest) ([]int, error) {
	switch {
	case len(req.Seeds) > 0:
		nodes, err := dataset.Parser().NormalizedIDs(req.Seeds)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return nodes, nil
	case strings.TrimSpace(req.SeedSpec) != "":
		nodes, err := seeds.Parse(req.SeedSpec, dataset.Graph(), dataset.Parser())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return nodes, nil
	default:
		return nil, fmt.Errorf("%w: no seeds given", ErrBadRequest)
	}
}

// Detect runs the requested detector and renders the result with original ids
func (s *DetectionService) Detect(ctx context.Context, dataset *Dataset, req *DetectRequest) (*output.Report, error) {
	start := time.Now()
	config := s.detectorConfig(req)
	strategy := strings.ToLower(config.Strategy())

	report, err := s.detect(ctx, dataset, req, config)
	if err != nil {
		s.metrics.RecordDetectionError(strategy)
		return nil, err
	}

	conductances := make([]float64, 0, len(report.Communities))
	for _, c := range report.Communities {
		if c.Conductance != nil {
			conductances = append(conductances, *c.Conductance)
		}
	}
	s.metrics.RecordDetection(strategy, req.Partition, time.Since(start), conductances, report.Statistics.RevertedSeeds)

	log.Info().
		Str("dataset_id", dataset.ID).
		Str("strategy", strategy).
		Int("seeds", report.Statistics.NumSeeds).
		Dur("duration", time.Since(start)).
		Msg("Detection completed")

	return report, nil
}

func (s *DetectionService) detect(ctx context.Context, dataset *Dataset, req *DetectRequest, config *scd.Config) (*output.Report, error) {
	seedNodes, err := s.resolveSeeds(dataset, req)
	if err != nil {
		return nil, err
	}

	detector, err := scd.New(dataset.Graph(), config)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
	}

	var (
		result *scd.Result
		part   *partition.Partition
	)
	if req.Partition {
		part, result, err = detector.RunPartition(ctx, seedNodes)
	} else {
		result, err = detector.Run(ctx, seedNodes)
	}
	if err != nil {
		if errors.Is(err, scd.ErrInvalidSeed) {
			return nil, fmt.Errorf("%w: %w", ErrBadRequest, err)
		}
		return nil, err
	}

	return output.BuildReport(detector.Name(), result, part, dataset.Graph(), dataset.Parser()), nil
}
