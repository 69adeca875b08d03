// Command scd finds local communities around seed nodes of a graph file.
//
//	scd --graph edges.txt --seeds 12,40 --partition --out results/
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/gilchrisn/local-community-service/pkg/output"
	"github.com/gilchrisn/local-community-service/pkg/parser"
	"github.com/gilchrisn/local-community-service/pkg/partition"
	"github.com/gilchrisn/local-community-service/pkg/scd"
	"github.com/gilchrisn/local-community-service/pkg/seeds"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "scd: %v\n", err)
		os.Exit(1)
	}
}

// flagBindings maps command line flags onto detector config keys
var flagBindings = map[string]string{
	"strategy":  "algorithm.strategy",
	"alpha":     "algorithm.alpha",
	"epsilon":   "algorithm.epsilon",
	"objective": "gce.objective",
	"max-size":  "gce.max_community_size",
	"parallel":  "performance.parallel",
	"workers":   "performance.num_workers",
	"log-level": "logging.level",
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	fs := pflag.NewFlagSet("scd", pflag.ContinueOnError)
	graphFile := fs.StringP("graph", "g", "", "graph file (required)")
	format := fs.StringP("format", "f", parser.FormatEdgeList, "graph format: edgelist or metis")
	seedSpec := fs.StringP("seeds", "s", "", "seeds: ids (12,40,7), top-pagerank:K, top-degree:K or random:K[:SEED]")
	doPartition := fs.BoolP("partition", "p", false, "merge the communities into a partition")
	outDir := fs.StringP("out", "o", "", "directory for communities.json and partition.txt")
	configFile := fs.StringP("config", "c", "", "config file (yaml, json or toml)")
	truthFile := fs.String("ground-truth", "", "\"node community\" file to score the partition against (needs --partition)")
	noProgress := fs.Bool("no-progress", false, "log per-seed results at debug level only")

	fs.String("strategy", scd.StrategyPageRankNibble, "detection strategy: prn or gce")
	fs.Float64("alpha", 0.1, "loop probability of the lazy random walk")
	fs.Float64("epsilon", 1e-5, "push tolerance of the PageRank approximation")
	fs.String("objective", scd.ObjectiveM, "GCE objective: M or L")
	fs.Int("max-size", 0, "GCE community size cap (0 for unlimited)")
	fs.Bool("parallel", true, "expand seeds concurrently")
	fs.Int("workers", 0, "worker limit for concurrent expansion (0 for all CPUs)")
	fs.String("log-level", "info", "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *graphFile == "" || *seedSpec == "" {
		fs.Usage()
		return fmt.Errorf("--graph and --seeds are required")
	}
	if *truthFile != "" && !*doPartition {
		return fmt.Errorf("--ground-truth needs --partition")
	}

	config := scd.NewConfig()
	if *configFile != "" {
		if err := config.LoadFromFile(*configFile); err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	// flags that were set override file values, which override defaults
	v := config.Viper()
	for name, key := range flagBindings {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	if *noProgress {
		config.Set("logging.enable_progress", false)
	}
	// stdout may carry the JSON report
	config.Set("logging.output", "stderr")

	logger := config.CreateLogger()

	parsed, err := parser.NewGraphParser().WithLogger(logger).ParseFile(*graphFile, *format)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	logger.Info().
		Str("file", *graphFile).
		Int("nodes", parsed.Graph.NumberOfNodes()).
		Int("edges", parsed.Graph.NumberOfEdges()).
		Msg("Graph loaded")

	seedNodes, err := seeds.Parse(*seedSpec, parsed.Graph, parsed.Parser)
	if err != nil {
		return err
	}

	detector, err := scd.New(parsed.Graph, config)
	if err != nil {
		return err
	}

	var (
		result *scd.Result
		part   *partition.Partition
	)
	if *doPartition {
		part, result, err = detector.RunPartition(ctx, seedNodes)
	} else {
		result, err = detector.Run(ctx, seedNodes)
	}
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	report := output.BuildReport(detector.Name(), result, part, parsed.Graph, parsed.Parser)

	if *truthFile != "" {
		truth, err := parsed.Parser.ParseGroundTruthFile(*truthFile)
		if err != nil {
			return fmt.Errorf("failed to load ground truth: %w", err)
		}
		if err := output.AddGroundTruth(report, part, truth); err != nil {
			return err
		}
	}

	if *outDir != "" {
		if err := output.NewFileWriter().WriteAll(report, part, parsed.Parser, *outDir); err != nil {
			return err
		}
		logger.Info().Str("dir", *outDir).Msg("Results written")
	} else if err := output.WriteCommunitiesJSON(stdout, report); err != nil {
		return err
	}

	return output.WriteSummary(stdout, report)
}
