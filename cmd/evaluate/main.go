// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

// Command evaluate trains a model on the older part of each user's history
// and reports top-K ranking metrics on the newer part.
//
//	evaluate -config config.yaml -k 5,10,20 -out report.json
//
// Settings come from the same layers as the server (defaults, config file,
// environment). Models trained here are never persisted.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cinematch/internal/config"
	"github.com/tomtom215/cinematch/internal/dataset"
	"github.com/tomtom215/cinematch/internal/logging"
	"github.com/tomtom215/cinematch/internal/recommend"
)

// report is written to -out, or stdout when -out is empty.
type report struct {
	Dataset    dataset.Stats               `json:"dataset"`
	TrainRows  int                         `json:"train_rows"`
	TestRows   int                         `json:"test_rows"`
	TestSize   float64                     `json:"test_size"`
	Solver     string                      `json:"solver"`
	Factors    int                         `json:"factors"`
	TrainTime  string                      `json:"train_time"`
	Evaluation *recommend.EvaluationReport `json:"evaluation"`
}

func main() {
	var (
		configPath = flag.String("config", "", "config file (default: search "+config.ConfigPathEnvVar+" and standard paths)")
		cutoffs    = flag.String("k", "5,10,20", "comma-separated cutoffs")
		testSize   = flag.Float64("test-size", 0, "held-out fraction per user (default: recommend.test_size)")
		outPath    = flag.String("out", "", "write the JSON report to this file")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.LoggingConfig())

	ks, err := parseCutoffs(*cutoffs)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid -k")
	}
	if *testSize != 0 {
		cfg.Recommend.TestSize = *testSize
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := evaluate(ctx, cfg, ks)
	if err != nil {
		logging.Fatal().Err(err).Msg("Evaluation failed")
	}

	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to encode report")
	}
	if *outPath == "" {
		fmt.Println(string(out))
		return
	}
	if err := os.WriteFile(*outPath, append(out, '\n'), 0o600); err != nil {
		logging.Fatal().Err(err).Str("path", *outPath).Msg("Failed to write report")
	}
	logging.Info().Str("path", *outPath).Msg("Report written")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFile(path)
}

func parseCutoffs(s string) ([]int, error) {
	var ks []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := strconv.Atoi(part)
		if err != nil || k < 1 {
			return nil, fmt.Errorf("cutoff %q must be a positive integer", part)
		}
		ks = append(ks, k)
	}
	if len(ks) == 0 {
		return nil, fmt.Errorf("no cutoffs in %q", s)
	}
	return ks, nil
}

func evaluate(ctx context.Context, cfg *config.Config, ks []int) (*report, error) {
	logger := logging.Logger()

	loader, err := dataset.Open(cfg.DatasetConfig(), logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = loader.Close() }()

	rows, err := loader.LoadInteractions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load interactions: %w", err)
	}

	train, test, err := recommend.TemporalSplit(rows, cfg.Recommend.TestSize)
	if err != nil {
		return nil, err
	}
	logging.Info().
		Int("train_rows", len(train)).
		Int("test_rows", len(test)).
		Float64("test_size", cfg.Recommend.TestSize).
		Msg("Temporal split complete")

	engineCfg := cfg.EngineConfig()
	engineCfg.Cache.Enabled = false
	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, err
	}
	defer engine.Close()

	start := time.Now()
	if err := engine.TrainOn(ctx, train); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}
	trainTime := time.Since(start)

	eval, err := recommend.Evaluate(ctx, engine, test, ks)
	if err != nil {
		return nil, err
	}

	return &report{
		Dataset:    dataset.InteractionStats(rows),
		TrainRows:  len(train),
		TestRows:   len(test),
		TestSize:   cfg.Recommend.TestSize,
		Solver:     cfg.Recommend.Solver,
		Factors:    cfg.Recommend.Factors,
		TrainTime:  trainTime.Round(time.Millisecond).String(),
		Evaluation: eval,
	}, nil
}
