// Cinematch - Movie and Series Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package config

import (
	"testing"
	"time"

	"github.com/tomtom215/cinematch/internal/recommend"
)

func TestEngineConfig(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.Factors = 32
	cfg.Recommend.Solver = "als"
	cfg.Recommend.Iterations = 7
	cfg.Recommend.MaxN = 50
	cfg.Recommend.TrainingTimeout = time.Minute

	ec := cfg.EngineConfig()
	if ec.Factors != 32 || ec.Solver != recommend.SolverALS || ec.ALS.Iterations != 7 {
		t.Errorf("EngineConfig() = %+v", ec)
	}
	if ec.Limits.MaxN != 50 || ec.Limits.DefaultN != 10 {
		t.Errorf("Limits = %+v, want 10/50", ec.Limits)
	}
	if ec.Training.Timeout != time.Minute {
		t.Errorf("Training.Timeout = %v, want 1m", ec.Training.Timeout)
	}
	if err := ec.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestEngineConfigCacheDisabledByZeroTTL(t *testing.T) {
	cfg := defaultConfig()
	cfg.Recommend.CacheTTL = 0
	if cfg.EngineConfig().Cache.Enabled {
		t.Error("cache enabled with zero TTL")
	}
}

func TestDerivedConfigs(t *testing.T) {
	cfg := defaultConfig()
	cfg.Data.CatalogPath = "/tmp/titles.csv"
	cfg.Metadata.OpenTimeout = 5 * time.Second
	cfg.Preference.Mode = "remote"
	cfg.Preference.Endpoint = "http://localhost:9999/extract"
	cfg.Events.RetryMaxRetries = 4
	cfg.Logging.Format = "console"

	if got := cfg.DatasetConfig(); got.CatalogPath != "/tmp/titles.csv" || got.DuckDBPath != ":memory:" {
		t.Errorf("DatasetConfig() = %+v", got)
	}
	if got := cfg.BreakerConfig(); got.OpenTimeout != 5*time.Second || got.MaxRequests != 3 {
		t.Errorf("BreakerConfig() = %+v", got)
	}
	if got := cfg.PreferenceConfig(); got.Mode != "remote" || got.Remote.Endpoint != cfg.Preference.Endpoint || got.Remote.FailureThreshold == 0 {
		t.Errorf("PreferenceConfig() = %+v", got)
	}
	if got := cfg.EventsConfig(); got.RetryMaxRetries != 4 || got.OutputBuffer == 0 {
		t.Errorf("EventsConfig() = %+v", got)
	}
	if got := cfg.LoggingConfig(); got.Format != "console" || !got.Timestamp {
		t.Errorf("LoggingConfig() = %+v", got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"no model store", func(c *Config) { c.ModelStore.Backend = BackendNone; c.ModelStore.Path = "" }, false},
		{"file store without path", func(c *Config) { c.ModelStore.Path = "" }, true},
		{"unknown backend", func(c *Config) { c.ModelStore.Backend = "s3" }, true},
		{"zero factors", func(c *Config) { c.Recommend.Factors = 0 }, true},
		{"diversity above one", func(c *Config) { c.Recommend.DiversityLambda = 1.5 }, true},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
		{"bad endpoint", func(c *Config) { c.Preference.Endpoint = "not a url" }, true},
		{"remote with endpoint", func(c *Config) {
			c.Preference.Mode = "remote"
			c.Preference.Endpoint = "https://extract.example/v1"
		}, false},
		{"zero rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, true},
		{"negative interval", func(c *Config) { c.Recommend.TrainInterval = -time.Second }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
