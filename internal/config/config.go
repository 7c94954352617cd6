package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Gateway struct {
	WindowMS      int `yaml:"window_ms"`
	RecvTimeoutMS int `yaml:"recv_timeout_ms"`
	RunSeconds    int `yaml:"run_seconds"` // 0 = run until interrupted
}

type Observability struct {
	LogLevel       string `yaml:"log_level"`       // "debug","info","warn","error"
	MetricsAddr    string `yaml:"metrics_addr"`    // empty disables the metrics server
	PrometheusPath string `yaml:"prometheus_path"` // e.g. "/metrics"
}

type Policy struct {
	ID      uint32 `yaml:"id"`
	MaxRate int    `yaml:"max_rate"`
	Label   string `yaml:"label"`
	Trusted bool   `yaml:"trusted"`
	Schema  string `yaml:"schema"` // named payload schema, e.g. "engine_telemetry"
}

type DefaultPolicy struct {
	MaxRate int    `yaml:"max_rate"`
	Label   string `yaml:"label"`
}

type Sender struct {
	ID              uint32 `yaml:"id"`
	IntervalMS      int    `yaml:"interval_ms"`
	DurationSeconds int    `yaml:"duration_seconds"`
}

type Senders struct {
	Legit Sender `yaml:"legit"`
	Flood Sender `yaml:"flood"`
}

type Root struct {
	Gateway       Gateway       `yaml:"gateway"`
	Observability Observability `yaml:"observability"`
	Default       DefaultPolicy `yaml:"default_policy"`
	Policies      []Policy      `yaml:"policies"`
	Senders       Senders       `yaml:"senders"`
}

func (g Gateway) Window() time.Duration {
	if g.WindowMS <= 0 {
		return time.Second
	}
	return time.Duration(g.WindowMS) * time.Millisecond
}

func (g Gateway) RecvTimeout() time.Duration {
	if g.RecvTimeoutMS <= 0 {
		return time.Second
	}
	return time.Duration(g.RecvTimeoutMS) * time.Millisecond
}

func (s Sender) Interval() time.Duration {
	if s.IntervalMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(s.IntervalMS) * time.Millisecond
}

func (s Sender) Duration() time.Duration {
	if s.DurationSeconds <= 0 {
		return 3 * time.Second
	}
	return time.Duration(s.DurationSeconds) * time.Second
}

func Load(path string) (*Root, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Root
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	for i := range cfg.Policies {
		if cfg.Policies[i].MaxRate <= 0 {
			return nil, fmt.Errorf("policy 0x%X: max_rate must be positive", cfg.Policies[i].ID)
		}
	}
	if cfg.Observability.LogLevel == "" {
		cfg.Observability.LogLevel = "info"
	}
	if cfg.Observability.PrometheusPath == "" {
		cfg.Observability.PrometheusPath = "/metrics"
	}
	if cfg.Default.MaxRate <= 0 {
		cfg.Default.MaxRate = 10
	}
	if cfg.Default.Label == "" {
		cfg.Default.Label = "UNKNOWN_ID"
	}
	if cfg.Senders.Legit.ID == 0 {
		cfg.Senders.Legit.ID = 0x200
	}
	if cfg.Senders.Flood.ID == 0 {
		cfg.Senders.Flood.ID = 0x001
	}

	return &cfg, nil
}
