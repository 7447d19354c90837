// Package config loads pool and scheduler configuration from YAML files.
//
// Every field has a usable zero-value default, so a missing file or a
// partial file is fine: Load fills in defaults and clamps nonsense values
// rather than failing. Only unreadable YAML is an error.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "github.com/goccy/go-yaml"

	"github.com/vnykmshr/goexec/pkg/execution/deadline"
	"github.com/vnykmshr/goexec/pkg/execution/stealpool"
	"github.com/vnykmshr/goexec/pkg/execution/workerpool"
)

// Pool configures a worker or priority pool.
type Pool struct {
	Workers       int `yaml:"workers"`        // 0 = runtime.NumCPU()
	QueueCapacity int `yaml:"queue_capacity"` // 0 = unbounded
}

// StealPool configures a work-stealing pool.
type StealPool struct {
	Workers     int `yaml:"workers"`       // 0 = runtime.NumCPU()
	IdleSleepMS int `yaml:"idle_sleep_ms"` // 0 = 1ms
}

// Scheduler configures a deadline scheduler.
type Scheduler struct {
	MaxEntries int    `yaml:"max_entries"` // 0 = 10000
	Location   string `yaml:"location"`    // IANA zone name; empty = local
}

// Config mirrors a goexec YAML configuration file.
type Config struct {
	Pool      Pool      `yaml:"pool"`
	StealPool StealPool `yaml:"steal_pool"`
	Scheduler Scheduler `yaml:"scheduler"`
}

// Default returns a configuration of zero values, which every component
// interprets as its built-in default.
func Default() Config {
	return Config{}
}

// Load reads YAML from path and overrides defaults; an empty path or a
// missing file yields defaults only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	// sanity clamps
	if cfg.Pool.Workers < 0 {
		cfg.Pool.Workers = 0
	}
	if cfg.Pool.QueueCapacity < 0 {
		cfg.Pool.QueueCapacity = 0
	}
	if cfg.StealPool.Workers < 0 {
		cfg.StealPool.Workers = 0
	}
	if cfg.StealPool.IdleSleepMS < 0 {
		cfg.StealPool.IdleSleepMS = 0
	}
	if cfg.Scheduler.MaxEntries < 0 {
		cfg.Scheduler.MaxEntries = 0
	}

	return cfg, nil
}

// WorkerPool converts the pool section to a workerpool configuration.
func (c Config) WorkerPool() workerpool.Config {
	return workerpool.Config{
		Workers:       c.Pool.Workers,
		QueueCapacity: c.Pool.QueueCapacity,
	}
}

// StealPoolConfig converts the steal_pool section to a stealpool configuration.
func (c Config) StealPoolConfig() stealpool.Config {
	return stealpool.Config{
		Workers:   c.StealPool.Workers,
		IdleSleep: time.Duration(c.StealPool.IdleSleepMS) * time.Millisecond,
	}
}

// DeadlineConfig converts the scheduler section to a deadline configuration.
// An unknown location name is an error.
func (c Config) DeadlineConfig() (deadline.Config, error) {
	cfg := deadline.Config{MaxEntries: c.Scheduler.MaxEntries}
	if c.Scheduler.Location != "" {
		loc, err := time.LoadLocation(c.Scheduler.Location)
		if err != nil {
			return cfg, fmt.Errorf("loading scheduler location: %w", err)
		}
		cfg.Location = loc
	}
	return cfg, nil
}
