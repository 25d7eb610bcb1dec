// Copyright (C) 2026, The Leanr Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config loads the YAML-driven configuration for leanr's
// kernel and runtime, using a typed-struct-plus-sentinel-error
// pattern for parameter validation.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Error variables for parameter validation.
var (
	ErrInvalidWorkerThreads     = errors.New("config: worker_threads must be >= 0")
	ErrInvalidMailboxCapacity   = errors.New("config: mailbox capacity must be >= 1")
	ErrInvalidMailboxWatermarks = errors.New("config: mailbox high_water must be <= capacity and low_water must be < high_water")
	ErrInvalidConversionFuel    = errors.New("config: kernel conversion_fuel must be >= 1")
)

// MailboxConfig bounds a mailbox's capacity and its two watermarks.
type MailboxConfig struct {
	Capacity  int `yaml:"capacity"`
	HighWater int `yaml:"high_water"`
	LowWater  int `yaml:"low_water"`
}

// RuntimeConfig configures the actor runtime's scheduler and default
// mailbox sizing.
type RuntimeConfig struct {
	// WorkerThreads is the scheduler's worker count. Zero defers to
	// runtime.GOMAXPROCS(0), one worker per logical core.
	WorkerThreads int           `yaml:"worker_threads"`
	Mailbox       MailboxConfig `yaml:"mailbox"`
}

// KernelConfig configures the type-checking kernel.
type KernelConfig struct {
	// ConversionFuel is loaded and validated here; the kernel's
	// Converter does not read it and always starts from
	// kernel.DefaultFuel (10000 WHNF reduction steps).
	ConversionFuel int `yaml:"conversion_fuel"`
}

// Config is the top-level configuration loaded from YAML.
type Config struct {
	Runtime RuntimeConfig `yaml:"runtime"`
	Kernel  KernelConfig  `yaml:"kernel"`
}

// Default returns the configuration leanr ships with when no config
// file is supplied: one worker per logical core, the runtime's own
// 1000/800/200 mailbox watermarks, and the kernel's own 10000-step
// conversion fuel.
func Default() Config {
	return Config{
		Runtime: RuntimeConfig{
			WorkerThreads: 0,
			Mailbox:       MailboxConfig{Capacity: 1000, HighWater: 800, LowWater: 200},
		},
		Kernel: KernelConfig{
			ConversionFuel: 10000,
		},
	}
}

// Load reads and parses a YAML config file at path, starting from
// Default so an omitted field keeps its default rather than zeroing
// out, then validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against the invariants the kernel and
// runtime packages themselves assume.
func (c Config) Validate() error {
	if c.Runtime.WorkerThreads < 0 {
		return ErrInvalidWorkerThreads
	}
	mb := c.Runtime.Mailbox
	if mb.Capacity < 1 {
		return ErrInvalidMailboxCapacity
	}
	if mb.HighWater > mb.Capacity || mb.LowWater >= mb.HighWater {
		return ErrInvalidMailboxWatermarks
	}
	if c.Kernel.ConversionFuel < 1 {
		return ErrInvalidConversionFuel
	}
	return nil
}
