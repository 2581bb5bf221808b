package meshgo

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/meshgo/internal/sequence"
)

// Config holds the tunables of a DB. The zero value is not useful; start
// from DefaultConfig or LoadConfig.
//
// Example YAML:
//
//	initial_sequence_size: 4096
//	max_sequence_size: 65536
//	recycle_handles: false
//	reclaim_empty_sequences: true
//	maintain_adjacencies: true
//	memory_limit_bytes: 268435456
//	log_level: debug
type Config struct {
	// InitialSequenceSize is the capacity of the first sequence allocated
	// for each entity type.
	InitialSequenceSize int `yaml:"initial_sequence_size"`
	// MaxSequenceSize caps the doubling growth of sequences.
	MaxSequenceSize int `yaml:"max_sequence_size"`
	// RecycleHandles reuses the handles of deleted entities.
	RecycleHandles bool `yaml:"recycle_handles"`
	// ReclaimEmptySequences releases a sequence's storage once its last
	// entity is deleted.
	ReclaimEmptySequences bool `yaml:"reclaim_empty_sequences"`
	// MaintainAdjacencies keeps vertex-to-element adjacency current on
	// every create and delete. When false the index is built on first use.
	MaintainAdjacencies bool `yaml:"maintain_adjacencies"`
	// MemoryLimitBytes bounds sequence and dense tag storage. 0 means
	// unlimited.
	MemoryLimitBytes int64 `yaml:"memory_limit_bytes"`
	// LogLevel is the slog level name used when no logger is supplied
	// ("debug", "info", "warn", "error"). Empty keeps the DB silent.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		InitialSequenceSize:   sequence.DefaultInitialSequenceSize,
		MaxSequenceSize:       sequence.DefaultMaxSequenceSize,
		ReclaimEmptySequences: true,
		MaintainAdjacencies:   true,
	}
}

// LoadConfig decodes a YAML configuration on top of DefaultConfig.
// Unknown keys are rejected.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.InitialSequenceSize < 0 {
		return fmt.Errorf("%w: initial_sequence_size %d", ErrInvalidArgument, c.InitialSequenceSize)
	}
	if c.MaxSequenceSize < 0 {
		return fmt.Errorf("%w: max_sequence_size %d", ErrInvalidArgument, c.MaxSequenceSize)
	}
	if c.MaxSequenceSize > 0 && c.InitialSequenceSize > c.MaxSequenceSize {
		return fmt.Errorf("%w: initial_sequence_size %d exceeds max_sequence_size %d",
			ErrInvalidArgument, c.InitialSequenceSize, c.MaxSequenceSize)
	}
	if c.MemoryLimitBytes < 0 {
		return fmt.Errorf("%w: memory_limit_bytes %d", ErrInvalidArgument, c.MemoryLimitBytes)
	}
	if _, err := c.level(); err != nil {
		return err
	}
	return nil
}

// level parses LogLevel. An empty LogLevel yields slog.LevelInfo.
func (c Config) level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return lvl, nil
	}
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return lvl, fmt.Errorf("%w: log_level %q", ErrInvalidArgument, c.LogLevel)
	}
	return lvl, nil
}

func (c Config) sequenceConfig() sequence.Config {
	return sequence.Config{
		InitialSequenceSize:   c.InitialSequenceSize,
		MaxSequenceSize:       c.MaxSequenceSize,
		RecycleHandles:        c.RecycleHandles,
		ReclaimEmptySequences: c.ReclaimEmptySequences,
	}
}
