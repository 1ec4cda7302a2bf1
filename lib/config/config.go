// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the discovery ledger daemon.
type Config struct {
	// Identity names this ledger instance. It is bound into every
	// decryption request, so it must be unique per deployment.
	Identity string `yaml:"identity"`

	// Listen is the HTTP listen address. Default: :8480.
	Listen string `yaml:"listen"`

	// Administrator is the initial administrator actor.
	Administrator string `yaml:"administrator"`

	// Submitters are the initially authorized submitter actors.
	Submitters []string `yaml:"submitters"`

	// CooldownSeconds is the per-actor interval between submissions
	// and between searches. Zero means the built-in default.
	CooldownSeconds uint64 `yaml:"cooldown_seconds"`

	// Store configures persistence.
	Store StoreConfig `yaml:"store"`

	// Backend configures the homomorphic backend.
	Backend BackendConfig `yaml:"backend"`

	// Journal configures the append-only event journal.
	Journal JournalConfig `yaml:"journal"`

	// Oracle configures the decryption oracle keys.
	Oracle OracleConfig `yaml:"oracle"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	// Driver selects the store: "memory" or "sqlite".
	// Default: memory.
	Driver string `yaml:"driver"`

	// Path is the sqlite database file. Required for the sqlite
	// driver, ignored otherwise.
	Path string `yaml:"path"`
}

// BackendConfig configures the homomorphic backend.
type BackendConfig struct {
	// Driver selects the backend: "sim" (sealed simulator, no
	// homomorphic security) or "lattice" (BGV). Default: lattice.
	Driver string `yaml:"driver"`

	// KeyFile is the simulator's 32-byte sealing key file. Required
	// for the sim driver, ignored otherwise.
	KeyFile string `yaml:"key_file"`
}

// JournalConfig configures the append-only event journal.
type JournalConfig struct {
	// Path is the journal file. Empty disables journaling.
	Path string `yaml:"path"`

	// Compression is the frame compression: "none", "lz4", or
	// "zstd". Default: zstd.
	Compression string `yaml:"compression"`
}

// OracleConfig configures the in-process decryption oracle keypair.
type OracleConfig struct {
	// PrivateKeyFile holds the oracle's Ed25519 signing key (as
	// written by discovery-keygen). Empty generates an ephemeral
	// keypair at startup.
	PrivateKeyFile string `yaml:"private_key_file"`
}

// Default returns the default configuration. These defaults are a
// base for the loaded file, not a substitute for it: Identity and
// Administrator have no usable defaults and Validate rejects their
// absence.
func Default() *Config {
	return &Config{
		Listen: ":8480",
		Store: StoreConfig{
			Driver: "memory",
		},
		Backend: BackendConfig{
			Driver: "lattice",
		},
		Journal: JournalConfig{
			Compression: "zstd",
		},
	}
}

// Load loads configuration from the DISCOVERY_CONFIG environment
// variable. There are no fallbacks or automatic discovery.
func Load() (*Config, error) {
	path := os.Getenv("DISCOVERY_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("DISCOVERY_CONFIG environment variable not set; " +
			"set it to the path of your ledger.yaml config file, or use --config flag")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path. The file is
// the single source of truth; environment variables do not override
// its values.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Identity == "" {
		errs = append(errs, fmt.Errorf("identity is required"))
	}
	if c.Administrator == "" {
		errs = append(errs, fmt.Errorf("administrator is required"))
	}
	if c.Listen == "" {
		errs = append(errs, fmt.Errorf("listen is required"))
	}

	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver must be one of: memory, sqlite"))
	}

	switch c.Backend.Driver {
	case "lattice":
	case "sim":
		if c.Backend.KeyFile == "" {
			errs = append(errs, fmt.Errorf("backend.key_file is required for the sim driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("backend.driver must be one of: sim, lattice"))
	}

	switch c.Journal.Compression {
	case "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("journal.compression must be one of: none, lz4, zstd"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
