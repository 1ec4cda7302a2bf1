// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Listen != ":8480" {
		t.Errorf("expected listen=:8480, got %s", cfg.Listen)
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("expected store.driver=memory, got %s", cfg.Store.Driver)
	}
	if cfg.Backend.Driver != "lattice" {
		t.Errorf("expected backend.driver=lattice, got %s", cfg.Backend.Driver)
	}
	if cfg.Journal.Compression != "zstd" {
		t.Errorf("expected journal.compression=zstd, got %s", cfg.Journal.Compression)
	}
}

func TestLoadRequiresDiscoveryConfig(t *testing.T) {
	orig := os.Getenv("DISCOVERY_CONFIG")
	defer os.Setenv("DISCOVERY_CONFIG", orig)
	os.Unsetenv("DISCOVERY_CONFIG")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DISCOVERY_CONFIG not set, got nil")
	}
	if !strings.Contains(err.Error(), "DISCOVERY_CONFIG") {
		t.Errorf("error does not mention the variable: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.yaml")
	content := `
identity: acme-v-initech
listen: "127.0.0.1:9000"
administrator: "@lead:counsel"
submitters:
  - "@alice:counsel"
  - "@bob:counsel"
cooldown_seconds: 30
store:
  driver: sqlite
  path: /var/lib/discovery/ledger.db
backend:
  driver: sim
  key_file: /etc/discovery/seal.key
journal:
  path: /var/lib/discovery/events.journal
  compression: lz4
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Identity != "acme-v-initech" {
		t.Errorf("identity = %q", cfg.Identity)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if len(cfg.Submitters) != 2 || cfg.Submitters[0] != "@alice:counsel" {
		t.Errorf("submitters = %v", cfg.Submitters)
	}
	if cfg.CooldownSeconds != 30 {
		t.Errorf("cooldown_seconds = %d", cfg.CooldownSeconds)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/var/lib/discovery/ledger.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Journal.Compression != "lz4" {
		t.Errorf("journal.compression = %q", cfg.Journal.Compression)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Identity = "case-1"
		cfg.Administrator = "@lead:counsel"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	for name, mutate := range map[string]func(*Config){
		"missing identity":       func(c *Config) { c.Identity = "" },
		"missing administrator":  func(c *Config) { c.Administrator = "" },
		"missing listen":         func(c *Config) { c.Listen = "" },
		"unknown store driver":   func(c *Config) { c.Store.Driver = "postgres" },
		"sqlite without path":    func(c *Config) { c.Store.Driver = "sqlite" },
		"unknown backend driver": func(c *Config) { c.Backend.Driver = "rsa" },
		"sim without key file":   func(c *Config) { c.Backend.Driver = "sim" },
		"unknown compression":    func(c *Config) { c.Journal.Compression = "gzip" },
	} {
		cfg := valid()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: Validate accepted the config", name)
		}
	}
}
