// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Discovery-ledger is the confidential batch ledger daemon. It holds
// the encrypted document ledger, runs homomorphic keyword searches
// over it, and exchanges decryption requests with the oracle.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/te6481-4/Legal-Discovery-Fhe/ledger"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/config"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe/lattice"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/fhe/sim"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/journal"
	"github.com/te6481-4/Legal-Discovery-Fhe/lib/oracle"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file (required; or set DISCOVERY_CONFIG)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	capabilities, encryptor, decryptor, err := buildBackend(cfg, logger)
	if err != nil {
		return err
	}

	signer, err := loadSigner(cfg.Oracle.PrivateKeyFile)
	if err != nil {
		return err
	}
	verifier, err := oracle.NewEd25519Verifier(signer.Public())
	if err != nil {
		return err
	}
	local := oracle.NewLocal(decryptor, signer, logger)

	var store ledger.Store
	if cfg.Store.Driver == "sqlite" {
		sqlStore, err := ledger.OpenSQLiteStore(cfg.Store.Path, logger)
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		store = sqlStore
		logger.Info("opened sqlite store", "path", cfg.Store.Path)
	}

	var notifier ledger.Notifier
	if cfg.Journal.Path != "" {
		tag, err := journal.ParseCompressionTag(cfg.Journal.Compression)
		if err != nil {
			return err
		}
		writer, err := journal.Create(cfg.Journal.Path, tag)
		if err != nil {
			return err
		}
		defer writer.Close()
		notifier = ledger.NewJournalNotifier(writer, logger)
		logger.Info("opened event journal", "path", cfg.Journal.Path, "compression", tag)
	}

	submitters := make([]ledger.Actor, len(cfg.Submitters))
	for i, s := range cfg.Submitters {
		submitters[i] = ledger.Actor(s)
	}
	core, err := ledger.New(ledger.Config{
		Identity:      cfg.Identity,
		Administrator: ledger.Actor(cfg.Administrator),
		Submitters:    submitters,
		Cooldown:      time.Duration(cfg.CooldownSeconds) * time.Second,
		Capabilities:  capabilities,
		Oracle:        local,
		Verifier:      verifier,
		Store:         store,
		Notifier:      notifier,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	// The in-process oracle delivers results on a short poll rather
	// than inline with the request, preserving the asynchronous
	// protocol shape the external-oracle deployment has.
	go deliverLoop(ctx, local, core, logger)

	server := &http.Server{
		Addr:    cfg.Listen,
		Handler: newServer(core, encryptor, local, logger).routes(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	logger.Info("discovery ledger listening",
		"address", cfg.Listen,
		"identity", cfg.Identity,
		"backend", cfg.Backend.Driver,
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// buildBackend assembles the configured homomorphic backend. All
// three return values refer to the same backend instance; they are
// separate so the decryptor can be handed to the oracle alone.
func buildBackend(cfg *config.Config, logger *slog.Logger) (fhe.Capabilities, fhe.Encryptor, fhe.Decryptor, error) {
	switch cfg.Backend.Driver {
	case "sim":
		keyHex, err := os.ReadFile(cfg.Backend.KeyFile)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("reading sealing key: %w", err)
		}
		key, err := hex.DecodeString(strings.TrimSpace(string(keyHex)))
		if err != nil {
			return nil, nil, nil, fmt.Errorf("decoding sealing key: %w", err)
		}
		backend, err := sim.New(sim.Config{Key: key})
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Warn("using the sealed simulator backend; ciphertexts have no homomorphic security")
		return backend, backend, backend, nil
	case "lattice":
		backend, decryptor, err := lattice.New(lattice.Config{})
		if err != nil {
			return nil, nil, nil, err
		}
		logger.Info("lattice backend ready", "buckets", backend.Buckets())
		return backend, backend, decryptor, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown backend driver %q", cfg.Backend.Driver)
	}
}

// loadSigner reads a hex-encoded Ed25519 seed written by
// discovery-keygen. An empty path generates an ephemeral keypair,
// which is only useful for throwaway runs: results signed with it
// cannot be verified across a restart.
func loadSigner(path string) (*oracle.Signer, error) {
	if path == "" {
		signer, _, err := oracle.GenerateSigner()
		if err != nil {
			return nil, err
		}
		slog.Warn("no oracle key configured; generated an ephemeral keypair")
		return signer, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading oracle key: %w", err)
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("decoding oracle key: %w", err)
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("oracle key must be a %d-byte seed, got %d bytes", ed25519.SeedSize, len(seed))
	}
	return oracle.NewSigner(ed25519.NewKeyFromSeed(seed))
}

// deliverLoop drains the local oracle into the ledger's callback. A
// rejected delivery (replay, tampering) is logged and dropped; the
// loop keeps running until shutdown.
func deliverLoop(ctx context.Context, local *oracle.Local, core *ledger.Core, logger *slog.Logger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := local.DeliverPending(func(id oracle.RequestID, payload, proof []byte) error {
				_, err := core.DeliverDecryptionResult(id, payload, proof)
				return err
			})
			if err != nil {
				logger.Error("oracle delivery failed", "error", err)
			}
		}
	}
}
