// Copyright 2026 The Legal Discovery FHE Authors
// SPDX-License-Identifier: Apache-2.0

// Discovery-keygen generates the Ed25519 oracle keypair used to sign
// and verify decryption results, and optionally a fresh sealing key
// for the simulator backend.
package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var out string
	var sealKey bool
	flag.StringVar(&out, "out", "oracle", "output path prefix; writes <out>.key and <out>.pub")
	flag.BoolVar(&sealKey, "seal-key", false, "also generate a 32-byte simulator sealing key at <out>.seal")
	flag.Parse()

	public, private, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return fmt.Errorf("generating keypair: %w", err)
	}

	// The private file holds the seed: enough to reconstruct the
	// full key, half the bytes to guard.
	if err := writeHex(out+".key", private.Seed(), 0o600); err != nil {
		return err
	}
	if err := writeHex(out+".pub", public, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s.key and %s.pub\n", out, out)

	if sealKey {
		var key [32]byte
		if _, err := rand.Read(key[:]); err != nil {
			return fmt.Errorf("generating sealing key: %w", err)
		}
		if err := writeHex(out+".seal", key[:], 0o600); err != nil {
			return err
		}
		fmt.Printf("wrote %s.seal\n", out)
	}
	return nil
}

func writeHex(path string, data []byte, mode os.FileMode) error {
	if err := os.WriteFile(path, []byte(hex.EncodeToString(data)+"\n"), mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
