// config.go — harness tunables.
//
// Defaults reproduce the classic demo: 420 MiB of pseudorandom data
// through a 2 MiB ring.  A JSON config file can replace the defaults and
// explicitly set flags win over the file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/sugawarayuuta/sonnet"
)

// Config drives one harness run.
type Config struct {
	DataMiB  uint32 `json:"data_mib"` // pseudorandom sample size
	Capacity uint32 `json:"capacity"` // ring capacity in bytes, pre round-up
	Digest   string `json:"digest"`   // "crc32c" or "blake2b"
	Seed     int64  `json:"seed"`     // sample generator seed
	DB       string `json:"db"`       // optional SQLite stats sink
}

func defaultConfig() Config {
	return Config{
		DataMiB:  420,
		Capacity: 2 << 20,
		Digest:   "crc32c",
		Seed:     1,
	}
}

// loadConfig resolves defaults → config file → explicit flags, in that
// order of precedence.
func loadConfig(args []string) (Config, error) {
	cfg := defaultConfig()

	fs := pflag.NewFlagSet("txring", pflag.ContinueOnError)
	configPath := fs.String("config", "", "JSON config file; explicit flags override it")
	dataMiB := fs.Uint32("data-mib", cfg.DataMiB, "pseudorandom sample size in MiB")
	capacity := fs.Uint32("capacity", cfg.Capacity, "ring capacity in bytes (rounded up to a power of two)")
	digest := fs.String("digest", cfg.Digest, "stream integrity check: crc32c or blake2b")
	seed := fs.Int64("seed", cfg.Seed, "sample generator seed")
	db := fs.String("db", cfg.DB, "SQLite file to append run stats to (empty = off)")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *configPath != "" {
		raw, err := os.ReadFile(*configPath)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", *configPath, err)
		}
		if err := sonnet.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", *configPath, err)
		}
	}

	if fs.Changed("data-mib") {
		cfg.DataMiB = *dataMiB
	}
	if fs.Changed("capacity") {
		cfg.Capacity = *capacity
	}
	if fs.Changed("digest") {
		cfg.Digest = *digest
	}
	if fs.Changed("seed") {
		cfg.Seed = *seed
	}
	if fs.Changed("db") {
		cfg.DB = *db
	}

	if cfg.DataMiB == 0 {
		return cfg, fmt.Errorf("config: data-mib must be positive")
	}
	if cfg.Digest != "crc32c" && cfg.Digest != "blake2b" {
		return cfg, fmt.Errorf("config: unknown digest %q", cfg.Digest)
	}
	return cfg, nil
}
