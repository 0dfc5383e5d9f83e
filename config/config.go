package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"stablemesh/crypto"

	"github.com/BurntSushi/toml"
)

type Config struct {
	RPCAddress   string `toml:"RPCAddress"`
	DataDir      string `toml:"DataDir"`
	OwnerAddress string `toml:"OwnerAddress"`
	NetworkName  string `toml:"NetworkName"`
	Environment  string `toml:"Environment"`
	LogLevel     string `toml:"LogLevel"`
}

// Load loads the configuration from the given path, creating a commented
// default file when none exists yet.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	applyDefaults(cfg)
	return cfg, cfg.Validate()
}

// Validate checks the fields that cannot be defaulted. The owner address is
// fixed at deploy time and gates every admin operation, so a config without a
// decodable owner is unusable.
func (c *Config) Validate() error {
	owner := strings.TrimSpace(c.OwnerAddress)
	if owner == "" {
		return fmt.Errorf("config: OwnerAddress must be set")
	}
	if _, err := crypto.DecodeAddress(owner); err != nil {
		return fmt.Errorf("config: invalid OwnerAddress: %w", err)
	}
	return nil
}

// Owner returns the decoded protocol owner address. Validate must have
// succeeded beforehand.
func (c *Config) Owner() (crypto.Address, error) {
	return crypto.DecodeAddress(strings.TrimSpace(c.OwnerAddress))
}

func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.RPCAddress) == "" {
		cfg.RPCAddress = "127.0.0.1:8645"
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		cfg.DataDir = "./data"
	}
	if strings.TrimSpace(cfg.NetworkName) == "" {
		cfg.NetworkName = "stablemesh-local"
	}
	if strings.TrimSpace(cfg.LogLevel) == "" {
		cfg.LogLevel = "info"
	}
}

func createDefault(path string) (*Config, error) {
	cfg := &Config{}
	applyDefaults(cfg)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if _, err := fmt.Fprintln(f, "# stablemesh daemon configuration"); err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(f, "# OwnerAddress must be filled in before the daemon will start."); err != nil {
		return nil, err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return nil, err
	}

	return nil, fmt.Errorf("config: wrote default config to %s; set OwnerAddress and restart", path)
}
