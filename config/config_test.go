package config

import (
	"os"
	"path/filepath"
	"testing"

	"stablemesh/crypto"

	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefaultAndDemandsOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := Load(path)
	require.Error(t, err)
	require.FileExists(t, path)
}

func TestLoadParsesAndValidates(t *testing.T) {
	raw := make([]byte, 20)
	raw[19] = 0x01
	owner := crypto.NewAddress(crypto.StablePrefix, raw)

	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "RPCAddress = \"127.0.0.1:9999\"\nOwnerAddress = \"" + owner.String() + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9999", cfg.RPCAddress)
	require.Equal(t, "./data", cfg.DataDir)
	require.Equal(t, "stablemesh-local", cfg.NetworkName)
	require.Equal(t, "info", cfg.LogLevel)

	decoded, err := cfg.Owner()
	require.NoError(t, err)
	require.True(t, decoded.Equal(owner))
}

func TestValidateRejectsBadOwner(t *testing.T) {
	cfg := &Config{OwnerAddress: "nonsense"}
	require.Error(t, cfg.Validate())

	cfg = &Config{}
	require.Error(t, cfg.Validate())
}
