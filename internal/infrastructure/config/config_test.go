package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zipper.com/internal/domain/entity"
)

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_ENV", "test")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Bundle.TimestampTolerance)
	assert.Equal(t, DriverMemory, cfg.Ledger.Driver)
	assert.Equal(t, 64, cfg.Ledger.MaxBundleAccounts)
	assert.Equal(t, 100, cfg.Log.MaxSizeMB)

	programs, err := cfg.ProgramIDs()
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultProgramIDs(), programs)
}

func TestLoadConfig_MergesEnvironmentFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app-config.yaml", `
server:
  port: "9000"
bundle:
  hmacSecret: "base-secret"
  timestampTolerance: "2m"
ledger:
  driver: "memory"
  maxBundleAccounts: 16
`)
	writeConfig(t, dir, "staging.yaml", `
bundle:
  hmacSecret: "staging-secret"
ledger:
  driver: "bolt"
  path: "/tmp/zipper.db"
  genesis:
    - address: "`+entity.DefaultZipperProgram+`"
      lamports: 42
    - address: "`+entity.DefaultTokenProgram+`"
      lamports: 7
      token:
        mint: "`+entity.DefaultZipperProgram+`"
        authority: "`+entity.DefaultZipperProgram+`"
        amount: 5
`)
	t.Setenv("CONFIG_ENV", "staging")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "staging-secret", cfg.Bundle.HMACSecret)
	assert.Equal(t, 2*time.Minute, cfg.Bundle.TimestampTolerance)
	assert.Equal(t, DriverBolt, cfg.Ledger.Driver)
	assert.Equal(t, "/tmp/zipper.db", cfg.Ledger.Path)
	assert.Equal(t, 16, cfg.Ledger.MaxBundleAccounts)

	genesis, err := cfg.GenesisAccounts()
	require.NoError(t, err)
	require.Len(t, genesis, 2)
	assert.Equal(t, uint64(42), genesis[0].Lamports)
	assert.Nil(t, genesis[0].Token)
	require.NotNil(t, genesis[1].Token)
	assert.Equal(t, uint64(5), genesis[1].Token.Amount)
	assert.Equal(t, entity.DefaultZipperProgram, genesis[1].Token.Mint.String())
}

func TestLoadConfig_EnvironmentOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app-config.yaml", `
server:
  port: "9000"
`)
	t.Setenv("CONFIG_ENV", "local")
	t.Setenv("ZIPPER_SERVER_PORT", "7070")
	t.Setenv("HMAC_SECRET", "from-env")
	t.Setenv("ZIPPER_BUNDLE_TIMESTAMP_TOLERANCE", "30s")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.Bundle.HMACSecret)
	assert.Equal(t, 30*time.Second, cfg.Bundle.TimestampTolerance)
}

func TestLoadConfig_MaxBundleAccounts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "unset uses default", content: "server:\n  port: \"9000\"\n", want: 64},
		{name: "explicit zero is unbounded", content: "ledger:\n  maxBundleAccounts: 0\n", want: 0},
		{name: "explicit limit", content: "ledger:\n  maxBundleAccounts: 3\n", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "app-config.yaml", tt.content)
			t.Setenv("CONFIG_ENV", "none")

			cfg, err := LoadConfig(dir)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Ledger.MaxBundleAccounts)
		})
	}
}

func TestLoadConfig_TimestampTolerance(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "plain minutes", value: "5", want: 5 * time.Minute},
		{name: "duration string", value: "90s", want: 90 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_ENV", "none")
			t.Setenv("ZIPPER_BUNDLE_TIMESTAMP_TOLERANCE", tt.value)

			cfg, err := LoadConfig(t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Bundle.TimestampTolerance)
		})
	}
}

func TestLoadConfig_TimestampToleranceMinutesInFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "app-config.yaml", "bundle:\n  timestampTolerance: 3\n")
	t.Setenv("CONFIG_ENV", "none")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Minute, cfg.Bundle.TimestampTolerance)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "unknown driver",
			content:     "ledger:\n  driver: \"postgres\"\n",
			errContains: "unknown ledger driver",
		},
		{
			name:        "negative account limit",
			content:     "ledger:\n  maxBundleAccounts: -1\n",
			errContains: "maxBundleAccounts",
		},
		{
			name:        "bad program id",
			content:     "programs:\n  token: \"not-base58!\"\n",
			errContains: "programs.token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "app-config.yaml", tt.content)
			t.Setenv("CONFIG_ENV", "none")

			_, err := LoadConfig(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestConfig_GenesisAccountsInvalid(t *testing.T) {
	cfg := Config{Ledger: Ledger{Genesis: []GenesisAccount{
		{Address: entity.DefaultZipperProgram, Token: &GenesisToken{Mint: "bad!", Authority: entity.DefaultZipperProgram}},
	}}}

	_, err := cfg.GenesisAccounts()
	assert.ErrorIs(t, err, entity.ErrInvalidAddress)
	assert.Contains(t, err.Error(), "ledger.genesis[0].token.mint")
}
