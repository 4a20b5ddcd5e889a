package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/game"
	"github.com/lox/headsup/internal/opponent"
	"github.com/lox/headsup/internal/randutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "headsup.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1000, cfg.Table.StartingStack)
	assert.Equal(t, 10, cfg.Table.SmallBlind)
	assert.Equal(t, 20, cfg.Table.BigBlind)
	assert.Equal(t, 20, cfg.Table.RaiseIncrement)
	assert.Equal(t, 2*time.Second, cfg.ResetDelay())
	assert.Equal(t, "random", cfg.Opponent.Policy)
	assert.Equal(t, log.InfoLevel, cfg.LogLevel())
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
table {
  starting_stack  = 500
  small_blind     = 5
  big_blind       = 10
  raise_increment = 10
  reset_delay_ms  = 750
}

opponent {
  policy    = "random"
  fold_prob = 0.2
  call_prob = 0.3
}

ui {
  log_level = "debug"
  log_file  = "/tmp/headsup-test.log"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500, cfg.Table.StartingStack)
	assert.Equal(t, 5, cfg.Table.SmallBlind)
	assert.Equal(t, 10, cfg.Table.BigBlind)
	assert.Equal(t, 750*time.Millisecond, cfg.ResetDelay())
	assert.InDelta(t, 0.2, cfg.FoldProb(), 1e-9)
	assert.InDelta(t, 0.3, cfg.CallProb(), 1e-9)
	assert.Equal(t, log.DebugLevel, cfg.LogLevel())
	assert.Equal(t, "/tmp/headsup-test.log", cfg.UI.LogFile)

	opts := cfg.SessionOptions()
	assert.Equal(t, 500, opts.StartingStack)
	assert.Equal(t, 750*time.Millisecond, opts.ResetDelay)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
opponent {
  policy = "station"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "station", cfg.Opponent.Policy)
	assert.Equal(t, Default().Table, cfg.Table)
	assert.Equal(t, Default().UI, cfg.UI)
	assert.InDelta(t, opponent.DefaultFoldProb, cfg.FoldProb(), 1e-9)
}

func TestLoadZeroProbabilityIsKept(t *testing.T) {
	path := writeConfig(t, `
opponent {
  fold_prob = 0
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.FoldProb())
}

func TestLoadExplicitZeroIsRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "starting stack",
			content: "table {\n  starting_stack = 0\n}\n",
			check:   func(t *testing.T, cfg *Config) { assert.Zero(t, cfg.Table.StartingStack) },
		},
		{
			name:    "big blind",
			content: "table {\n  big_blind = 0\n}\n",
			check:   func(t *testing.T, cfg *Config) { assert.Zero(t, cfg.Table.BigBlind) },
		},
		{
			name:    "raise increment",
			content: "table {\n  raise_increment = 0\n}\n",
			check:   func(t *testing.T, cfg *Config) { assert.Zero(t, cfg.Table.RaiseIncrement) },
		},
		{
			name:    "reset delay",
			content: "table {\n  reset_delay_ms = 0\n}\n",
			check:   func(t *testing.T, cfg *Config) { assert.Zero(t, cfg.Table.ResetDelayMS) },
		},
		{
			name:    "empty log level",
			content: "ui {\n  log_level = \"\"\n}\n",
			check:   func(t *testing.T, cfg *Config) { assert.Empty(t, cfg.UI.LogLevel) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.NoError(t, err)
			tt.check(t, cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadInvalidHCL(t *testing.T) {
	_, err := Load(writeConfig(t, `table {`))
	assert.ErrorContains(t, err, "failed to parse HCL file")

	_, err = Load(writeConfig(t, `table { starting_stack = "lots" }`))
	assert.ErrorContains(t, err, "failed to decode HCL")

	_, err = Load(writeConfig(t, `bogus { }`))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"non-positive stack", func(c *Config) { c.Table.StartingStack = 0 }},
		{"negative small blind", func(c *Config) { c.Table.SmallBlind = -1 }},
		{"small above big", func(c *Config) { c.Table.SmallBlind = 30 }},
		{"zero raise increment", func(c *Config) { c.Table.RaiseIncrement = 0 }},
		{"zero reset delay", func(c *Config) { c.Table.ResetDelayMS = 0 }},
		{"unknown policy", func(c *Config) { c.Opponent.Policy = "gto" }},
		{"fold above one", func(c *Config) { c.Opponent.FoldProb = float64Ptr(1.5) }},
		{"negative call", func(c *Config) { c.Opponent.CallProb = float64Ptr(-0.1) }},
		{"weights above one", func(c *Config) {
			c.Opponent.FoldProb = float64Ptr(0.6)
			c.Opponent.CallProb = float64Ptr(0.6)
		}},
		{"bad log level", func(c *Config) { c.UI.LogLevel = "chatty" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestPolicyUsesConfiguredWeights(t *testing.T) {
	cfg := Default()
	cfg.Opponent.FoldProb = float64Ptr(0)
	cfg.Opponent.CallProb = float64Ptr(1)

	p, err := cfg.Policy(randutil.NewScripted(0.0, 0.5, 0.99))
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, game.Call, p.Decide(opponent.State{CurrentBet: 20}))
	}

	cfg.Opponent.Policy = "station"
	p, err = cfg.Policy(nil)
	require.NoError(t, err)
	assert.Equal(t, opponent.CallingStation{}, p)
}
