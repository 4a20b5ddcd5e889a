// Package config loads the table, opponent and UI settings from an HCL file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/headsup/internal/opponent"
	"github.com/lox/headsup/internal/randutil"
	"github.com/lox/headsup/internal/session"
)

// DefaultFile is the config file read when none is given
const DefaultFile = "headsup.hcl"

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the complete configuration
type Config struct {
	Table    TableSettings    `hcl:"table,block"`
	Opponent OpponentSettings `hcl:"opponent,block"`
	UI       UISettings       `hcl:"ui,block"`
}

// TableSettings contains stakes and timing
type TableSettings struct {
	StartingStack  int `hcl:"starting_stack,optional"`
	SmallBlind     int `hcl:"small_blind,optional"`
	BigBlind       int `hcl:"big_blind,optional"`
	RaiseIncrement int `hcl:"raise_increment,optional"`
	ResetDelayMS   int `hcl:"reset_delay_ms,optional"`
}

// OpponentSettings selects the computer's policy
type OpponentSettings struct {
	Policy   string   `hcl:"policy,optional"`
	FoldProb *float64 `hcl:"fold_prob,optional"`
	CallProb *float64 `hcl:"call_prob,optional"`
}

// UISettings contains user interface settings
type UISettings struct {
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Table: TableSettings{
			StartingStack:  session.DefaultStartingStack,
			SmallBlind:     session.DefaultSmallBlind,
			BigBlind:       session.DefaultBigBlind,
			RaiseIncrement: session.DefaultRaiseIncrement,
			ResetDelayMS:   int(session.DefaultResetDelay / time.Millisecond),
		},
		Opponent: OpponentSettings{
			Policy:   "random",
			FoldProb: float64Ptr(opponent.DefaultFoldProb),
			CallProb: float64Ptr(opponent.DefaultCallProb),
		},
		UI: UISettings{
			LogLevel: "info",
			LogFile:  "headsup.log",
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; fields left out of the file keep their default values.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	return cfg.merge(Default()), nil
}

// fileConfig mirrors Config with every block and field optional, so a value
// written in the file can be told apart from one left out
type fileConfig struct {
	Table    *fileTable    `hcl:"table,block"`
	Opponent *fileOpponent `hcl:"opponent,block"`
	UI       *fileUI       `hcl:"ui,block"`
}

type fileTable struct {
	StartingStack  *int `hcl:"starting_stack,optional"`
	SmallBlind     *int `hcl:"small_blind,optional"`
	BigBlind       *int `hcl:"big_blind,optional"`
	RaiseIncrement *int `hcl:"raise_increment,optional"`
	ResetDelayMS   *int `hcl:"reset_delay_ms,optional"`
}

type fileOpponent struct {
	Policy   *string  `hcl:"policy,optional"`
	FoldProb *float64 `hcl:"fold_prob,optional"`
	CallProb *float64 `hcl:"call_prob,optional"`
}

type fileUI struct {
	LogLevel *string `hcl:"log_level,optional"`
	LogFile  *string `hcl:"log_file,optional"`
}

func (f fileConfig) merge(c *Config) *Config {
	if t := f.Table; t != nil {
		set(&c.Table.StartingStack, t.StartingStack)
		set(&c.Table.SmallBlind, t.SmallBlind)
		set(&c.Table.BigBlind, t.BigBlind)
		set(&c.Table.RaiseIncrement, t.RaiseIncrement)
		set(&c.Table.ResetDelayMS, t.ResetDelayMS)
	}
	if o := f.Opponent; o != nil {
		set(&c.Opponent.Policy, o.Policy)
		if o.FoldProb != nil {
			c.Opponent.FoldProb = o.FoldProb
		}
		if o.CallProb != nil {
			c.Opponent.CallProb = o.CallProb
		}
	}
	if u := f.UI; u != nil {
		set(&c.UI.LogLevel, u.LogLevel)
		set(&c.UI.LogFile, u.LogFile)
	}
	return c
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	t := c.Table
	if t.StartingStack <= 0 {
		return fmt.Errorf("%w: starting stack must be positive", ErrInvalidConfig)
	}
	if t.SmallBlind <= 0 || t.BigBlind <= 0 {
		return fmt.Errorf("%w: blinds must be positive", ErrInvalidConfig)
	}
	if t.SmallBlind > t.BigBlind {
		return fmt.Errorf("%w: small blind %d exceeds big blind %d", ErrInvalidConfig, t.SmallBlind, t.BigBlind)
	}
	if t.RaiseIncrement <= 0 {
		return fmt.Errorf("%w: raise increment must be positive", ErrInvalidConfig)
	}
	if t.ResetDelayMS <= 0 {
		return fmt.Errorf("%w: reset delay must be positive", ErrInvalidConfig)
	}

	if _, err := opponent.New(c.Opponent.Policy, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	fold, call := c.FoldProb(), c.CallProb()
	if fold < 0 || fold > 1 || call < 0 || call > 1 {
		return fmt.Errorf("%w: probabilities must be within [0,1]", ErrInvalidConfig)
	}
	if fold+call > 1 {
		return fmt.Errorf("%w: fold_prob + call_prob = %.2f exceeds 1", ErrInvalidConfig, fold+call)
	}

	if _, err := log.ParseLevel(c.UI.LogLevel); err != nil {
		return fmt.Errorf("%w: invalid log level: %s", ErrInvalidConfig, c.UI.LogLevel)
	}
	return nil
}

// ResetDelay returns the post-showdown pause
func (c *Config) ResetDelay() time.Duration {
	return time.Duration(c.Table.ResetDelayMS) * time.Millisecond
}

// FoldProb returns the random opponent's fold probability
func (c *Config) FoldProb() float64 {
	if c.Opponent.FoldProb == nil {
		return opponent.DefaultFoldProb
	}
	return *c.Opponent.FoldProb
}

// CallProb returns the random opponent's call probability
func (c *Config) CallProb() float64 {
	if c.Opponent.CallProb == nil {
		return opponent.DefaultCallProb
	}
	return *c.Opponent.CallProb
}

// LogLevel returns the parsed log level, falling back to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.UI.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// SessionOptions converts the table settings into session options. The
// caller supplies the collaborators (rng, policy, clock, logger).
func (c *Config) SessionOptions() session.Options {
	return session.Options{
		StartingStack:  c.Table.StartingStack,
		SmallBlind:     c.Table.SmallBlind,
		BigBlind:       c.Table.BigBlind,
		RaiseIncrement: c.Table.RaiseIncrement,
		ResetDelay:     c.ResetDelay(),
	}
}

// Policy builds the configured opponent policy. The random policy takes its
// weights from the file.
func (c *Config) Policy(rng randutil.Source) (opponent.Policy, error) {
	if c.Opponent.Policy == "random" {
		return opponent.NewRandomWithWeights(rng, c.FoldProb(), c.CallProb()), nil
	}
	return opponent.New(c.Opponent.Policy, rng)
}

func float64Ptr(v float64) *float64 {
	return &v
}
