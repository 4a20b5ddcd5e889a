package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/headsup/internal/simulator"
)

func TestCLIParsing(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, cli *CLI)
	}{
		{
			name:    "play is the default command",
			args:    []string{},
			command: "play",
		},
		{
			name:    "play overrides",
			args:    []string{"play", "--seed", "9", "--opponent", "station", "--stack", "500"},
			command: "play",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, int64(9), cli.Play.Seed)
				assert.Equal(t, "station", cli.Play.Opponent)
				assert.Equal(t, 500, cli.Play.Stack)
			},
		},
		{
			name:    "simulate defaults",
			args:    []string{"simulate"},
			command: "simulate",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, 100, cli.Simulate.Sessions)
				assert.Equal(t, 200, cli.Simulate.Rounds)
				assert.Equal(t, "station", cli.Simulate.Human)
			},
		},
		{
			name:    "global config flag",
			args:    []string{"-c", "/tmp/x.hcl", "simulate", "--sessions", "3"},
			command: "simulate",
			check: func(t *testing.T, cli *CLI) {
				assert.Equal(t, "/tmp/x.hcl", cli.Config)
				assert.Equal(t, 3, cli.Simulate.Sessions)
			},
		},
		{
			name:    "version command",
			args:    []string{"version"},
			command: "version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cli CLI
			parser, err := kong.New(&cli, kong.Vars{"version": version})
			require.NoError(t, err)

			ctx, err := parser.Parse(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, ctx.Command())
			if tt.check != nil {
				tt.check(t, &cli)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	lipgloss.SetColorProfile(termenv.Ascii)

	result, err := simulator.New(simulator.Config{
		Sessions: 2,
		Rounds:   20,
		Seed:     1,
	}).Run(context.Background())
	require.NoError(t, err)

	var buf bytes.Buffer
	printReport(&buf, result)
	out := buf.String()

	assert.Contains(t, out, "Rounds")
	assert.Contains(t, out, "bb/round")
	assert.Contains(t, out, "Showdown rate")
	assert.Contains(t, out, "By final street")
	assert.Contains(t, out, "of 2")
}
