package main

import (
	"fmt"

	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Config   string           `short:"c" default:"headsup.hcl" type:"path" help:"Path to HCL config file"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play heads-up against the computer"`
	Simulate SimulateCmd      `cmd:"" help:"Play many sessions headlessly and report statistics"`
	Info     VersionCmd       `cmd:"" name:"version" help:"Print version information"`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("headsup %s\n", version)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("headsup"),
		kong.Description("Heads-up Texas Hold'em against a computer opponent"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.Bind(&cli),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
