package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"lovenest/config"
)

var version = "dev"

var CLI struct {
	Version kong.VersionFlag `help:"Print the version and exit."`

	Serve        ServeCmd        `cmd:"" help:"Run the API server."`
	Tui          TuiCmd          `cmd:"" help:"Open the terminal client." default:"1"`
	HashPasscode HashPasscodeCmd `cmd:"" name:"hash-passcode" help:"Print a bcrypt hash for LOVENEST_PASSCODE_HASH."`
}

func main() {
	// .env values must be in the environment before kong reads env tags.
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx := kong.Parse(&CLI,
		kong.Name("lovenest"),
		kong.Description("Our plans, dreams and memories."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": version},
	)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
