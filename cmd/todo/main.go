package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/idilsaglam/tada-remote/internal/cli"
	"github.com/idilsaglam/tada-remote/internal/config"
	"github.com/idilsaglam/tada-remote/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	groupPending := flag.Bool("group", false, "group ls output by pending/done")
	noColor := flag.Bool("no-color", false, "disable colored output")
	flag.Usage = func() { cli.PrintHelp(flag.CommandLine.Output()) }
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		ui.Fail(os.Stderr, "config: "+err.Error())
		os.Exit(1)
	}
	if *noColor {
		ui.SetColorForcing(false, true)
	}

	code := cli.Run(flag.Args(), cli.Options{
		Group:  *groupPending,
		Config: cfg,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
