package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "", "path to config.yaml (default: search ./config)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(&serveCmd{}, "")
	commander.Register(&updateCmd{}, "")
	commander.Register(&offerCmd{}, "")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
