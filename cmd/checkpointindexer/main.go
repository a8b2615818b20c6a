package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:   "checkpointindexer",
		Usage:  "Stage Sui checkpoints and index the transactions that call one Move package",
		Flags:  globalFlags(),
		Before: loadEnvFile,
		Commands: []*cli.Command{
			{
				Name:   "fetch",
				Usage:  "Download checkpoints in order into the staging directory",
				Flags:  fetchFlags(),
				Action: fetch,
			},
			{
				Name:   "transform",
				Usage:  "Decode staged checkpoints into structured JSON documents",
				Flags:  passCommandFlags(false),
				Action: transform,
			},
			{
				Name:   "collect",
				Usage:  "Select the transactions calling the package into the filtered file",
				Flags:  passCommandFlags(false),
				Action: collect,
			},
			{
				Name:   "load",
				Usage:  "Load the filtered file into the sink",
				Flags:  passCommandFlags(true),
				Action: load,
			},
			{
				Name:   "process",
				Usage:  "Decode, filter and load staged checkpoints without intermediate files",
				Flags:  passCommandFlags(true),
				Action: process,
			},
			{
				Name:   "remove",
				Usage:  "Remove the persisted fetch cursor",
				Flags:  removeFlags(),
				Action: remove,
			},
		},
	}
}

// loadEnvFile runs before any command parses its flags, so variables from the
// file feed their EnvVars. Variables already set are not overridden.
func loadEnvFile(c *cli.Context) error {
	path := c.String("env-file")
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
