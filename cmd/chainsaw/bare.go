package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/reoky/chainsaw/internal/config"
)

// runBare handles the classic invocation: flags plus file names, no
// subcommand. A single file name splits it; several join them.
func runBare(args []string) int {
	fs := flag.NewFlagSet("chainsaw", flag.ExitOnError)

	sizeMB := fs.Int("s", 0, "Maximum shard size in megabytes (default: 8 equal shards)")
	makeDir := fs.Bool("d", false, "Place shards under a new directory")
	prefix := fs.String("n", "", "Name shards after this prefix instead of the source file")
	configPath := fs.String("config", "", "Load defaults from a YAML config file")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = printUsage
	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}

	files := fs.Args()
	if len(files) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	sizeSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "s" {
			sizeSet = true
		}
	})

	override := config.Config{Prefix: *prefix, MakeDir: *makeDir, Progress: *showProgress}
	if sizeSet {
		if *sizeMB < 1 {
			fmt.Fprintln(os.Stderr, "Error: shard size must be at least 1MB")
			return ExitInvalidArgs
		}
		override.ShardSize = int64(*sizeMB) * 1024 * 1024
	}

	cfg, err := resolveConfig(*configPath, override)
	if err != nil {
		printError(err)
		return ExitInvalidArgs
	}

	if len(files) == 1 {
		return doSplit(cfg, files[0])
	}
	return doJoin(cfg, files, "")
}
