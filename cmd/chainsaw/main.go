package main

import (
	"fmt"
	"os"

	"github.com/reoky/chainsaw/internal/config"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitStorageError     = 3
	ExitValidationFailed = 4
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return ExitInvalidArgs
	}

	switch args[0] {
	case "split":
		return runSplit(args[1:])
	case "join":
		return runJoin(args[1:])
	case "inspect":
		return runInspect(args[1:])
	case "verify":
		return runVerify(args[1:])
	case "push":
		return runPush(args[1:])
	case "pull":
		return runPull(args[1:])
	case "help", "-h", "--help":
		printUsage()
		return ExitSuccess
	default:
		// The bare form: flags plus file names, one file splits, several
		// join.
		return runBare(args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: chainsaw [options] FILE
       chainsaw [options] SHARD...
       chainsaw <command> [options]

With a single file name, chainsaw splits the file into shards; with several,
it joins them back together. Shards are self-describing, so join accepts
them in any order.

Options for the bare form:
  -s N       Maximum shard size in megabytes (default: 8 equal shards)
  -d         Place shards under a new directory
  -n PREFIX  Name shards after PREFIX instead of the source file (min 3 chars)
  -config F  Load defaults from a YAML config file
  -progress  Show progress output

Commands:
  split      Split a file into shards
  join       Join shards back into the original file
  inspect    Print the decoded header of each named shard
  verify     Cross-check a shard set without reassembling it
  push       Upload a shard set to object storage
  pull       Download a shard set from object storage

Run 'chainsaw <command> -h' for command-specific help.`)
}

// printError writes the full causal chain of err to the diagnostic stream,
// outermost context first.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// resolveConfig layers configuration: built-in defaults, then the config
// file (from -config or CHAINSAW_CONFIG), then environment variables, then
// flag overrides.
func resolveConfig(configPath string, override config.Config) (config.Config, error) {
	cfg := config.Default()
	if configPath == "" {
		configPath = os.Getenv("CHAINSAW_CONFIG")
	}
	if configPath != "" {
		fileCfg, err := config.LoadFromFile(configPath)
		if err != nil {
			return cfg, err
		}
		cfg = fileCfg
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return cfg, err
	}
	cfg = cfg.Merge(override)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
