package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reoky/chainsaw/internal/config"
	"github.com/reoky/chainsaw/internal/progress"
	"github.com/reoky/chainsaw/pkg/shard"
)

// runSplit splits a single file into self-describing shards.
func runSplit(args []string) int {
	fs := flag.NewFlagSet("split", flag.ExitOnError)

	size := fs.String("size", "", "Maximum shard size, e.g. 8MB (default: 8 equal shards)")
	prefix := fs.String("n", "", "Name shards after this prefix instead of the source file")
	makeDir := fs.Bool("d", false, "Place shards under a new directory")
	configPath := fs.String("config", "", "Load defaults from a YAML config file")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: chainsaw split [options] FILE

Split FILE into shards. Each shard starts with a header describing the shard
and the whole set, so any complete collection of shards can be joined later
without further bookkeeping.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: split takes exactly one file name")
		fs.Usage()
		return ExitInvalidArgs
	}

	override := config.Config{Prefix: *prefix, MakeDir: *makeDir, Progress: *showProgress}
	if *size != "" {
		bytes, err := progress.ParseBytes(*size)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid shard size: %v\n", err)
			return ExitInvalidArgs
		}
		override.ShardSize = bytes
	}
	cfg, err := resolveConfig(*configPath, override)
	if err != nil {
		printError(err)
		return ExitInvalidArgs
	}

	return doSplit(cfg, fs.Arg(0))
}

// doSplit resolves the per-shard payload budget and output naming from the
// configuration, then runs the split.
func doSplit(cfg config.Config, path string) int {
	info, err := os.Stat(path)
	if err != nil {
		printError(fmt.Errorf("stat %q: %w", path, err))
		return ExitGeneralError
	}
	srcSize := info.Size()

	// The configured shard size bounds the whole shard file; the payload
	// budget is what remains after the header. With no size configured the
	// file is cut into eight equal shards. The rounded-up payload can make
	// the count land below eight for files not divisible by eight, so the
	// default is an upper bound on the count, never an undershoot of the
	// payload.
	var maxPayload int64
	if cfg.ShardSize > 0 {
		maxPayload = cfg.ShardSize - shard.HeaderSize
		if maxPayload < 1 {
			fmt.Fprintf(os.Stderr, "Error: shard size %s leaves no room for the %d-byte header\n",
				progress.FormatBytes(cfg.ShardSize), shard.HeaderSize)
			return ExitInvalidArgs
		}
	} else {
		maxPayload = (srcSize + 7) / 8
		if maxPayload < 1 {
			maxPayload = 1
		}
	}

	outBase, err := resolveOutputBase(cfg, path)
	if err != nil {
		printError(err)
		return ExitGeneralError
	}

	opts := []shard.SplitOption{shard.WithOutputBase(outBase)}
	if cfg.Progress {
		count := (srcSize + maxPayload - 1) / maxPayload
		if count < 1 {
			count = 1
		}
		reporter := progress.NewReporter(progress.Options{
			Operation:   "split",
			Source:      path,
			TotalSize:   srcSize,
			TotalShards: int(count),
			ShardSize:   maxPayload,
		})
		reporter.Start()
		defer reporter.Stop()
		opts = append(opts, shard.WithSplitProgress(func(idx, count int, payload int64) {
			reporter.ShardCompleted(payload)
		}))
	}

	res, err := shard.Split(path, maxPayload, opts...)
	if err != nil {
		printError(err)
		return ExitGeneralError
	}

	fmt.Fprintf(os.Stderr, "[chainsaw] Split %q (%s, crc %#08x) into %d shard(s)\n",
		path, progress.FormatBytes(res.OriginalSize), res.OriginalCRC, len(res.ShardPaths))
	for _, p := range res.ShardPaths {
		fmt.Fprintf(os.Stderr, "[chainsaw]   %s\n", p)
	}
	return ExitSuccess
}

// resolveOutputBase applies the prefix and directory options to the source
// path, returning the base shard names are derived from.
func resolveOutputBase(cfg config.Config, path string) (string, error) {
	nameBase := filepath.Base(path)
	if cfg.Prefix != "" {
		nameBase = cfg.Prefix
	}
	dir := filepath.Dir(path)
	if cfg.MakeDir {
		dir = filepath.Join(dir, nameBase+".shards")
		if err := os.Mkdir(dir, 0o755); err != nil && !os.IsExist(err) {
			return "", fmt.Errorf("create shard directory %q: %w", dir, err)
		}
	}
	return filepath.Join(dir, nameBase), nil
}
