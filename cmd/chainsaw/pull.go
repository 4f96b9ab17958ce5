package main

import (
	"flag"
	"fmt"
	"os"

	"gocloud.dev/blob"

	"github.com/reoky/chainsaw/internal/config"
	"github.com/reoky/chainsaw/internal/progress"
	"github.com/reoky/chainsaw/internal/transfer"
)

// runPull downloads a shard set from object storage, optionally joining it
// straight away.
func runPull(args []string) int {
	fs := flag.NewFlagSet("pull", flag.ExitOnError)

	bucketURL := fs.String("bucket", "", "Source bucket URL, e.g. s3://my-bucket (required)")
	keyPrefix := fs.String("prefix", "", "Key prefix the shards are stored under")
	destDir := fs.String("dir", ".", "Directory to download the shards into")
	join := fs.Bool("join", false, "Join the pulled shards after downloading")
	output := fs.String("o", "", "With -join, write the reassembled file here")
	configPath := fs.String("config", "", "Load defaults from a YAML config file")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: chainsaw pull [options]

Download a shard set from object storage. Every pulled object must decode
as a shard and the set must be complete. With -join, the pulled shards are
immediately reassembled.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "Error: pull takes no positional arguments")
		fs.Usage()
		return ExitInvalidArgs
	}

	cfg, err := resolveConfig(*configPath, config.Config{Bucket: *bucketURL, Progress: *showProgress})
	if err != nil {
		printError(err)
		return ExitInvalidArgs
	}
	if cfg.Bucket == "" {
		fmt.Fprintln(os.Stderr, "Error: -bucket is required")
		fs.Usage()
		return ExitInvalidArgs
	}

	ctx, cancel := signalContext()
	defer cancel()

	bkt, err := blob.OpenBucket(ctx, cfg.Bucket)
	if err != nil {
		printError(fmt.Errorf("open bucket %q: %w", cfg.Bucket, err))
		return ExitStorageError
	}
	defer bkt.Close()

	var opts []transfer.Option
	if cfg.Progress {
		reporter := progress.NewReporter(progress.Options{
			Operation: "pull",
			Source:    cfg.Bucket,
		})
		reporter.Start()
		defer reporter.Stop()
		opts = append(opts, transfer.WithProgress(func(object string, size int64) {
			reporter.ShardCompleted(size)
		}))
	}

	paths, err := transfer.Pull(ctx, bkt, *keyPrefix, *destDir, opts...)
	if err != nil {
		printError(err)
		return ExitStorageError
	}
	fmt.Fprintf(os.Stderr, "[chainsaw] Pulled %d shard(s) from %s/%s\n", len(paths), cfg.Bucket, *keyPrefix)

	if !*join {
		return ExitSuccess
	}
	return doJoin(cfg, paths, *output)
}
