package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"

	"github.com/reoky/chainsaw/internal/config"
	"github.com/reoky/chainsaw/internal/progress"
	"github.com/reoky/chainsaw/internal/transfer"
)

// runPush uploads a complete shard set to object storage.
func runPush(args []string) int {
	fs := flag.NewFlagSet("push", flag.ExitOnError)

	bucketURL := fs.String("bucket", "", "Destination bucket URL, e.g. s3://my-bucket (required)")
	keyPrefix := fs.String("prefix", "", "Key prefix to store the shards under")
	configPath := fs.String("config", "", "Load defaults from a YAML config file")
	showProgress := fs.Bool("progress", false, "Show progress output")

	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, `Usage: chainsaw push [options] SHARD...

Upload a complete shard set to object storage, one object per shard. The
set is cross-checked before anything is uploaded.

Options:`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return ExitInvalidArgs
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: push needs at least one shard name")
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

	paths := fs.Args()
	var opts []transfer.Option
	if cfg.Progress {
		reporter := progress.NewReporter(progress.Options{
			Operation:   "push",
			Source:      cfg.Bucket,
			TotalShards: len(paths),
		})
		reporter.Start()
		defer reporter.Stop()
		opts = append(opts, transfer.WithProgress(func(object string, size int64) {
			reporter.ShardCompleted(size)
		}))
	}

	if err := transfer.Push(ctx, bkt, *keyPrefix, paths, opts...); err != nil {
		printError(err)
		return ExitStorageError
	}

	fmt.Fprintf(os.Stderr, "[chainsaw] Pushed %d shard(s) to %s/%s\n", len(paths), cfg.Bucket, *keyPrefix)
	return ExitSuccess
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\n[chainsaw] Received interrupt, shutting down...")
		cancel()
	}()

	return ctx, cancel
}
