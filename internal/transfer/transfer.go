package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/reoky/chainsaw/pkg/shard"
)

// ErrNoObjects is returned by Pull when nothing is stored under the given
// key prefix.
var ErrNoObjects = errors.New("transfer: no shards under prefix")

// Options configures a transfer.
type Options struct {
	// OnShard is called after each shard is transferred, with the object
	// key and the number of bytes moved.
	OnShard func(object string, size int64)
}

// Option is a functional option for configuring transfers.
type Option func(*Options)

// WithProgress registers fn to be called after each transferred shard.
func WithProgress(fn func(object string, size int64)) Option {
	return func(o *Options) {
		o.OnShard = fn
	}
}

// normalizePrefix gives the key prefix a trailing separator so keys nest
// under it like a directory.
func normalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}

// Push copies a complete local shard set into the bucket under keyPrefix,
// one object per shard, keyed by the shard's base file name. The set is
// cross-checked before anything is uploaded; an inconsistent or incomplete
// set fails without touching the bucket.
func Push(ctx context.Context, bucket *blob.Bucket, keyPrefix string, paths []string, options ...Option) error {
	var opts Options
	for _, opt := range options {
		opt(&opts)
	}
	keyPrefix = normalizePrefix(keyPrefix)

	res, err := shard.Validate(paths, false)
	if err != nil {
		return fmt.Errorf("transfer: check set: %w", err)
	}
	if !res.Valid {
		return fmt.Errorf("transfer: refusing to push a broken set: %s", res.Errors[0])
	}

	for _, p := range paths {
		key := keyPrefix + filepath.Base(p)
		n, err := pushOne(ctx, bucket, key, p)
		if err != nil {
			return fmt.Errorf("transfer: push %q: %w", p, err)
		}
		if opts.OnShard != nil {
			opts.OnShard(key, n)
		}
	}
	return nil
}

// pushOne uploads a single shard file to the given key.
func pushOne(ctx context.Context, bucket *blob.Bucket, key, p string) (int64, error) {
	in, err := os.Open(p)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	w, err := bucket.NewWriter(ctx, key, nil)
	if err != nil {
		return 0, fmt.Errorf("create writer for %q: %w", key, err)
	}
	n, err := io.Copy(w, in)
	if err != nil {
		w.Close()
		return 0, fmt.Errorf("upload to %q: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("commit %q: %w", key, err)
	}
	return n, nil
}

// Pull downloads the shard set stored under keyPrefix into destDir and
// returns the local shard paths in ascending index order, ready to hand to
// shard.Join. Every downloaded file must decode as a shard and agree with
// the rest of the set; the set must be complete.
func Pull(ctx context.Context, bucket *blob.Bucket, keyPrefix, destDir string, options ...Option) ([]string, error) {
	var opts Options
	for _, opt := range options {
		opt(&opts)
	}
	keyPrefix = normalizePrefix(keyPrefix)

	var master *shard.Header
	byIdx := make(map[uint16]string)

	iter := bucket.List(&blob.ListOptions{Prefix: keyPrefix})
	for {
		obj, err := iter.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("transfer: list %q: %w", keyPrefix, err)
		}
		if obj.IsDir {
			continue
		}

		local := filepath.Join(destDir, path.Base(obj.Key))
		n, err := pullOne(ctx, bucket, obj.Key, local)
		if err != nil {
			return nil, fmt.Errorf("transfer: pull %q: %w", obj.Key, err)
		}
		if opts.OnShard != nil {
			opts.OnShard(obj.Key, n)
		}

		hdr, err := shard.ReadHeader(local)
		if err != nil {
			return nil, fmt.Errorf("transfer: pulled object %q: %w", obj.Key, err)
		}
		if master == nil {
			master = &hdr
		} else if !hdr.SameSet(master) {
			return nil, fmt.Errorf("%w: %q", shard.ErrSetMismatch, obj.Key)
		}
		if prev, ok := byIdx[hdr.ShardIdx]; ok {
			return nil, fmt.Errorf("%w: %q and %q both claim index %d",
				shard.ErrDuplicateShard, prev, local, hdr.ShardIdx)
		}
		byIdx[hdr.ShardIdx] = local
	}

	if master == nil {
		return nil, fmt.Errorf("%w: %q", ErrNoObjects, keyPrefix)
	}

	paths := make([]string, 0, master.ShardCount)
	for idx := 1; idx <= int(master.ShardCount); idx++ {
		p, ok := byIdx[uint16(idx)]
		if !ok {
			return nil, fmt.Errorf("%w: shard %d of %d is missing under %q",
				shard.ErrIncompleteSet, idx, master.ShardCount, keyPrefix)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// pullOne downloads a single object to a local file.
func pullOne(ctx context.Context, bucket *blob.Bucket, key, local string) (int64, error) {
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return 0, fmt.Errorf("object vanished after listing: %w", err)
		}
		return 0, fmt.Errorf("open object: %w", err)
	}
	defer r.Close()

	out, err := os.Create(local)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, r)
	if err != nil {
		out.Close()
		return 0, fmt.Errorf("write %q: %w", local, err)
	}
	if err := out.Close(); err != nil {
		return 0, fmt.Errorf("close %q: %w", local, err)
	}
	return n, nil
}
