package shard

import (
	"errors"
	"fmt"

	"github.com/reoky/chainsaw/internal/fileio"
)

var (
	// ErrNoShards is returned when Join is given an empty list.
	ErrNoShards = errors.New("shard: no shards to join")

	// ErrWrongCount is returned when the number of file names supplied
	// disagrees with the shard count the headers record.
	ErrWrongCount = errors.New("shard: wrong number of shards")

	// ErrSetMismatch is returned when a shard's header disagrees with the
	// rest of the set about the original file.
	ErrSetMismatch = errors.New("shard: shard does not match the set")

	// ErrDuplicateShard is returned when two supplied files claim the same
	// shard index.
	ErrDuplicateShard = errors.New("shard: duplicate shard index")

	// ErrIncompleteSet is returned when some index in [1, shard_count] has
	// no shard after all supplied files are accounted for.
	ErrIncompleteSet = errors.New("shard: incomplete shard set")

	// ErrShardDamaged is returned when a shard's payload fails its recorded
	// CRC.
	ErrShardDamaged = errors.New("shard: shard is damaged")

	// ErrVerifyFailed is returned when the reassembled output disagrees with
	// the recorded original size or CRC. The per-shard checks make this
	// unreachable short of a bookkeeping bug.
	ErrVerifyFailed = errors.New("shard: reconstruction did not verify")
)

// JoinResult reports what Join produced.
type JoinResult struct {
	OutputPath   string
	ShardCount   int
	OriginalSize int64
	OriginalCRC  uint32
}

type joinOptions struct {
	outPath string
	onShard func(idx, count int, payload int64)
}

// JoinOption configures Join.
type JoinOption func(*joinOptions)

// WithOutputPath writes the reassembled file to path instead of the
// original name recorded in the headers.
func WithOutputPath(path string) JoinOption {
	return func(o *joinOptions) {
		o.outPath = path
	}
}

// WithJoinProgress registers fn to be called after each shard's payload is
// appended, with the shard's 1-based index, the total count, and the payload
// length appended.
func WithJoinProgress(fn func(idx, count int, payload int64)) JoinOption {
	return func(o *joinOptions) {
		o.onShard = fn
	}
}

// ReadHeader opens the file at path as a shard and returns its decoded
// header. Beyond decoding, the file's on-disk size must match the size the
// header records; anything else fails wrapping ErrNotShard.
func ReadHeader(path string) (Header, error) {
	in, hdr, err := openShard(path)
	if err != nil {
		return Header{}, err
	}
	in.Close()
	return hdr, nil
}

// openShard opens path, decodes and checks its header, and returns the file
// positioned at the start of the payload. The caller owns the returned file.
// Errors name the offending path and wrap the underlying cause.
func openShard(path string) (*fileio.File, Header, error) {
	in, hdr, err := func() (*fileio.File, Header, error) {
		in, err := fileio.OpenRead(path)
		if err != nil {
			return nil, Header{}, err
		}
		size, _, err := in.SizeAndMode()
		if err != nil {
			in.Close()
			return nil, Header{}, err
		}
		if size < HeaderSize {
			in.Close()
			return nil, Header{}, fmt.Errorf("%w: file is only %d bytes", ErrNotShard, size)
		}
		block := make([]byte, HeaderSize)
		if err := in.ReadExactly(block); err != nil {
			in.Close()
			return nil, Header{}, err
		}
		var hdr Header
		if err := hdr.UnmarshalBinary(block); err != nil {
			in.Close()
			return nil, Header{}, err
		}
		if hdr.ShardSize != uint64(size) {
			in.Close()
			return nil, Header{}, fmt.Errorf("%w: header says %d bytes, file is %d",
				ErrNotShard, hdr.ShardSize, size)
		}
		return in, hdr, nil
	}()
	if err != nil {
		return nil, Header{}, fmt.Errorf("shard: open %q as a shard: %w", path, err)
	}
	return in, hdr, nil
}

// Join reassembles the original file from a complete set of shard files,
// supplied in any order. The first file's header acts as the master; every
// other header must agree with it, every index must appear exactly once, and
// every payload must match its recorded CRC. The output is written to the
// original name recorded in the headers (in the current directory) unless
// WithOutputPath overrides it.
//
// The output file is created with default permissions: the header does not
// record the original's permission bits, so join cannot restore them the way
// split propagates them to shards. On any error the output written so far
// must be treated as invalid.
func Join(paths []string, opts ...JoinOption) (*JoinResult, error) {
	var o joinOptions
	for _, opt := range opts {
		opt(&o)
	}

	if len(paths) == 0 {
		return nil, ErrNoShards
	}

	master, err := ReadHeader(paths[0])
	if err != nil {
		return nil, err
	}
	if len(paths) != int(master.ShardCount) {
		return nil, fmt.Errorf("%w: got %d file name(s) but expected %d shard(s)",
			ErrWrongCount, len(paths), master.ShardCount)
	}

	// Map every index to its file, rejecting strays and duplicates.
	byIdx := map[uint16]string{master.ShardIdx: paths[0]}
	for _, path := range paths[1:] {
		hdr, err := ReadHeader(path)
		if err != nil {
			return nil, err
		}
		if !hdr.SameSet(&master) {
			return nil, fmt.Errorf("%w: %q", ErrSetMismatch, path)
		}
		if prev, ok := byIdx[hdr.ShardIdx]; ok {
			return nil, fmt.Errorf("%w: %q and %q both claim index %d",
				ErrDuplicateShard, prev, path, hdr.ShardIdx)
		}
		byIdx[hdr.ShardIdx] = path
	}
	for idx := 1; idx <= int(master.ShardCount); idx++ {
		if _, ok := byIdx[uint16(idx)]; !ok {
			return nil, fmt.Errorf("%w: shard %d of %d is missing",
				ErrIncompleteSet, idx, master.ShardCount)
		}
	}

	outPath := o.outPath
	if outPath == "" {
		outPath = master.OriginalName
	}
	out, err := fileio.Create(outPath, 0o644)
	if err != nil {
		return nil, fmt.Errorf("shard: create %q: %w", outPath, err)
	}
	defer out.Close()

	// Stream the payloads in index order, re-reading each header as we go
	// in case a shard changed underneath us since the first pass.
	buf := make([]byte, copyBufferSize)
	var totalCRC uint32
	var total int64
	for idx := 1; idx <= int(master.ShardCount); idx++ {
		path := byIdx[uint16(idx)]
		n, err := appendShard(out, path, &totalCRC, buf)
		if err != nil {
			return nil, err
		}
		total += n
		if o.onShard != nil {
			o.onShard(idx, int(master.ShardCount), n)
		}
	}

	if uint64(total) != master.OriginalSize || totalCRC != master.OriginalCRC {
		return nil, fmt.Errorf("%w: got %d bytes with crc %#08x, headers say %d bytes with crc %#08x",
			ErrVerifyFailed, total, totalCRC, master.OriginalSize, master.OriginalCRC)
	}
	if err := out.Close(); err != nil {
		return nil, fmt.Errorf("shard: close %q: %w", outPath, err)
	}

	return &JoinResult{
		OutputPath:   outPath,
		ShardCount:   int(master.ShardCount),
		OriginalSize: total,
		OriginalCRC:  totalCRC,
	}, nil
}

// appendShard streams one shard's payload into out, folding the bytes into
// the running whole-file CRC and checking them against the shard's own
// recorded CRC. Returns the payload length appended.
func appendShard(out *fileio.File, path string, totalCRC *uint32, buf []byte) (int64, error) {
	in, hdr, err := openShard(path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	var crc uint32
	var n int64
	for {
		k, err := in.ReadAtMost(buf)
		if err != nil {
			return 0, fmt.Errorf("shard: read %q: %w", path, err)
		}
		if k == 0 {
			break
		}
		crc = UpdateCRC(crc, buf[:k])
		*totalCRC = UpdateCRC(*totalCRC, buf[:k])
		if err := out.WriteExactly(buf[:k]); err != nil {
			return 0, fmt.Errorf("shard: write %q: %w", out.Path(), err)
		}
		n += int64(k)
	}
	if crc != hdr.ShardCRC {
		return 0, fmt.Errorf("%w: %q: payload crc %#08x, header says %#08x",
			ErrShardDamaged, path, crc, hdr.ShardCRC)
	}
	return n, nil
}
