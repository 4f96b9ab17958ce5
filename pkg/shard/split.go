package shard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reoky/chainsaw/internal/fileio"
)

// copyBufferSize bounds the streaming buffers, keeping memory use
// independent of file size.
const copyBufferSize = 64 * 1024

// ErrTooLarge is returned when the source would need more shards than the
// header's 16-bit count field can represent.
var ErrTooLarge = errors.New("shard: input too large to shard")

// SplitResult reports what Split produced.
type SplitResult struct {
	// ShardPaths lists the shard files written, in index order.
	ShardPaths []string

	// OriginalSize and OriginalCRC describe the source file as recorded in
	// every shard header.
	OriginalSize int64
	OriginalCRC  uint32
}

type splitOptions struct {
	outBase string
	onShard func(idx, count int, payload int64)
}

// SplitOption configures Split.
type SplitOption func(*splitOptions)

// WithOutputBase names shard files after base instead of the source path.
// The shard naming rule still applies: base "out/part" for shard 2 of 3
// gives "out/part@2.3".
func WithOutputBase(base string) SplitOption {
	return func(o *splitOptions) {
		o.outBase = base
	}
}

// WithSplitProgress registers fn to be called after each shard is written,
// with the shard's 1-based index, the total count, and the payload length
// just written.
func WithSplitProgress(fn func(idx, count int, payload int64)) SplitOption {
	return func(o *splitOptions) {
		o.onShard = fn
	}
}

// ShardName returns the conventional shard file name for shard idx of count
// derived from path: path "foo", shard 2 of 3, gives "foo@2.3".
func ShardName(path string, idx, count int) string {
	return fmt.Sprintf("%s@%d.%d", path, idx, count)
}

// Split cuts the file at path into shards carrying at most maxPayload bytes
// of payload each. The shard count is the ceiling of size over maxPayload,
// so every shard but the last carries a full payload; an empty source still
// yields one shard with an empty payload. Shard files inherit the source's
// permission bits.
//
// The shard count and the source's base name are checked before any output
// file is created: a source needing more than MaxShardCount shards fails
// with ErrTooLarge, and a base name that cannot fit the header fails with
// ErrNameTooLong, in both cases leaving no partial shards behind. A failure
// while writing a particular shard names that shard's file.
func Split(path string, maxPayload int64, opts ...SplitOption) (*SplitResult, error) {
	o := splitOptions{outBase: path}
	for _, opt := range opts {
		opt(&o)
	}
	if maxPayload < 1 {
		return nil, fmt.Errorf("shard: max payload must be at least 1 byte, got %d", maxPayload)
	}

	in, err := fileio.OpenRead(path)
	if err != nil {
		return nil, fmt.Errorf("shard: open %q: %w", path, err)
	}
	defer in.Close()

	size, mode, err := in.SizeAndMode()
	if err != nil {
		return nil, fmt.Errorf("shard: stat %q: %w", path, err)
	}

	// Pass 1: checksum the whole source, then rewind.
	buf := make([]byte, copyBufferSize)
	var origCRC uint32
	for {
		n, err := in.ReadAtMost(buf)
		if err != nil {
			return nil, fmt.Errorf("shard: read %q: %w", path, err)
		}
		if n == 0 {
			break
		}
		origCRC = UpdateCRC(origCRC, buf[:n])
	}
	if err := in.SeekStart(0); err != nil {
		return nil, fmt.Errorf("shard: rewind %q: %w", path, err)
	}

	count := (size + maxPayload - 1) / maxPayload
	if count == 0 {
		// An empty source still becomes one shard, or there would be
		// nothing to join.
		count = 1
	}
	if count > MaxShardCount {
		return nil, fmt.Errorf("%w: %d bytes means %d shards at %d payload bytes each, limit is %d",
			ErrTooLarge, size, count, maxPayload, MaxShardCount)
	}

	name := filepath.Base(path)
	if len(name) >= nameSize {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit is %d", ErrNameTooLong, name, len(name), nameSize-1)
	}

	hdr := Header{
		ShardCount:   uint16(count),
		OriginalSize: uint64(size),
		OriginalCRC:  origCRC,
		OriginalName: name,
	}

	remaining := size
	paths := make([]string, 0, count)
	for idx := int64(1); idx <= count; idx++ {
		payload := min(maxPayload, remaining)
		outPath := ShardName(o.outBase, int(idx), int(count))
		if err := writeShard(in, outPath, mode, hdr, uint16(idx), payload, buf); err != nil {
			return nil, fmt.Errorf("shard: write %q: %w", outPath, err)
		}
		remaining -= payload
		paths = append(paths, outPath)
		if o.onShard != nil {
			o.onShard(int(idx), int(count), payload)
		}
	}

	return &SplitResult{
		ShardPaths:   paths,
		OriginalSize: size,
		OriginalCRC:  origCRC,
	}, nil
}

// writeShard writes one shard file: a provisional header, the payload
// streamed from the source, then the header again with the payload CRC
// filled in.
func writeShard(in *fileio.File, outPath string, mode os.FileMode, hdr Header, idx uint16, payload int64, buf []byte) error {
	out, err := fileio.Create(outPath, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	hdr.ShardIdx = idx
	hdr.ShardSize = uint64(payload) + HeaderSize
	hdr.ShardCRC = 0
	block, err := hdr.MarshalBinary()
	if err != nil {
		return err
	}
	if err := out.WriteExactly(block); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	var crc uint32
	for left := payload; left > 0; {
		chunk := buf
		if left < int64(len(chunk)) {
			chunk = chunk[:left]
		}
		n, err := in.ReadAtMost(chunk)
		if err != nil {
			return fmt.Errorf("read source: %w", err)
		}
		if n == 0 {
			// The source shrank between the size query and now.
			return fmt.Errorf("read source: %d bytes missing", left)
		}
		crc = UpdateCRC(crc, chunk[:n])
		if err := out.WriteExactly(chunk[:n]); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}
		left -= int64(n)
	}

	hdr.ShardCRC = crc
	block, err = hdr.MarshalBinary()
	if err != nil {
		return err
	}
	if err := out.SeekStart(0); err != nil {
		return fmt.Errorf("rewind: %w", err)
	}
	if err := out.WriteExactly(block); err != nil {
		return fmt.Errorf("rewrite header: %w", err)
	}
	return out.Close()
}
