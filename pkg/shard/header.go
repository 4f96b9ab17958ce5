package shard

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic identifies a shard file. A file that does not begin with this value
// is not a shard.
const Magic uint32 = 0xB007C8AD

// HeaderSize is the size of the encoded header at the start of every shard
// file. It is the same for every shard.
const HeaderSize = 288

// MaxShardCount is the largest shard count the header's 16-bit index fields
// can represent.
const MaxShardCount = 65535

// nameSize is the capacity of the original-name field, terminating NUL
// included.
const nameSize = 256

var (
	// ErrNotShard is returned when a file or byte block does not carry a
	// valid shard header.
	ErrNotShard = errors.New("shard: not a shard")

	// ErrNameTooLong is returned at encode time when the original file's
	// base name does not fit the header's name field.
	ErrNameTooLong = errors.New("shard: file name too long")
)

// Header is the fixed-size record at the start of every shard file. It
// describes both the shard itself and the set it belongs to, so any one
// shard is enough to learn the shape of the whole.
type Header struct {
	// ShardIdx and ShardCount form an "x of y" designation, with ShardIdx
	// 1-based.
	ShardIdx   uint16
	ShardCount uint16

	// OriginalSize and OriginalCRC describe the file the set reassembles to.
	OriginalSize uint64
	OriginalCRC  uint32

	// ShardSize is the size of this shard file in bytes, header included. A
	// file whose size disagrees with this value is not a shard.
	ShardSize uint64

	// ShardCRC covers this shard's payload only, header excluded.
	ShardCRC uint32

	// OriginalName is the base name of the original file, with no directory
	// component. At most 255 bytes.
	OriginalName string
}

var (
	_ encoding.BinaryMarshaler   = (*Header)(nil)
	_ encoding.BinaryUnmarshaler = (*Header)(nil)
)

// MarshalBinary encodes the header into a HeaderSize-byte block. It fails
// with ErrNameTooLong if OriginalName cannot fit the name field; names are
// never silently truncated.
func (h *Header) MarshalBinary() ([]byte, error) {
	if len(h.OriginalName) >= nameSize {
		return nil, fmt.Errorf("%w: %q is %d bytes, limit is %d",
			ErrNameTooLong, h.OriginalName, len(h.OriginalName), nameSize-1)
	}

	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], h.ShardIdx)
	binary.LittleEndian.PutUint16(buf[6:8], h.ShardCount)
	binary.LittleEndian.PutUint64(buf[8:16], h.OriginalSize)
	binary.LittleEndian.PutUint32(buf[16:20], h.OriginalCRC)
	binary.LittleEndian.PutUint64(buf[20:28], h.ShardSize)
	binary.LittleEndian.PutUint32(buf[28:32], h.ShardCRC)
	copy(buf[32:], h.OriginalName)
	return buf, nil
}

// UnmarshalBinary decodes a HeaderSize-byte block. Any block that does not
// carry the magic number, or whose fields violate the format's invariants,
// fails with an error wrapping ErrNotShard.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: %d bytes is too small to hold a header", ErrNotShard, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != Magic {
		return fmt.Errorf("%w: bad magic %#08x", ErrNotShard, magic)
	}

	h.ShardIdx = binary.LittleEndian.Uint16(data[4:6])
	h.ShardCount = binary.LittleEndian.Uint16(data[6:8])
	h.OriginalSize = binary.LittleEndian.Uint64(data[8:16])
	h.OriginalCRC = binary.LittleEndian.Uint32(data[16:20])
	h.ShardSize = binary.LittleEndian.Uint64(data[20:28])
	h.ShardCRC = binary.LittleEndian.Uint32(data[28:32])

	end := bytes.IndexByte(data[32:32+nameSize], 0)
	if end < 0 {
		return fmt.Errorf("%w: name field is not NUL-terminated", ErrNotShard)
	}
	h.OriginalName = string(data[32 : 32+end])

	if h.ShardCount == 0 {
		return fmt.Errorf("%w: shard count is zero", ErrNotShard)
	}
	if h.ShardIdx == 0 || h.ShardIdx > h.ShardCount {
		return fmt.Errorf("%w: shard index %d out of range [1, %d]",
			ErrNotShard, h.ShardIdx, h.ShardCount)
	}
	return nil
}

// SameSet reports whether h and other describe shards of the same set: the
// shard count and every recorded property of the original file agree.
func (h *Header) SameSet(other *Header) bool {
	return h.ShardCount == other.ShardCount &&
		h.OriginalSize == other.OriginalSize &&
		h.OriginalCRC == other.OriginalCRC &&
		h.OriginalName == other.OriginalName
}

// String renders the header in a stable human-readable form for diagnostics.
func (h *Header) String() string {
	return fmt.Sprintf(
		"{ shard_idx: %d, shard_count: %d, original_size: %d, original_crc: %#08x, shard_size: %d, shard_crc: %#08x, original_name: %q }",
		h.ShardIdx, h.ShardCount, h.OriginalSize, h.OriginalCRC,
		h.ShardSize, h.ShardCRC, h.OriginalName)
}
