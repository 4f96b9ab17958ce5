package shard

import (
	"encoding/binary"
	"errors"
	"strings"
	"testing"
)

func sampleHeader() Header {
	return Header{
		ShardIdx:     2,
		ShardCount:   3,
		OriginalSize: 1 << 20,
		OriginalCRC:  0xDEADBEEF,
		ShardSize:    HeaderSize + 4096,
		ShardCRC:     0x0BADF00D,
		OriginalName: "foo.bin",
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	want := sampleHeader()
	block, err := want.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	if len(block) != HeaderSize {
		t.Fatalf("encoded %d bytes, want %d", len(block), HeaderSize)
	}

	var got Header
	if err := got.UnmarshalBinary(block); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch:\n got %s\nwant %s", &got, &want)
	}
}

// TestHeaderLayout pins the wire format: field offsets and little-endian
// byte order must never drift, or shards stop being portable between
// versions.
func TestHeaderLayout(t *testing.T) {
	h := sampleHeader()
	block, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}

	if magic := binary.LittleEndian.Uint32(block[0:4]); magic != 0xB007C8AD {
		t.Fatalf("magic = %#08x, want 0xB007C8AD", magic)
	}
	if idx := binary.LittleEndian.Uint16(block[4:6]); idx != 2 {
		t.Fatalf("shard_idx = %d, want 2", idx)
	}
	if count := binary.LittleEndian.Uint16(block[6:8]); count != 3 {
		t.Fatalf("shard_count = %d, want 3", count)
	}
	if size := binary.LittleEndian.Uint64(block[8:16]); size != 1<<20 {
		t.Fatalf("original_size = %d, want %d", size, 1<<20)
	}
	if crc := binary.LittleEndian.Uint32(block[16:20]); crc != 0xDEADBEEF {
		t.Fatalf("original_crc = %#08x, want 0xDEADBEEF", crc)
	}
	if size := binary.LittleEndian.Uint64(block[20:28]); size != HeaderSize+4096 {
		t.Fatalf("shard_size = %d, want %d", size, HeaderSize+4096)
	}
	if crc := binary.LittleEndian.Uint32(block[28:32]); crc != 0x0BADF00D {
		t.Fatalf("shard_crc = %#08x, want 0x0BADF00D", crc)
	}
	if got := string(block[32:39]); got != "foo.bin" {
		t.Fatalf("original_name = %q, want %q", got, "foo.bin")
	}
	// Name field is NUL-terminated and NUL-padded to the end of the block.
	for i := 39; i < HeaderSize; i++ {
		if block[i] != 0 {
			t.Fatalf("block[%d] = %#02x, want NUL padding", i, block[i])
		}
	}
}

func TestHeaderEncodeNameTooLong(t *testing.T) {
	h := sampleHeader()

	// 255 bytes still fits; 256 does not.
	h.OriginalName = strings.Repeat("x", 255)
	if _, err := h.MarshalBinary(); err != nil {
		t.Fatalf("255-byte name: %v", err)
	}
	h.OriginalName = strings.Repeat("x", 256)
	if _, err := h.MarshalBinary(); !errors.Is(err, ErrNameTooLong) {
		t.Fatalf("256-byte name error = %v, want ErrNameTooLong", err)
	}
}

func TestHeaderDecodeRejectsGarbage(t *testing.T) {
	var h Header

	if err := h.UnmarshalBinary(make([]byte, 10)); !errors.Is(err, ErrNotShard) {
		t.Fatalf("short block error = %v, want ErrNotShard", err)
	}

	block := make([]byte, HeaderSize)
	for i := range block {
		block[i] = byte(i)
	}
	if err := h.UnmarshalBinary(block); !errors.Is(err, ErrNotShard) {
		t.Fatalf("bad magic error = %v, want ErrNotShard", err)
	}
}

func TestHeaderDecodeRejectsBadIndex(t *testing.T) {
	for _, tc := range []struct {
		name       string
		idx, count uint16
	}{
		{"zero index", 0, 3},
		{"zero count", 1, 0},
		{"index past count", 4, 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			// Marshal does not police index ranges, only decode does, so
			// build the block by hand from a valid one.
			h := sampleHeader()
			block, err := h.MarshalBinary()
			if err != nil {
				t.Fatalf("MarshalBinary: %v", err)
			}
			binary.LittleEndian.PutUint16(block[4:6], tc.idx)
			binary.LittleEndian.PutUint16(block[6:8], tc.count)

			var got Header
			if err := got.UnmarshalBinary(block); !errors.Is(err, ErrNotShard) {
				t.Fatalf("error = %v, want ErrNotShard", err)
			}
		})
	}
}

func TestHeaderString(t *testing.T) {
	h := sampleHeader()
	s := h.String()
	for _, want := range []string{
		"shard_idx: 2",
		"shard_count: 3",
		"original_size: 1048576",
		`original_name: "foo.bin"`,
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("String() = %s, missing %q", s, want)
		}
	}
}

func TestSameSet(t *testing.T) {
	a := sampleHeader()
	b := a
	b.ShardIdx = 1
	b.ShardCRC = 0x12345678
	b.ShardSize = HeaderSize + 10
	if !a.SameSet(&b) {
		t.Fatal("headers differing only in per-shard fields should be the same set")
	}

	c := a
	c.OriginalCRC++
	if a.SameSet(&c) {
		t.Fatal("headers with different original_crc must not be the same set")
	}
}
