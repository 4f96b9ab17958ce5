// Package shard splits a file into self-describing shard files and joins a
// complete set of shards back into the original file, verifying integrity
// end to end with CRC32 checksums.
//
// # Shard format
//
// Every shard file starts with a fixed 288-byte header followed by a
// contiguous slice of the original file's bytes. All integer fields are
// little-endian:
//
//	offset  size  field
//	     0     4  magic (0xB007C8AD)
//	     4     2  shard_idx (1-based)
//	     6     2  shard_count
//	     8     8  original_size
//	    16     4  original_crc
//	    20     8  shard_size (this file, header included)
//	    28     4  shard_crc (payload only)
//	    32   256  original_name (NUL-terminated, NUL-padded)
//
// Shards of one set agree on shard_count, original_size, original_crc and
// original_name; their indices are exactly {1..shard_count} with no
// duplicates.
//
// # Splitting
//
// [Split] streams the source twice: once to compute the whole-file CRC, then
// once more in shard-sized slices while writing each output. Every shard but
// the last carries a full payload. The shard CRC is only known after the
// payload is written, so the header is written provisionally and rewritten
// in place afterwards. Default output names follow [ShardName]: source "foo"
// split 2 of 3 becomes "foo@2.3".
//
// # Joining
//
// [Join] accepts shard file names in any order. It decodes every header,
// cross-checks the set, orders shards by index, streams the payloads into
// the output while re-verifying each shard's CRC, and finally checks the
// reconstructed size and whole-file CRC against the values every header
// recorded. Any violated invariant aborts the join; the output written so
// far carries no guarantee.
//
// [Validate] performs the same cross-checks without producing an output
// file, collecting problems into a [ValidationResult] instead of stopping at
// the first one.
//
// Operations are sequential and stream through fixed 64KiB buffers, so
// memory use is independent of file size.
package shard
