package shard

import "hash/crc32"

// UpdateCRC folds p into a running CRC32 accumulator and returns the new
// accumulator. Start from zero; feeding a stream through repeated calls
// yields the same value as checksumming the concatenation in one shot, no
// matter how the stream was chunked.
//
// The polynomial is the standard IEEE one, so headers produced here verify
// under any conforming CRC32 implementation.
func UpdateCRC(crc uint32, p []byte) uint32 {
	return crc32.Update(crc, crc32.IEEETable, p)
}
