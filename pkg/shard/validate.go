package shard

import "fmt"

// ValidationResult contains the results of validating a shard set.
type ValidationResult struct {
	Valid        bool   // true if the files form a complete, consistent set
	ShardCount   int    // shard count the headers record
	OriginalSize int64  // original file size the headers record
	OriginalName string // original file name the headers record

	BadFiles   int // files that are not shards at all
	Mismatched int // shards belonging to a different set
	Duplicates int // files claiming an index already taken
	Missing    int // indices in [1, shard_count] with no shard
	Damaged    int // shards whose payload fails its recorded CRC

	Errors []string // detailed error messages
}

// Validate cross-checks a shard set without reassembling it. Every file's
// header is decoded and compared against the first decodable one; with
// verifyPayload set, each shard's payload is also streamed and checked
// against its recorded CRC.
//
// Problems with individual shards are not returned as errors; they are
// collected in the ValidationResult with Valid set to false. Validate only
// returns an error when there is nothing to report against: no files were
// supplied, or none of them decodes as a shard.
func Validate(paths []string, verifyPayload bool) (*ValidationResult, error) {
	if len(paths) == 0 {
		return nil, ErrNoShards
	}

	// Decode everything up front; the first decodable header anchors the
	// set.
	headers := make([]*Header, len(paths))
	result := &ValidationResult{Valid: true}
	var master *Header
	for i, path := range paths {
		hdr, err := ReadHeader(path)
		if err != nil {
			result.Valid = false
			result.BadFiles++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		headers[i] = &hdr
		if master == nil {
			master = &hdr
		}
	}
	if master == nil {
		return nil, fmt.Errorf("shard: none of the %d file(s) is a shard", len(paths))
	}

	result.ShardCount = int(master.ShardCount)
	result.OriginalSize = int64(master.OriginalSize)
	result.OriginalName = master.OriginalName

	if len(paths) != int(master.ShardCount) {
		result.Valid = false
		result.Errors = append(result.Errors,
			fmt.Sprintf("got %d file(s) but headers expect %d shard(s)", len(paths), master.ShardCount))
	}

	byIdx := make(map[uint16]string, master.ShardCount)
	for i, hdr := range headers {
		if hdr == nil {
			continue
		}
		path := paths[i]
		if !hdr.SameSet(master) {
			result.Valid = false
			result.Mismatched++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s does not match the set: %s", path, hdr))
			continue
		}
		if prev, ok := byIdx[hdr.ShardIdx]; ok {
			result.Valid = false
			result.Duplicates++
			result.Errors = append(result.Errors,
				fmt.Sprintf("%s duplicates index %d already claimed by %s", path, hdr.ShardIdx, prev))
			continue
		}
		byIdx[hdr.ShardIdx] = path

		if verifyPayload {
			if err := verifyShardPayload(path); err != nil {
				result.Valid = false
				result.Damaged++
				result.Errors = append(result.Errors, err.Error())
			}
		}
	}

	for idx := 1; idx <= int(master.ShardCount); idx++ {
		if _, ok := byIdx[uint16(idx)]; !ok {
			result.Valid = false
			result.Missing++
			result.Errors = append(result.Errors,
				fmt.Sprintf("shard %d of %d is missing", idx, master.ShardCount))
		}
	}

	return result, nil
}

// verifyShardPayload streams a shard's payload and compares its CRC against
// the one recorded in the header.
func verifyShardPayload(path string) error {
	in, hdr, err := openShard(path)
	if err != nil {
		return err
	}
	defer in.Close()

	buf := make([]byte, copyBufferSize)
	var crc uint32
	for {
		n, err := in.ReadAtMost(buf)
		if err != nil {
			return fmt.Errorf("shard: read %q: %w", path, err)
		}
		if n == 0 {
			break
		}
		crc = UpdateCRC(crc, buf[:n])
	}
	if crc != hdr.ShardCRC {
		return fmt.Errorf("%w: %q: payload crc %#08x, header says %#08x",
			ErrShardDamaged, path, crc, hdr.ShardCRC)
	}
	return nil
}
