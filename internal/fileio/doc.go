// Package fileio provides the thin file-access layer the shard codec is
// built on: open for read, create with explicit permission bits, bounded
// reads, all-or-nothing reads and writes, absolute seek, and a size/mode
// query.
//
// The wrapper exists so the calling code can say what it means:
// ReadExactly fails when the file runs short, WriteExactly fails on a short
// write, ReadAtMost reports end of stream as a zero count instead of an
// error. Close is idempotent, so a deferred Close alongside an explicit
// checked Close never double-releases the descriptor.
package fileio
