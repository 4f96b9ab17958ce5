// Package progress provides human-readable progress output for long-running
// shard operations, plus helpers for formatting and parsing byte counts.
//
// A Reporter is fed shard completions and periodically redraws a status
// line with percentage, throughput and ETA. Output goes to stdout by
// default; the shard operations themselves never print.
package progress
