// Package transfer moves shard sets between the local filesystem and object
// storage via gocloud.dev/blob, so a set can be parked in or fetched from
// any supported store (S3, GCS, local directories, in-memory buckets).
//
// Shard headers are decoded and cross-checked on both sides of a transfer:
// Push refuses to upload an inconsistent or incomplete set, and Pull
// refuses to hand back one. Beyond that the files travel byte for byte,
// headers included, so a pulled set joins exactly like a freshly split one.
package transfer
