package shard

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateGoodSet(t *testing.T) {
	shards, _ := splitFixture(t, 5000, 1200)

	res, err := Validate(shards, true)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Fatalf("Valid = false, errors: %v", res.Errors)
	}
	if res.ShardCount != 5 {
		t.Fatalf("ShardCount = %d, want 5", res.ShardCount)
	}
	if res.OriginalSize != 5000 {
		t.Fatalf("OriginalSize = %d, want 5000", res.OriginalSize)
	}
	if res.OriginalName != "src.bin" {
		t.Fatalf("OriginalName = %q, want src.bin", res.OriginalName)
	}
}

func TestValidateMissingShard(t *testing.T) {
	shards, _ := splitFixture(t, 5000, 1200)

	res, err := Validate(shards[:4], false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatal("Valid = true for a set missing a shard")
	}
	if res.Missing != 1 {
		t.Fatalf("Missing = %d, want 1", res.Missing)
	}
}

func TestValidateDamagedPayload(t *testing.T) {
	shards, _ := splitFixture(t, 5000, 1200)

	raw, err := os.ReadFile(shards[1])
	if err != nil {
		t.Fatalf("read shard: %v", err)
	}
	raw[HeaderSize] ^= 0xFF
	if err := os.WriteFile(shards[1], raw, 0o644); err != nil {
		t.Fatalf("write shard: %v", err)
	}

	// Header-only validation cannot see payload damage.
	res, err := Validate(shards, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Fatalf("header-only validation flagged payload damage: %v", res.Errors)
	}

	// A payload pass does.
	res, err = Validate(shards, true)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid || res.Damaged != 1 {
		t.Fatalf("Valid = %v, Damaged = %d, want invalid with 1 damaged", res.Valid, res.Damaged)
	}
}

func TestValidateForeignShard(t *testing.T) {
	shards, _ := splitFixture(t, 5000, 1200)
	other, _ := splitFixture(t, 4999, 1200)

	supplied := append(append([]string(nil), shards[:4]...), other[4])
	res, err := Validate(supplied, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Fatal("Valid = true with a shard from another set")
	}
	if res.Mismatched != 1 {
		t.Fatalf("Mismatched = %d, want 1", res.Mismatched)
	}
	if res.Missing != 1 {
		t.Fatalf("Missing = %d, want 1 (the index the foreign shard displaced)", res.Missing)
	}
}

func TestValidateNonShardFile(t *testing.T) {
	shards, _ := splitFixture(t, 5000, 1200)
	junk := filepath.Join(t.TempDir(), "junk")
	if err := os.WriteFile(junk, []byte("not a shard"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	supplied := append(append([]string(nil), shards[:4]...), junk)
	res, err := Validate(supplied, false)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid || res.BadFiles != 1 {
		t.Fatalf("Valid = %v, BadFiles = %d, want invalid with 1 bad file", res.Valid, res.BadFiles)
	}
}

func TestValidateNothingDecodes(t *testing.T) {
	junk := filepath.Join(t.TempDir(), "junk")
	if err := os.WriteFile(junk, []byte("not a shard"), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}

	if _, err := Validate([]string{junk}, false); err == nil {
		t.Fatal("Validate with no decodable shard should fail")
	}
}
