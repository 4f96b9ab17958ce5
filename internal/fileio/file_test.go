package fileio

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")

	out, err := Create(path, 0o640)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	payload := []byte("hello, file")
	if err := out.WriteExactly(payload); err != nil {
		t.Fatalf("WriteExactly: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Second close is a no-op.
	if err := out.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	in, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer in.Close()

	size, mode, err := in.SizeAndMode()
	if err != nil {
		t.Fatalf("SizeAndMode: %v", err)
	}
	if size != int64(len(payload)) {
		t.Fatalf("size = %d, want %d", size, len(payload))
	}
	if mode != 0o640 {
		t.Fatalf("mode = %o, want 640", mode)
	}

	got := make([]byte, len(payload))
	if err := in.ReadExactly(got); err != nil {
		t.Fatalf("ReadExactly: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("read %q, want %q", got, payload)
	}
}

func TestReadAtMostEndOfStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	in, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer in.Close()

	buf := make([]byte, 16)
	n, err := in.ReadAtMost(buf)
	if err != nil {
		t.Fatalf("ReadAtMost: %v", err)
	}
	if n != 3 {
		t.Fatalf("read %d bytes, want 3", n)
	}

	n, err = in.ReadAtMost(buf)
	if err != nil {
		t.Fatalf("ReadAtMost at end: %v", err)
	}
	if n != 0 {
		t.Fatalf("read %d bytes at end, want 0", n)
	}
}

func TestReadExactlyShortFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	if err := os.WriteFile(path, []byte("abc"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	in, err := OpenRead(path)
	if err != nil {
		t.Fatalf("OpenRead: %v", err)
	}
	defer in.Close()

	if err := in.ReadExactly(make([]byte, 16)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("ReadExactly error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestSeekAndRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rewrite.bin")

	out, err := Create(path, 0o644)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer out.Close()

	if err := out.WriteExactly([]byte("xxxxtail")); err != nil {
		t.Fatalf("WriteExactly: %v", err)
	}
	if err := out.SeekStart(0); err != nil {
		t.Fatalf("SeekStart: %v", err)
	}
	if err := out.WriteExactly([]byte("head")); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := out.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "headtail" {
		t.Fatalf("file contents = %q, want %q", got, "headtail")
	}
}
