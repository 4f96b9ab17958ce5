package fileio

import (
	"fmt"
	"io"
	"os"
)

// File wraps an open file descriptor. The zero value is not usable; obtain
// one from OpenRead or Create, and release it with Close.
type File struct {
	f    *os.File
	path string
}

// OpenRead opens the file at path for reading. The file must exist.
func OpenRead(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &File{f: f, path: path}, nil
}

// Create opens the file at path for reading and writing with the given
// permission bits, creating it if necessary and truncating it if it already
// exists.
func Create(path string, mode os.FileMode) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, err
	}
	return &File{f: f, path: path}, nil
}

// Path returns the path the file was opened with.
func (f *File) Path() string {
	return f.path
}

// SizeAndMode returns the file's current size in bytes and its permission
// bits.
func (f *File) SizeAndMode() (int64, os.FileMode, error) {
	info, err := f.f.Stat()
	if err != nil {
		return 0, 0, err
	}
	return info.Size(), info.Mode().Perm(), nil
}

// ReadAtMost reads up to len(p) bytes into p and returns the number of bytes
// read. At end of stream it returns 0 and a nil error.
func (f *File) ReadAtMost(p []byte) (int, error) {
	n, err := f.f.Read(p)
	if n > 0 {
		return n, nil
	}
	if err == io.EOF {
		return 0, nil
	}
	return 0, err
}

// ReadExactly fills p completely or fails. A file that runs short produces
// an error wrapping io.ErrUnexpectedEOF.
func (f *File) ReadExactly(p []byte) error {
	if _, err := io.ReadFull(f.f, p); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("read %d bytes: %w", len(p), err)
	}
	return nil
}

// WriteExactly writes all of p or fails.
func (f *File) WriteExactly(p []byte) error {
	n, err := f.f.Write(p)
	if err != nil {
		return err
	}
	if n != len(p) {
		return fmt.Errorf("wrote %d of %d bytes: %w", n, len(p), io.ErrShortWrite)
	}
	return nil
}

// SeekStart repositions the file to off bytes from its beginning.
func (f *File) SeekStart(off int64) error {
	_, err := f.f.Seek(off, io.SeekStart)
	return err
}

// Close releases the underlying descriptor. Calling Close more than once is
// allowed; later calls return nil.
func (f *File) Close() error {
	if f.f == nil {
		return nil
	}
	err := f.f.Close()
	f.f = nil
	return err
}
