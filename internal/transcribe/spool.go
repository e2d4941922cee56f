package transcribe

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Spool errors.
var (
	ErrTooLarge = errors.New("audio exceeds upload limit")
	ErrEmpty    = errors.New("audio is empty")
)

// maxExtLength bounds the extension kept from a client-supplied filename.
const maxExtLength = 8

// Spool is a local temporary copy of an uploaded audio file.
// Close removes the file; callers defer it immediately after a successful
// NewSpool so the file is released on every path.
type Spool struct {
	path     string
	filename string
	size     int64
	closed   bool
}

// NewSpool copies at most limit bytes of src into a new file under dir
// (os.TempDir when empty). The temp file keeps filename's extension so the
// upstream can detect the audio format. On error nothing is left on disk.
func NewSpool(dir, filename string, src io.Reader, limit int64) (*Spool, error) {
	f, err := os.CreateTemp(dir, "upload-*"+safeExt(filename))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	s := &Spool{path: f.Name(), filename: filepath.Base(filename)}

	n, err := io.Copy(f, io.LimitReader(src, limit+1))
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}

	switch {
	case err != nil:
		_ = s.Close()
		return nil, fmt.Errorf("spool upload: %w", err)
	case n > limit:
		_ = s.Close()
		return nil, ErrTooLarge
	case n == 0:
		_ = s.Close()
		return nil, ErrEmpty
	}

	s.size = n
	return s, nil
}

// Open returns a new read handle positioned at the start of the audio.
// The caller closes it.
func (s *Spool) Open() (*os.File, error) {
	if s.closed {
		return nil, os.ErrClosed
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open spool: %w", err)
	}
	return f, nil
}

// Path returns the temp file location.
func (s *Spool) Path() string { return s.path }

// Filename returns the base name the client uploaded.
func (s *Spool) Filename() string { return s.filename }

// Ext returns the sanitized extension, including the dot, or "".
func (s *Spool) Ext() string { return filepath.Ext(s.path) }

// Size returns the number of bytes spooled.
func (s *Spool) Size() int64 { return s.size }

// Close removes the temp file. It is safe to call more than once.
func (s *Spool) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove spool: %w", err)
	}
	return nil
}

// safeExt returns a lower-cased alphanumeric extension from name, or "".
func safeExt(name string) string {
	ext := strings.ToLower(filepath.Ext(filepath.Base(name)))
	if len(ext) < 2 || len(ext) > maxExtLength {
		return ""
	}
	for _, c := range ext[1:] {
		if (c < 'a' || c > 'z') && (c < '0' || c > '9') {
			return ""
		}
	}
	return ext
}
