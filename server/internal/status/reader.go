package status

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Reader reads a single status file. It holds no state besides the path and
// is safe for concurrent use.
type Reader struct {
	path string
}

// NewReader returns a Reader for path.
func NewReader(path string) *Reader {
	return &Reader{path: path}
}

// Path returns the watched file path.
func (r *Reader) Path() string { return r.path }

// Read returns the trimmed file content.
func (r *Reader) Read() (string, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return "", fmt.Errorf("status: read %q: %w", r.path, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// ModTime returns the file's modification time.
func (r *Reader) ModTime() (time.Time, error) {
	fi, err := os.Stat(r.path)
	if err != nil {
		return time.Time{}, fmt.Errorf("status: stat %q: %w", r.path, err)
	}
	return fi.ModTime(), nil
}
