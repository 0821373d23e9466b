// Package tempfile provides scoped temp-file acquisition with guaranteed
// release on every exit path, including cancellation, per spec §8's
// testable property "no leaked temp files" and §5's cancellation contract.
package tempfile

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Scope owns zero or more temp files for the lifetime of one pipeline
// request. Close removes every file it created, regardless of how the
// request ended.
type Scope struct {
	dir   string
	files []string
}

func NewScope(dir string) (*Scope, error) {
	if dir == "" {
		dir = os.TempDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Scope{dir: dir}, nil
}

// Create allocates a new uniquely-named file under the scope's directory
// and writes data to it, tracking it for removal on Close.
func (s *Scope) Create(ctx context.Context, prefix string, data []byte) (string, error) {
	name := filepath.Join(s.dir, prefix+"-"+uuid.NewString())
	if err := os.WriteFile(name, data, 0o644); err != nil {
		return "", err
	}
	s.files = append(s.files, name)

	if ctx.Err() != nil {
		s.Close()
		return "", ctx.Err()
	}
	return name, nil
}

// Close removes every file this scope created. Safe to call multiple times.
func (s *Scope) Close() {
	for _, f := range s.files {
		_ = os.Remove(f)
	}
	s.files = nil
}
