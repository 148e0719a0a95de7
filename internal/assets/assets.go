package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// allowed image extensions, lower case.
var allowedExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// AllowedExt reports whether filename carries a supported image
// extension and returns it normalized to lower case.
func AllowedExt(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext, allowedExts[ext]
}

// Store keeps uploaded image bytes on disk under generated names.
// Files are write-once: a name is never reused and never overwritten.
type Store struct {
	dir string
}

func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the root directory, used for static file serving.
func (s *Store) Dir() string { return s.dir }

// Save stores the bytes from r under a freshly generated name built
// from the upload field name, the current time and a random suffix.
func (s *Store) Save(field, ext string, r io.Reader) (string, error) {
	if _, ok := allowedExts[ext]; !ok {
		return "", fmt.Errorf("unsupported extension %q", ext)
	}
	name := fmt.Sprintf("%s-%d-%s%s", field, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create asset %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write asset %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("flush asset %s: %w", name, err)
	}
	return name, nil
}

// Path resolves name to an absolute path inside the store, verifying
// the asset exists. Names with path separators are rejected.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("invalid asset name %q", name)
	}
	p := filepath.Join(s.dir, name)
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("asset %s: %w", name, err)
	}
	return p, nil
}

// Open returns a reader over the stored asset bytes.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	p, err := s.Path(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open asset %s: %w", name, err)
	}
	return f, nil
}
