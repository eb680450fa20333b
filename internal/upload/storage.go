package upload

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrBadFileType = errors.New("unsupported file type")

var allowedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// Storage writes uploaded images under Dir and hands back the relative
// path that gets persisted on the owning record.
type Storage struct {
	Dir string
}

// Save streams src into <Dir>/<subdir>/<uuid><ext> and returns the
// relative path. The original filename only contributes its extension.
func (s *Storage) Save(subdir, filename string, src io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExt[ext] {
		return "", ErrBadFileType
	}
	if err := os.MkdirAll(filepath.Join(s.Dir, subdir), 0o755); err != nil {
		return "", err
	}
	rel := filepath.ToSlash(filepath.Join(subdir, uuid.NewString()+ext))
	dst, err := os.Create(filepath.Join(s.Dir, filepath.FromSlash(rel)))
	if err != nil {
		return "", err
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(dst.Name())
		return "", err
	}
	return rel, nil
}

// Remove deletes a previously saved file. Used when the record the file
// belongs to cannot be persisted.
func (s *Storage) Remove(rel string) {
	_ = os.Remove(filepath.Join(s.Dir, filepath.FromSlash(rel)))
}
