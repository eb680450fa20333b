package upload

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesUnderSubdir(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}

	rel, err := s.Save("slips", "receipt.JPG", strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "slips/"), "got %q", rel)
	assert.True(t, strings.HasSuffix(rel, ".jpg"), "extension lowercased, got %q", rel)
	assert.NotContains(t, rel, "receipt", "original filename must not leak into the stored path")

	b, err := os.ReadFile(filepath.Join(s.Dir, filepath.FromSlash(rel)))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(b))
}

func TestSaveUniqueNames(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}

	a, err := s.Save("slips", "same.png", strings.NewReader("a"))
	require.NoError(t, err)
	b, err := s.Save("slips", "same.png", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRemoveDeletesStoredFile(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}

	rel, err := s.Save("slips", "receipt.png", strings.NewReader("x"))
	require.NoError(t, err)

	s.Remove(rel)
	_, err = os.Stat(filepath.Join(s.Dir, filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
}

func TestSaveRejectsUnknownExtension(t *testing.T) {
	s := &Storage{Dir: t.TempDir()}

	for _, name := range []string{"malware.exe", "doc.pdf", "noext", "archive.tar.gz"} {
		_, err := s.Save("slips", name, strings.NewReader("x"))
		assert.ErrorIs(t, err, ErrBadFileType, name)
	}
}
