package util

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalFiles allocates temp paths and does file I/O on the local
// filesystem. It satisfies simctl's path collaborator interface.
type LocalFiles struct{}

// TempPath returns a unique path in the OS temp directory without creating
// the file. The caller creates and deletes it.
func (LocalFiles) TempPath(prefix, suffix string) string {
	return filepath.Join(os.TempDir(), prefix+uuid.New().String()+suffix)
}

func (LocalFiles) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (LocalFiles) Remove(path string) error {
	return os.RemoveAll(path)
}
