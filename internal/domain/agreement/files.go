package agreement

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Files stores one PDF per employee, named <username>.pdf, directly under Dir.
type Files struct {
	Dir string
}

func NewFiles(dir string) *Files {
	return &Files{Dir: dir}
}

// PathFor returns the absolute target path for username.
func (f *Files) PathFor(username string) (string, error) {
	return filepath.Abs(filepath.Join(f.Dir, username+".pdf"))
}

// Replace writes src to the username's slot, deleting any previous file
// first, and returns the absolute path written.
func (f *Files) Replace(username string, src io.Reader) (string, error) {
	target, err := f.PathFor(username)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create agreement directory: %w", err)
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("remove previous agreement: %w", err)
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o640)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		return "", fmt.Errorf("write agreement: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return target, nil
}

func (f *Files) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Remove deletes path; a file that is already gone is not an error.
func (f *Files) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
