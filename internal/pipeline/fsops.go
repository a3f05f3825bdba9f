package pipeline

import (
	"fmt"
	"io"
	"os"
)

// FileOps is the file-system collaborator: existence checks, idempotent
// directory creation, and file moves.
type FileOps interface {
	IsFile(path string) bool
	Exists(path string) bool
	MkdirAll(path string) error
	Move(src, dst string) error
}

type osFileOps struct{}

func (osFileOps) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func (osFileOps) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFileOps) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

// Move renames, falling back to copy+remove when the rename fails (e.g.
// destination on another filesystem).
func (osFileOps) Move(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := copyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
