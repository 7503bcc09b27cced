package writeback

import (
	"fmt"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
)

// WriteFile replaces the content of name on fs. The write is atomic: content
// is written to a temp file in the same directory first, then renamed.
func WriteFile(fs billy.Filesystem, name string, content []byte) error {
	dir := path.Dir(name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", dir, err)
	}
	tmp, err := fs.TempFile(dir, ".fxom-save-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	// Preserve original file permissions
	if info, err := fs.Stat(name); err == nil {
		if ch, ok := fs.(billy.Change); ok {
			_ = ch.Chmod(tmpName, info.Mode()) // best-effort permission sync
		}
	} else if !os.IsNotExist(err) {
		_ = fs.Remove(tmpName)
		return fmt.Errorf("stat %s: %w", name, err)
	}

	if err := fs.Rename(tmpName, name); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
