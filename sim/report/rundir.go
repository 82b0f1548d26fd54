package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const runDirPrefix = "model_"

// CreateRunDir creates base/model_<n>, n being one past the highest existing
// index (1 for an empty base), and returns its path. base is created if
// missing. Entries that are not model_<int> directories are ignored.
func CreateRunDir(base string) (string, error) {
	if err := os.MkdirAll(base, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", base, err)
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", fmt.Errorf("listing %s: %w", base, err)
	}
	versions := lo.FilterMap(entries, func(e os.DirEntry, _ int) (int, bool) {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), runDirPrefix) {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimPrefix(e.Name(), runDirPrefix))
		return n, err == nil
	})
	next := 1
	if len(versions) > 0 {
		next = lo.Max(versions) + 1
	}
	dir := filepath.Join(base, runDirPrefix+strconv.Itoa(next))
	if err := os.Mkdir(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating run directory: %w", err)
	}
	return dir, nil
}

// CopyFile copies src into dir under its base name.
func CopyFile(src, dir string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	dst := filepath.Join(dir, filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}
