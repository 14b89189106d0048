package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DirSink 把导出文件保存到本地目录。先写临时文件再重命名，
// 失败时不会留下不完整的文件；同名文件直接覆盖。
type DirSink struct {
	Dir string
}

func (s DirSink) Save(_ context.Context, a *Artifact) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.Dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }

	if _, err := tmp.Write(a.Data); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("write %s: %w", a.Filename, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return "", fmt.Errorf("sync %s: %w", a.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", fmt.Errorf("close %s: %w", a.Filename, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		cleanup()
		return "", fmt.Errorf("chmod %s: %w", a.Filename, err)
	}
	target := filepath.Join(s.Dir, filepath.Base(a.Filename))
	if err := os.Rename(tmp.Name(), target); err != nil {
		cleanup()
		return "", fmt.Errorf("rename %s: %w", a.Filename, err)
	}
	return target, nil
}
