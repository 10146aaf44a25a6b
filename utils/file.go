package utils

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalUploader writes images below Dir and serves them from URLPrefix. Used
// when no R2 bucket is configured.
type LocalUploader struct {
	Dir       string
	URLPrefix string
}

// NewLocalUploader creates the upload directory if it doesn't exist.
func NewLocalUploader(dir, urlPrefix string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalUploader{Dir: dir, URLPrefix: strings.TrimSuffix(urlPrefix, "/")}, nil
}

// Upload saves body at Dir/key.
func (u *LocalUploader) Upload(ctx context.Context, key string, body io.Reader, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	destPath, err := SafeJoin(u.Dir, key)
	if err != nil {
		return "", err
	}
	// ✅ Ensure the directory for the destination file exists
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return "", err
	}

	dst, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, body); err != nil {
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	return u.URLPrefix + "/" + filepath.ToSlash(key), nil
}

// SafeJoin joins root and rel, refusing paths that escape root.
func SafeJoin(root, rel string) (string, error) {
	path := filepath.Join(root, rel)
	// ✅ Security: prevent path traversal
	if !strings.HasPrefix(path, filepath.Clean(root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal file path: %s", rel)
	}
	return path, nil
}
