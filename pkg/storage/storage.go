// Package storage saves uploaded images. Every backend returns the same
// stored path, static/images/<filename>, so records do not depend on where
// the bytes live.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PathPrefix 저장 경로 접두사
const PathPrefix = "static/images"

var ErrInvalidName = errors.New("invalid file name")

// Storage stores an uploaded file and returns its stored path
type Storage interface {
	Save(ctx context.Context, filename string, body io.Reader, contentType string, size int64) (string, error)
}

// CleanName strips directories from an uploaded file name
func CleanName(filename string) (string, error) {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == ".." || name == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, filename)
	}
	return name, nil
}

// StoredPath returns static/images/<name>
func StoredPath(name string) string {
	return path.Join(PathPrefix, name)
}

// LocalStorage writes files into a directory served by the API
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates the directory if needed
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

// Dir returns the upload directory
func (l *LocalStorage) Dir() string {
	return l.dir
}

// Save writes body to <dir>/<filename>. An existing file with the same name is replaced.
func (l *LocalStorage) Save(_ context.Context, filename string, body io.Reader, _ string, _ int64) (string, error) {
	name, err := CleanName(filename)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(l.dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	_, err = io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		// 잘린 파일이 정적 경로로 서빙되지 않도록 삭제
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	return StoredPath(name), nil
}

// Supported drivers
const (
	DriverLocal = "local"
	DriverS3    = "s3"
)

// New returns the storage backend for driver; "" means local.
func New(driver, localDir string, s3cfg S3Config) (Storage, error) {
	switch driver {
	case DriverLocal, "":
		return NewLocalStorage(localDir)
	case DriverS3:
		return NewS3Client(s3cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
