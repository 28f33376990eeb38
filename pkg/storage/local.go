package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultLocalRoot = "./media"
	dirPerm          = 0o755
	filePerm         = 0o644
)

// LocalConfig holds configuration for filesystem storage.
type LocalConfig struct {
	BasePath  string `mapstructure:"base_path"`
	URLPrefix string `mapstructure:"url_prefix"` // served by the router, e.g. "/media"
}

// LocalStorage keeps images in a directory the HTTP server exposes as static files.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(cfg LocalConfig) (*LocalStorage, error) {
	root := cfg.BasePath
	if root == "" {
		root = defaultLocalRoot
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStorage{root: root, urlPrefix: strings.TrimRight(cfg.URLPrefix, "/")}, nil
}

// BasePath returns the absolute directory files live under.
func (s *LocalStorage) BasePath() string {
	return s.root
}

// resolve maps key to a file under root. Leading ".." segments are
// dropped so a key can never point outside the root.
func (s *LocalStorage) resolve(key string) (string, string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if clean == "" || strings.HasSuffix(key, "/") {
		return "", "", fmt.Errorf("invalid object key %q", key)
	}
	return clean, filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func (s *LocalStorage) Write(ctx context.Context, key string, r io.Reader, size int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, file, err := s.resolve(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	n, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		return fmt.Errorf("write %s: %w", key, copyErr)
	case closeErr != nil:
		return fmt.Errorf("write %s: %w", key, closeErr)
	case size >= 0 && n != size:
		return fmt.Errorf("write %s: got %d bytes, expected %d", key, n, size)
	}

	if err := os.Chmod(tmp.Name(), filePerm); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), file); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	committed = true
	return nil
}

func (s *LocalStorage) Read(_ context.Context, key string) (io.ReadCloser, error) {
	_, file, err := s.resolve(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(file)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	return f, nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	_, file, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Exists(_ context.Context, key string) (bool, error) {
	_, file, err := s.resolve(key)
	if err != nil {
		return false, err
	}
	info, err := os.Stat(file)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return !info.IsDir(), nil
}

// GetURL returns the static path for key. Local files never expire.
func (s *LocalStorage) GetURL(ctx context.Context, key string, _ time.Duration) (string, error) {
	clean, _, err := s.resolve(key)
	if err != nil {
		return "", err
	}
	ok, err := s.Exists(ctx, clean)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrObjectNotFound
	}
	return s.urlPrefix + "/" + clean, nil
}

var _ Storage = (*LocalStorage)(nil)
