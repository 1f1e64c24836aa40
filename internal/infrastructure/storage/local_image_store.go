package storage

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"emergencyreport/internal/domain/service"
)

// LocalImageStore writes pictures into a directory that the API serves
// under URLPrefix.
type LocalImageStore struct {
	dir       string
	urlPrefix string
}

func NewLocalImageStore(dir, urlPrefix string) *LocalImageStore {
	return &LocalImageStore{
		dir:       dir,
		urlPrefix: strings.TrimSuffix(urlPrefix, "/"),
	}
}

var _ service.ImageStore = (*LocalImageStore)(nil)

func (s *LocalImageStore) Dir() string {
	return s.dir
}

func (s *LocalImageStore) Store(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	name = filepath.Base(name)
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	return path.Join(s.urlPrefix, name), nil
}

func (s *LocalImageStore) Remove(ctx context.Context, ref string) error {
	if !strings.HasPrefix(ref, s.urlPrefix+"/") {
		return fmt.Errorf("image reference %q is not served from %s", ref, s.urlPrefix)
	}
	name := filepath.Base(strings.TrimPrefix(ref, s.urlPrefix+"/"))
	return os.Remove(filepath.Join(s.dir, name))
}
