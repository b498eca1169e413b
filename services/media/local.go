// Package mediasvc implements core.MediaStorage on local disk and Backblaze B2.
package mediasvc

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
)

var ErrInvalidKey = errors.New("invalid media key")

// LocalStorage writes files under Dir; they are served from BaseURL.
type LocalStorage struct {
	Dir     string
	BaseURL string
}

var _ core.MediaStorage = (*LocalStorage)(nil)

func NewLocalStorage(dir, baseURL string) *LocalStorage {
	return &LocalStorage{Dir: dir, BaseURL: strings.TrimSuffix(baseURL, "/")}
}

// cleanKey rejects keys escaping the storage root.
func cleanKey(key string) (string, error) {
	key = path.Clean("/" + strings.TrimSpace(key))[1:]
	if key == "" || key == "." {
		return "", ErrInvalidKey
	}
	return key, nil
}

func (s *LocalStorage) Put(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err = ctx.Err(); err != nil {
		return "", err
	}

	fp := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err = os.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return "", errors.Wrap(err, "creating media dir")
	}
	f, err := os.Create(fp)
	if err != nil {
		return "", errors.Wrap(err, "creating media file")
	}
	if _, err = io.Copy(f, r); err != nil {
		_ = f.Close()
		return "", errors.Wrap(err, "writing media file")
	}
	if err = f.Close(); err != nil {
		return "", errors.Wrap(err, "closing media file")
	}
	return s.BaseURL + "/" + key, nil
}
