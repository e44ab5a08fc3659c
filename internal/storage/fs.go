package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
)

// FSStore writes photos to a local directory. The HTTP server serves the
// directory under the public base URL.
type FSStore struct {
	root   string
	prefix string
}

func NewFSStore(root, publicBaseURL string) (*FSStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create photo dir: %w", err)
	}
	return &FSStore{root: root, prefix: urlPrefix(publicBaseURL, "")}, nil
}

func (s *FSStore) Root() string { return s.root }

func (s *FSStore) Put(ctx context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p := filepath.Join(s.root, filepath.Base(name))
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(p)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(p)
		return "", err
	}
	return s.prefix + url.PathEscape(filepath.Base(name)), nil
}

func (s *FSStore) Delete(ctx context.Context, publicURL string) error {
	name, ok := objectFromURL(s.prefix, publicURL)
	if !ok {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, filepath.Base(name)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func unescape(name string) string {
	if u, err := url.PathUnescape(name); err == nil {
		return u
	}
	return name
}
