// Package storage keeps mail photos in a bucket and hands back public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// PhotoStore persists uploaded photos.
type PhotoStore interface {
	// Put stores the object and returns its public URL.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	// Delete removes the object behind a URL returned by Put. URLs the store
	// did not issue are ignored.
	Delete(ctx context.Context, publicURL string) error
}

// ObjectName returns the stored name for an uploaded file:
// "<unix-ms>-<seq>-<base>". seq is the file's position within one upload so
// photos sharing a filename and a timestamp do not collide.
func ObjectName(at time.Time, seq int, filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '?' || r == '#' || r < 0x20:
			return '_'
		}
		return r
	}, base)
	if base == "." || base == "" {
		base = "photo"
	}
	return fmt.Sprintf("%d-%d-%s", at.UnixMilli(), seq, base)
}

// urlPrefix joins the public base and bucket into the prefix every issued URL starts with.
func urlPrefix(baseURL, bucket string) string {
	p := strings.TrimRight(baseURL, "/") + "/"
	if bucket != "" {
		p += bucket + "/"
	}
	return p
}

func objectFromURL(prefix, publicURL string) (string, bool) {
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(publicURL, prefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return unescape(name), true
}
