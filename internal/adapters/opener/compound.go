package opener

import (
	"context"
	"errors"
	"io"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"catalog_sync/internal/ports"
)

// CompoundOpener routes a location to the opener for its scheme.
// Locations without a scheme are local paths.
type CompoundOpener struct {
	Local *LocalOpener
	HTTP  *HTTPOpener
	S3    *S3Opener
}

func NewCompoundOpener(local *LocalOpener, httpOp *HTTPOpener, s3Op *S3Opener) *CompoundOpener {
	return &CompoundOpener{Local: local, HTTP: httpOp, S3: s3Op}
}

func (c *CompoundOpener) Open(ctx context.Context, filePath string) (io.ReadCloser, ports.Meta, error) {
	fp := strings.TrimSpace(filePath)

	switch {
	case strings.HasPrefix(fp, "http://") || strings.HasPrefix(fp, "https://"):
		if c.HTTP == nil {
			return nil, ports.Meta{}, errors.New("http opener not configured")
		}
		return c.HTTP.Open(ctx, fp)

	case strings.HasPrefix(fp, "s3://"):
		if c.S3 == nil {
			return nil, ports.Meta{}, errors.New("s3 opener not configured")
		}
		bkt, key, err := parseS3URL(fp)
		if err != nil {
			return nil, ports.Meta{}, err
		}
		return c.S3.Open(ctx, bkt, key)

	default:
		if c.Local == nil {
			return nil, ports.Meta{}, errors.New("local opener not configured")
		}
		return c.Local.Open(ctx, fp)
	}
}

// Join appends name to a base location, keeping URL bases as URLs.
func Join(base, name string) string {
	b := strings.TrimSpace(base)
	if strings.Contains(b, "://") {
		return strings.TrimRight(b, "/") + "/" + strings.TrimLeft(name, "/")
	}
	if b == "" {
		b = "."
	}
	return filepath.Join(b, name)
}

func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", err
	}
	if u.Scheme != "s3" {
		return "", "", errors.New("scheme must be s3")
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	key = path.Clean(key)
	if bucket == "" || key == "" || key == "." || key == "/" {
		return "", "", errors.New("empty bucket or key")
	}
	return bucket, key, nil
}
