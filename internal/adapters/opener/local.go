package opener

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"catalog_sync/internal/ports"

	"github.com/rs/zerolog"
)

type LocalOpener struct {
	Log zerolog.Logger
}

func NewLocalOpener(log zerolog.Logger) *LocalOpener {
	return &LocalOpener{Log: log.With().Str("component", "opener.local").Logger()}
}

func (l *LocalOpener) Open(ctx context.Context, filePath string) (io.ReadCloser, ports.Meta, error) {
	if err := ctx.Err(); err != nil {
		return nil, ports.Meta{}, err
	}
	l.Log.Debug().Str("path", filePath).Msg("[OPENER][FILE][START]")
	f, err := os.Open(filePath)
	if err != nil {
		return nil, ports.Meta{}, fmt.Errorf("open %s: %w", filePath, err)
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, ports.Meta{}, fmt.Errorf("stat %s: %w", filePath, err)
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, ports.Meta{}, fmt.Errorf("open %s: is a directory", filePath)
	}
	return f, ports.Meta{
		Source:      "file",
		ContentType: mime.TypeByExtension(filepath.Ext(filePath)),
		Size:        st.Size(),
		Key:         filePath,
	}, nil
}
