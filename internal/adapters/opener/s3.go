package opener

import (
	"context"
	"fmt"
	"io"

	"catalog_sync/internal/ports"

	"github.com/minio/minio-go/v7"
	"github.com/rs/zerolog"
)

type S3Client interface {
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (*minio.Object, error)
}

type S3Opener struct {
	Client S3Client
	Log    zerolog.Logger
}

func NewS3Opener(cli S3Client, log zerolog.Logger) *S3Opener {
	return &S3Opener{Client: cli, Log: log.With().Str("component", "opener.s3").Logger()}
}

func (s *S3Opener) Open(ctx context.Context, bucket, key string) (io.ReadCloser, ports.Meta, error) {
	s.Log.Debug().Str("bucket", bucket).Str("key", key).Msg("[OPENER][S3][START]")
	st, err := s.Client.StatObject(ctx, bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, ports.Meta{}, fmt.Errorf("s3 stat: %w", err)
	}
	obj, err := s.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ports.Meta{}, fmt.Errorf("s3 get: %w", err)
	}
	s.Log.Debug().Str("content_type", st.ContentType).Int64("size", st.Size).Str("etag", st.ETag).Msg("[OPENER][S3][OK]")
	return obj, ports.Meta{
		Source:      "s3",
		ContentType: st.ContentType,
		Size:        st.Size,
		Bucket:      bucket,
		Key:         key,
	}, nil
}
