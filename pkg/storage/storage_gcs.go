package storage

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSStorage struct {
	Client *storage.Client
	Bucket *storage.BucketHandle
	s      *Storage
}

func newGCS(s *Storage) (*GCSStorage, error) {
	var opts []option.ClientOption

	// 如果提供了 AccessKey，将其作为 credentials JSON 文件路径
	if s.AccessKey != "" {
		opts = append(opts, option.WithCredentialsFile(s.AccessKey))
	}
	if s.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.Endpoint))
	}

	client, err := storage.NewClient(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return &GCSStorage{Client: client, Bucket: client.Bucket(s.Bucket), s: s}, nil
}

func (g *GCSStorage) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	fullPath := getFullPath(g.s.BasePath, name)
	writer := g.Bucket.Object(fullPath).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, r); err != nil {
		_ = writer.Close()
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (g *GCSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	reader, err := g.Bucket.Object(key).NewReader(ctx)
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func (g *GCSStorage) Delete(ctx context.Context, key string) error {
	return g.Bucket.Object(key).Delete(ctx)
}
