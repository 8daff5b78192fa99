package storage

import (
	"context"
	"io"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// OSSStorage 阿里云 OSS，SDK 不接受 context
type OSSStorage struct {
	Client *oss.Client
	Bucket *oss.Bucket
	s      *Storage
}

func newOSS(s *Storage) (*OSSStorage, error) {
	client, err := oss.New(s.Endpoint, s.AccessKey, s.SecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(s.Bucket)
	if err != nil {
		return nil, err
	}
	return &OSSStorage{Client: client, Bucket: bucket, s: s}, nil
}

func (o *OSSStorage) Put(_ context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	fullPath := getFullPath(o.s.BasePath, name)
	if err := o.Bucket.PutObject(fullPath, r, oss.ContentType(contentType)); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (o *OSSStorage) Get(_ context.Context, key string) ([]byte, error) {
	body, err := o.Bucket.GetObject(key)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (o *OSSStorage) Delete(_ context.Context, key string) error {
	return o.Bucket.DeleteObject(key)
}
