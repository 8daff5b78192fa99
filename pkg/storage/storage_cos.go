package storage

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/tencentyun/cos-go-sdk-v5"
)

type COSStorage struct {
	Client *cos.Client
	s      *Storage
}

func newCOS(s *Storage) (*COSStorage, error) {
	// 解析 Endpoint，腾讯云 COS 需要 bucket URL
	u, err := url.Parse(s.Endpoint)
	if err != nil {
		return nil, err
	}

	// 如果 Endpoint 不包含 bucket，则添加
	if s.Bucket != "" && u.Host != "" {
		u, _ = url.Parse("https://" + s.Bucket + "." + u.Host)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Transport: &cos.AuthorizationTransport{
			SecretID:  s.AccessKey,
			SecretKey: s.SecretKey,
		},
	})
	return &COSStorage{Client: client, s: s}, nil
}

func (c *COSStorage) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	fullPath := getFullPath(c.s.BasePath, name)
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType: contentType,
		},
	}
	if _, err := c.Client.Object.Put(ctx, fullPath, r, opt); err != nil {
		return "", err
	}
	return fullPath, nil
}

func (c *COSStorage) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := c.Client.Object.Get(ctx, key, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (c *COSStorage) Delete(ctx context.Context, key string) error {
	_, err := c.Client.Object.Delete(ctx, key)
	return err
}
