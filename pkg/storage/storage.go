package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/wire"
)

// ProviderSet 提供存储相关的依赖
var ProviderSet = wire.NewSet(ProvideStorage)

// 存储类型常量
const (
	StorageNone  = "none"
	StorageMinio = "minio"
	StorageS3    = "s3"
	StorageOSS   = "oss"
	StorageGCS   = "gcs"
	StorageCOS   = "cos"
)

// ErrStorageDisabled 未配置对象存储
var ErrStorageDisabled = errors.New("object storage is not configured")

// Provider stores step media objects.
type Provider interface {
	// Put uploads r under name and returns the full object key.
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Storage 存储配置结构
type Storage struct {
	Provider  string `mapstructure:"provider"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	Endpoint  string `mapstructure:"endpoint"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	UseTLS    bool   `mapstructure:"useTLS"`
	BasePath  string `mapstructure:"basePath"`
	// PublicURL 对象的公开访问前缀，为空时通过 API 的 /media 路由读取
	PublicURL string `mapstructure:"publicURL"`
}

func (s *Storage) SetDefaults() {
	if s.Provider == "" {
		s.Provider = StorageNone
	}
	if s.BasePath == "" {
		s.BasePath = "step-media"
	}
}

// ProvideStorage 根据配置创建存储提供者
func ProvideStorage(s Storage) (Provider, error) {
	return NewStorage(&s)
}

// NewStorage 根据配置创建存储提供者实例
func NewStorage(s *Storage) (Provider, error) {
	s.SetDefaults()
	switch s.Provider {
	case StorageNone:
		return None{}, nil
	case StorageMinio:
		return newMinio(s)
	case StorageS3:
		return newS3(s)
	case StorageOSS:
		return newOSS(s)
	case StorageGCS:
		return newGCS(s)
	case StorageCOS:
		return newCOS(s)
	default:
		return nil, fmt.Errorf("unsupported storage provider: %s", s.Provider)
	}
}

// ObjectURL returns the URL a client uses to fetch key.
func (s *Storage) ObjectURL(key string) string {
	if s.PublicURL != "" {
		return strings.TrimRight(s.PublicURL, "/") + "/" + key
	}
	return "/api/v1/media/" + key
}

// KeyFromURL reverses ObjectURL. ok is false for URLs that were not issued
// by this storage.
func (s *Storage) KeyFromURL(url string) (string, bool) {
	prefix := "/api/v1/media/"
	if s.PublicURL != "" {
		prefix = strings.TrimRight(s.PublicURL, "/") + "/"
	}
	key, ok := strings.CutPrefix(url, prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// getFullPath 拼接 basePath 与对象名
func getFullPath(basePath, objectName string) string {
	objectName = strings.TrimLeft(objectName, "/")
	if basePath == "" {
		return objectName
	}
	return path.Join(basePath, objectName)
}

// None is used when no object storage is configured. Deletes succeed so
// detaching media that lives elsewhere still works.
type None struct{}

func (None) Put(context.Context, string, io.Reader, int64, string) (string, error) {
	return "", ErrStorageDisabled
}

func (None) Get(context.Context, string) ([]byte, error) {
	return nil, ErrStorageDisabled
}

func (None) Delete(context.Context, string) error { return nil }
