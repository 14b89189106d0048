package storage

import (
	"bytes"
	"context"
	"io"
	"path"

	"github.com/minio/minio-go/v7"

	"resumeKit/internal/export"
)

// Uploader 是 ObjectSink 依赖的最小存储接口，*Client 实现了它。
type Uploader interface {
	UploadFile(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error)
}

// ObjectSink 把导出产物写入对象存储，对象键为 Prefix/Key。
// Key 为空时使用产物文件名（去掉目录部分）。
type ObjectSink struct {
	Uploader Uploader
	Prefix   string
	Key      string
}

func (s ObjectSink) Save(ctx context.Context, a *export.Artifact) (string, error) {
	name := s.Key
	if name == "" {
		name = path.Base(a.Filename)
	}
	key := path.Join(s.Prefix, name)
	if _, err := s.Uploader.UploadFile(ctx, key, bytes.NewReader(a.Data), int64(len(a.Data)), a.ContentType); err != nil {
		return "", err
	}
	return key, nil
}
