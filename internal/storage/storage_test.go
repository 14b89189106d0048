package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumeKit/internal/export"
)

type fakeUploader struct {
	uploaded    map[string][]byte
	contentType string
	err         error
}

func (f *fakeUploader) UploadFile(_ context.Context, objectName string, reader io.Reader, size int64, contentType string) (*minio.UploadInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(reader)
	if int64(len(b)) != size {
		return nil, fmt.Errorf("size mismatch: %d != %d", len(b), size)
	}
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[objectName] = b
	f.contentType = contentType
	return &minio.UploadInfo{Key: objectName, Size: size}, nil
}

func TestObjectSinkSave(t *testing.T) {
	up := &fakeUploader{}
	art := &export.Artifact{Filename: "CV_2024-03-09.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.3")}

	key, err := ObjectSink{Uploader: up, Prefix: "exports/u1", Key: "j1.pdf"}.Save(context.Background(), art)
	require.NoError(t, err)
	assert.Equal(t, "exports/u1/j1.pdf", key)
	assert.Equal(t, art.Data, up.uploaded[key])
	assert.Equal(t, "application/pdf", up.contentType)

	key, err = ObjectSink{Uploader: up, Prefix: "exports"}.Save(context.Background(), art)
	require.NoError(t, err)
	assert.Equal(t, "exports/CV_2024-03-09.pdf", key)
}

func TestObjectSinkSaveError(t *testing.T) {
	up := &fakeUploader{err: errors.New("connection reset")}
	_, err := ObjectSink{Uploader: up}.Save(context.Background(), &export.Artifact{Filename: "a.pdf"})
	assert.EqualError(t, err, "connection reset")
}

func TestIsNoSuchKey(t *testing.T) {
	assert.False(t, IsNoSuchKey(nil))
	assert.True(t, IsNoSuchKey(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, IsNoSuchKey(fmt.Errorf("wrap: %w", minio.ErrorResponse{Code: "NotFound"})))
	assert.True(t, IsNoSuchKey(errors.New("The specified key does not exist.")))
	assert.False(t, IsNoSuchKey(errors.New("access denied")))
}
