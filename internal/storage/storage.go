package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// ErrObjectTooLarge is returned by ReadAll when an object exceeds the caller's limit.
var ErrObjectTooLarge = errors.New("object exceeds size limit")

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known, -1 otherwise.
type PutObjectOptions struct {
	Size               int64
	ContentType        string
	ContentDisposition string
	Metadata           map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object store holding archived reports and uploaded MRI images.
// Implementations stream; nothing touches local disk.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration, filename string) (string, error)
}

// ReadAll loads a whole object into memory, refusing objects larger than max bytes.
func ReadAll(ctx context.Context, s Storage, key string, max int64) ([]byte, ObjectInfo, error) {
	rc, info, err := s.Get(ctx, key)
	if err != nil {
		return nil, ObjectInfo{}, fmt.Errorf("get %s: %w", key, err)
	}
	defer rc.Close()

	if max > 0 && info.Size > max {
		return nil, info, ErrObjectTooLarge
	}

	r := io.Reader(rc)
	if max > 0 {
		r = io.LimitReader(rc, max+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, info, fmt.Errorf("read %s: %w", key, err)
	}
	if max > 0 && int64(len(b)) > max {
		return nil, info, ErrObjectTooLarge
	}
	return b, info, nil
}
