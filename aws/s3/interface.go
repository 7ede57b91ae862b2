//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package s3

import (
	"context"
	"errors"
	"io"
)

var ErrKeyNotFound = errors.New("key not found")

// Object is a single entry returned by List.
type Object struct {
	Key  string
	Size int64
}

// IsDirMarker reports whether the object is a zero byte "folder" placeholder.
func (o Object) IsDirMarker() bool {
	return len(o.Key) > 0 && o.Key[len(o.Key)-1] == '/'
}

type Client interface {
	Lister
	Getter
	Opener
	Tagger
}

type Lister interface {
	// List returns every object under prefix, in the order S3 lists them, across all pages.
	List(ctx context.Context, bucket, prefix string) (objects []Object, err error)
}

type Getter interface {
	// Get returns ErrKeyNotFound if the given key doesn't exist.
	Get(ctx context.Context, bucket, key string) (data []byte, err error)
}

// Opener streams an object so callers can stop reading early.
type Opener interface {
	// Open returns ErrKeyNotFound if the given key doesn't exist.
	Open(ctx context.Context, bucket, key string) (body io.ReadCloser, err error)
}

type Tagger interface {
	// Tag sets tagKey=tagValue on the object, keeping any other tags it already carries.
	Tag(ctx context.Context, bucket, key, tagKey, tagValue string) error
}
