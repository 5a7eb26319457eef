package storage

import (
	"context"
	"fmt"
)

// New picks a backend by its type name
func New(ctx context.Context, typ, localDir string, s3Cfg S3Config) (Blobs, error) {
	switch typ {
	case TypeLocal:
		return NewLocal(localDir)
	case TypeS3:
		return NewS3(ctx, s3Cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", typ)
	}
}
