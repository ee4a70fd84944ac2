package blob

import (
	"context"
	"fmt"
)

// Options bundles driver selection with backend settings.
type Options struct {
	Driver    Driver
	Root      string // filesystem root (fs driver)
	Bucket    string // s3 driver
	Region    string
	Endpoint  string
	PathStyle bool
}

// Open constructs a Store for the configured driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory:
		return NewMemoryStore(), nil
	case DriverFilesystem, "":
		return NewFilesystemStore(opts.Root)
	case DriverS3:
		return NewS3Store(ctx, S3Config{
			Region:    opts.Region,
			Bucket:    opts.Bucket,
			Endpoint:  opts.Endpoint,
			PathStyle: opts.PathStyle,
		})
	default:
		return nil, fmt.Errorf("blob: unknown driver %q", opts.Driver)
	}
}
