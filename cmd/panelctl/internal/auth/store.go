package auth

import (
	"context"
	"fmt"

	"github.com/minestax-uz/web/pkg/sdk"
)

// StoreOptions selects and configures a credential store backend.
type StoreOptions struct {
	Backend string
	// Dir holds the credentials file of the file backend.
	Dir   string
	Redis RedisOptions
}

// OpenStore returns the credential store for the configured backend.
func OpenStore(ctx context.Context, opts StoreOptions) (sdk.CredentialStore, error) {
	switch opts.Backend {
	case "", "file":
		return NewFileStore(opts.Dir)
	case "redis":
		return NewRedisStore(ctx, opts.Redis)
	default:
		return nil, fmt.Errorf("unknown credential store backend %q", opts.Backend)
	}
}
