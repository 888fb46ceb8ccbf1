package cli

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/aretw0/formstate/pkg/adapters/file"
	"github.com/aretw0/formstate/pkg/adapters/memory"
	"github.com/aretw0/formstate/pkg/adapters/redis"
	"github.com/aretw0/formstate/pkg/adapters/sqlite"
	"github.com/aretw0/formstate/pkg/persistence/middleware"
	"github.com/aretw0/formstate/pkg/ports"
)

// Store kinds accepted by --store.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// ErrUnknownStore is returned for an unsupported --store value.
var ErrUnknownStore = errors.New("unknown store")

// StoreOptions describes the session backend selected on the command line.
type StoreOptions struct {
	Kind string
	// Path is the directory of the file store or the database file of the SQLite store.
	Path string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
	RedisTTL      time.Duration

	// EncryptionKey enables AES-256-GCM at rest (hex or base64, 32 bytes).
	EncryptionKey string
	// MaskFields lists regular expressions of field keys masked before saving.
	MaskFields []string
}

// Backend bundles an opened store with the locker that goes with it.
type Backend struct {
	Store  ports.StateStore
	Locker ports.DistributedLocker

	closers []func() error
}

// Close releases the backend connections.
func (b *Backend) Close() error {
	var errs []error
	for _, c := range b.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// OpenBackend creates the store described by opts, wraps it with the
// requested middlewares and checks connectivity where the backend supports it.
func OpenBackend(ctx context.Context, opts StoreOptions) (*Backend, error) {
	b := &Backend{}

	switch strings.ToLower(opts.Kind) {
	case StoreMemory:
		b.Store = memory.NewStore()
	case StoreFile, "":
		b.Store = file.New(opts.Path)
	case StoreSQLite:
		path := opts.Path
		if path == "" {
			path = ".formstate/sessions.db"
		}
		s, err := sqlite.New(path)
		if err != nil {
			return nil, err
		}
		b.Store = s
		b.closers = append(b.closers, s.Close)
	case StoreRedis:
		var redisOpts []redis.Option
		if opts.RedisPrefix != "" {
			redisOpts = append(redisOpts, redis.WithPrefix(opts.RedisPrefix))
		}
		if opts.RedisTTL > 0 {
			redisOpts = append(redisOpts, redis.WithTTL(opts.RedisTTL))
		}
		s := redis.New(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, redisOpts...)
		if err := s.Ping(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.RedisAddr, err)
		}
		b.Store = s
		b.Locker = redis.NewLocker(s.Client(), s.Prefix())
		b.closers = append(b.closers, s.Close)
	default:
		return nil, fmt.Errorf("%w %q (want memory, file, sqlite or redis)", ErrUnknownStore, opts.Kind)
	}

	var mws []middleware.Middleware
	if len(opts.MaskFields) > 0 {
		for _, pattern := range opts.MaskFields {
			if _, err := regexp.Compile(pattern); err != nil {
				_ = b.Close()
				return nil, fmt.Errorf("invalid mask pattern %q: %w", pattern, err)
			}
		}
		mws = append(mws, middleware.NewPIIMiddleware(opts.MaskFields))
	}
	if opts.EncryptionKey != "" {
		key, err := ParseKey(opts.EncryptionKey)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	b.Store = middleware.Chain(b.Store, mws...)

	return b, nil
}

// ParseKey decodes a 32-byte AES key given as hex or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if key, err := hex.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	if key, err := base64.StdEncoding.DecodeString(s); err == nil && len(key) == 32 {
		return key, nil
	}
	return nil, errors.New("encryption key must be 32 bytes, hex or base64 encoded")
}
