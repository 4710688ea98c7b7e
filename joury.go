// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package joury is the client SDK for the Joury journaling backend: session
management, a typed API client, and a two-tier cache, assembled behind one
constructor.

Usage:

	client, err := joury.New(ctx)
	if err != nil {
	    log.Fatal(err)
	}
	defer client.Close()

	if err := client.Bootstrap(ctx); err != nil {
	    log.Fatal(err)
	}

	user, err := client.Session.SignInAsGuest(ctx)

Architecture:

  - Explicit wiring: [New] is the only composition root. Every component is
    constructed here and handed its dependencies; there are no package-level
    singletons and no hidden cross-component calls.
  - Ports closed here: the API client's token source and auth-expiry
    notifier are both bound to the session manager, in this function,
    visibly.
  - Configuration via environment (JOURY_* variables, optional .env file).
*/
package joury

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/joury-go/internal/api"
	"github.com/taibuivan/joury-go/internal/auth"
	"github.com/taibuivan/joury-go/internal/cache"
	"github.com/taibuivan/joury-go/internal/journal"
	"github.com/taibuivan/joury-go/internal/platform/config"
	"github.com/taibuivan/joury-go/internal/tokenstore"
)

// Client is the assembled SDK. Every subsystem is an exported field: the
// embedding application composes against exactly what it needs.
type Client struct {
	// Config is the loaded environment configuration, read-only.
	Config *config.Config
	// Log is the SDK-wide structured logger.
	Log *slog.Logger
	// Tokens is the credential store.
	Tokens tokenstore.Store
	// Cache is the two-tier response cache.
	Cache *cache.Cache
	// API is the typed HTTP client, auth ports already bound.
	API *api.Client
	// Session is the session manager.
	Session *auth.Manager
	// Journal is the cached journal service.
	Journal *journal.Service

	redis *redis.Client
}

// # Options

type options struct {
	logger   *slog.Logger
	tokens   tokenstore.Store
	provider auth.IdentityProvider
	supplier auth.CodeSupplier
}

// Option customizes [New].
type Option func(*options)

// WithLogger replaces the default JSON logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithTokenStore replaces the default file-backed credential store.
func WithTokenStore(store tokenstore.Store) Option {
	return func(o *options) { o.tokens = store }
}

// WithIdentityProvider replaces the Google provider entirely.
func WithIdentityProvider(provider auth.IdentityProvider) Option {
	return func(o *options) { o.provider = provider }
}

// WithGoogleCodeSupplier supplies the out-of-band leg of the Google OAuth
// flow. Without it (and without [WithIdentityProvider]) only guest sign-in
// is available.
func WithGoogleCodeSupplier(supplier auth.CodeSupplier) Option {
	return func(o *options) { o.supplier = supplier }
}

// # Construction

/*
New assembles the SDK from environment configuration.

Description: Loads configuration, then builds and wires every subsystem:
structured logger, file-backed token store, disk- or Redis-backed cache
(Redis when JOURY_REDIS_URL is set), API client, optional Google identity
provider, and the session manager. The API client's auth ports are bound to
the manager before the client is returned, so the first request already
carries the session's token.

Parameters:
  - ctx: context.Context, used for Redis connection verification and OIDC
    discovery
  - opts: ...Option

Returns:
  - *Client: The assembled SDK
  - error: Any configuration, storage, or connection failure
*/
func New(ctx context.Context, opts ...Option) (*Client, error) {

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
			With(slog.String("app", "joury"))
	}

	tokens := o.tokens
	if tokens == nil {
		dir, derr := defaultDir(cfg.TokenDir, os.UserConfigDir, "credentials")
		if derr != nil {
			return nil, derr
		}
		tokens, err = tokenstore.NewFileStore(dir)
		if err != nil {
			return nil, fmt.Errorf("joury: token_store_init_failed: %w", err)
		}
	}

	client := &Client{
		Config: cfg,
		Log:    logger,
		Tokens: tokens,
	}

	// Persistent cache tier: Redis for server-side embeddings, disk
	// otherwise.
	var tier cache.TierStore
	if cfg.RedisURL != "" {
		redisClient, rerr := cache.NewRedisClient(ctx, cfg.RedisURL, logger)
		if rerr != nil {
			return nil, rerr
		}
		client.redis = redisClient
		tier = cache.NewRedisStore(redisClient)
	} else {
		dir, derr := defaultDir(cfg.CacheDir, os.UserCacheDir, "")
		if derr != nil {
			return nil, derr
		}
		tier, err = cache.NewDiskStore(dir, logger)
		if err != nil {
			return nil, fmt.Errorf("joury: cache_init_failed: %w", err)
		}
	}
	client.Cache = cache.New(tier, logger)

	client.API = api.NewClient(cfg, logger)

	provider := o.provider
	if provider == nil && cfg.GoogleClientID != "" && o.supplier != nil {
		provider, err = auth.NewGoogleProvider(ctx, cfg, o.supplier, logger)
		if err != nil {
			return nil, err
		}
	}

	client.Session = auth.NewManager(client.API, tokens, provider, logger)
	client.API.BindAuth(client.Session, client.Session)

	client.Journal = journal.NewService(client.API, client.Cache, logger)

	logger.Debug("sdk assembled",
		slog.String("base_url", cfg.APIBaseURL()),
		slog.Bool("redis_cache", cfg.RedisURL != ""),
		slog.Bool("google_sign_in", provider != nil),
	)
	return client, nil
}

/*
Bootstrap runs the startup sequence: sweep expired cache files, then restore
the persisted session.

Parameters:
  - ctx: context.Context

Returns:
  - error: nil unless credential storage failed; an absent or expired
    session is a normal outcome, reflected in the session snapshot
*/
func (client *Client) Bootstrap(ctx context.Context) error {

	if removed, err := client.Cache.SweepExpired(ctx); err != nil {
		client.Log.Warn("cache sweep failed", slog.String("error", err.Error()))
	} else if removed > 0 {
		client.Log.Debug("cache swept", slog.Int("removed", removed))
	}

	return client.Session.Bootstrap(ctx)
}

// Close releases held connections. Safe to call once, after which the
// client must not be used.
func (client *Client) Close() error {
	if client.redis != nil {
		return client.redis.Close()
	}
	return nil
}

// defaultDir resolves a storage directory: the configured override, or a
// "joury" subdirectory of the OS-standard base, created on first use.
func defaultDir(configured string, base func() (string, error), sub string) (string, error) {

	dir := configured
	if dir == "" {
		root, err := base()
		if err != nil {
			return "", fmt.Errorf("joury: no_storage_directory: %w", err)
		}
		dir = filepath.Join(root, "joury", sub)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("joury: storage_directory_unavailable: %w", err)
	}
	return dir, nil
}
