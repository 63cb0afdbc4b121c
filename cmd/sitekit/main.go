// Command sitekit serves the admin console and the tenant storefronts.
package main

import (
	"context"
	"log/slog"
	"os"

	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/sitekit/internal"
	"github.com/dmitrymomot/sitekit/internal/config"
	"github.com/dmitrymomot/sitekit/internal/console"
	"github.com/dmitrymomot/sitekit/internal/storefront"
	"github.com/dmitrymomot/sitekit/middlewares"
	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/backend"
	"github.com/dmitrymomot/sitekit/pkg/cache"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
	"github.com/dmitrymomot/sitekit/pkg/health"
	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/metrics"
	"github.com/dmitrymomot/sitekit/pkg/redis"
	"github.com/dmitrymomot/sitekit/pkg/site"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Log, cfg.Sentry,
		middlewares.RequestIDExtractor(),
		site.SlugExtractor(),
	)
	slog.SetDefault(log)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	var rdb goredis.UniversalClient
	if cfg.Redis.Enabled() {
		if rdb, err = redis.Open(ctx, cfg.Redis); err != nil {
			return err
		}
	}

	clientOpts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.Timeout),
		apiclient.WithLogger(log),
	}
	if m != nil {
		clientOpts = append(clientOpts, apiclient.WithObserver(m))
	}
	client, err := apiclient.New(cfg.API.Origin, clientOpts...)
	if err != nil {
		return err
	}
	api := backend.New(client)

	storeOpts := []swr.Option{
		swr.WithPolicy(cfg.Policy),
		swr.WithLogger(log),
		swr.WithMaxEntries(cfg.CacheMaxKeys),
	}
	if m != nil {
		storeOpts = append(storeOpts, swr.WithRecorder(m.Recorder()))
	}
	public := swr.New(storeOpts...)

	resolverOpts := []site.Option{
		site.WithTTL(cfg.SiteCacheTTL, cfg.SiteMissingTTL),
		site.WithLogger(log),
	}
	if rdb != nil {
		resolverOpts = append(resolverOpts, site.WithCache(cache.NewRedis[site.Entry](rdb, nil,
			cache.WithPrefix("sitekit:site"),
			cache.WithDefaultTTL(cfg.SiteCacheTTL),
		)))
	}
	resolver := site.NewResolver(api, resolverOpts...)

	checks := []internal.HealthOption{
		internal.WithReadinessCheck("backend", health.Reachable(cfg.API.Origin, nil)),
	}
	if rdb != nil {
		checks = append(checks, internal.WithReadinessCheck("redis", redis.Ping(rdb)))
	}

	common := func(component string) []internal.Option {
		mws := []internal.Middleware{middlewares.RequestID(), middlewares.Recover()}
		if m != nil {
			mws = append(mws, middlewares.Metrics(m))
		}
		opts := []internal.Option{
			internal.WithLogger(log, component),
			internal.WithBaseDomain(cfg.BaseDomain),
			internal.WithMiddleware(mws...),
			internal.WithErrorHandler(storefront.ErrorHandler(internal.DefaultErrorHandler(internal.DefaultLoginPath))),
			internal.WithHealthChecks(checks...),
			internal.WithCookieOptions(
				cookie.WithSecret(cfg.CookieSecret),
				cookie.WithSecure(cfg.IsProduction()),
			),
			internal.WithStoreOptions(storeOpts...),
		}
		if m != nil {
			opts = append(opts, internal.WithMount("/metrics", m.Handler()))
		}
		return opts
	}

	// Path tenants ("/acme/products") and the console share the main host.
	web := internal.New(append(common("web"),
		internal.WithHandlers(
			console.New(api, resolver, console.WithPublicStore(public), console.WithLogger(log)),
			storefront.New(api, public, resolver, storefront.WithLogger(log)),
		),
	)...)

	runOpts := []internal.RunOption{
		internal.Address(cfg.HTTPAddr),
		internal.Logger(log),
		internal.Fallback(web),
		internal.ShutdownHook(func(context.Context) error {
			public.Close()
			return nil
		}),
		internal.ShutdownHook(func(context.Context) error {
			return resolver.Close()
		}),
	}
	if cfg.BaseDomain != "" {
		tenants := internal.New(append(common("storefront"),
			internal.WithHandlers(storefront.New(api, public, resolver,
				storefront.WithHostTenants(),
				storefront.WithLogger(log),
			)),
		)...)
		runOpts = append(runOpts, internal.Domain("*."+cfg.BaseDomain, tenants))
	}
	if rdb != nil {
		runOpts = append(runOpts, internal.ShutdownHook(redis.Shutdown(rdb)))
	}

	log.Info("starting sitekit",
		slog.String("env", cfg.AppEnv),
		slog.String("api", cfg.API.Origin),
		slog.Bool("redis", rdb != nil),
	)
	return internal.Run(runOpts...)
}
