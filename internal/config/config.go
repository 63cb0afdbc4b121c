package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/cookie"
	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/redis"
	"github.com/dmitrymomot/sitekit/pkg/swr"
)

// Defaults applied when the environment leaves the API settings empty.
const (
	DefaultAPIOrigin  = "http://localhost:8080"
	DefaultAPITimeout = 15 * time.Second
)

var (
	ErrInvalidAPIURL       = errors.New("config: invalid API URL")
	ErrInvalidPolicyFile   = errors.New("config: invalid cache policy file")
	ErrInvalidCookieSecret = errors.New("config: invalid COOKIE_SECRET")
	ErrMissingTestEmail    = errors.New("config: API_TEST_EMAIL is not set")
	ErrMissingTestPassword = errors.New("config: API_TEST_PASSWORD is not set")
)

// Config is the process configuration, read from the environment.
type Config struct {
	AppEnv         string        `env:"APP_ENV" envDefault:"development"`
	HTTPAddr       string        `env:"HTTP_ADDR" envDefault:":3000"`
	BaseDomain     string        `env:"BASE_DOMAIN"`
	CookieSecret   string        `env:"COOKIE_SECRET"`
	PolicyFile     string        `env:"SWR_POLICY_FILE"`
	CacheMaxKeys   int           `env:"SWR_MAX_ENTRIES" envDefault:"10000"`
	SiteCacheTTL   time.Duration `env:"SITE_CACHE_TTL" envDefault:"1m"`
	SiteMissingTTL time.Duration `env:"SITE_MISSING_TTL" envDefault:"15s"`
	MetricsEnabled bool          `env:"METRICS_ENABLED" envDefault:"true"`

	API    API
	Test   TestCredentials
	Log    logger.Config
	Sentry logger.SentryConfig
	Redis  redis.Config

	// Policy is the cache policy: swr.DefaultPolicy overlaid with the
	// policy file, when one is configured.
	Policy swr.Policy `env:"-"`
}

// API is the backend connection. Each setting has a browser-facing name
// (NEXT_PUBLIC_*) that wins over the server-only one.
type API struct {
	PublicURL     string `env:"NEXT_PUBLIC_API_URL"`
	URL           string `env:"API_URL"`
	PublicTimeout string `env:"NEXT_PUBLIC_API_TIMEOUT"`
	TimeoutMillis string `env:"API_TIMEOUT"`

	// Origin is the resolved scheme://host of the backend.
	Origin string `env:"-"`
	// Timeout is the resolved per-call timeout.
	Timeout time.Duration `env:"-"`
}

// TestCredentials are the fallback login used by tooling.
type TestCredentials struct {
	Email    string `env:"API_TEST_EMAIL"`
	Password string `env:"API_TEST_PASSWORD"`
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// EnsureTestCredentials fails when either test credential is missing.
func (c *Config) EnsureTestCredentials() error {
	var errs []error
	if strings.TrimSpace(c.Test.Email) == "" {
		errs = append(errs, ErrMissingTestEmail)
	}
	if c.Test.Password == "" {
		errs = append(errs, ErrMissingTestPassword)
	}
	return errors.Join(errs...)
}

// Option configures Load.
type Option func(*options)

type options struct {
	environ  map[string]string
	dotenv   []string
	logger   *slog.Logger
	readFile func(name string) ([]byte, error)
}

// WithEnvironment reads variables from environ instead of the process
// environment. Dotenv files are not loaded.
func WithEnvironment(environ map[string]string) Option {
	return func(o *options) {
		o.environ = environ
		o.dotenv = nil
	}
}

// WithDotenv replaces the dotenv files loaded before parsing.
// Earlier files win; variables already set in the environment win over all.
func WithDotenv(files ...string) Option {
	return func(o *options) {
		o.dotenv = files
	}
}

// WithLogger receives configuration warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load reads the configuration. It fails on a malformed API URL, an
// unreadable policy file or a too short cookie secret, so a misconfigured
// process never starts serving.
func Load(opts ...Option) (*Config, error) {
	o := &options{
		dotenv:   []string{".env.local", ".env"},
		logger:   logger.NewNope(),
		readFile: os.ReadFile,
	}
	for _, opt := range opts {
		opt(o)
	}

	for _, file := range o.dotenv {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", file, err)
		}
	}

	cfg := &Config{}
	envOpts := env.Options{}
	if o.environ != nil {
		envOpts.Environment = o.environ
	}
	if err := env.ParseWithOptions(cfg, envOpts); err != nil {
		return nil, fmt.Errorf("config: parse environment: %w", err)
	}

	if err := cfg.resolveAPI(o.logger); err != nil {
		return nil, err
	}

	if cfg.CookieSecret != "" {
		if err := cookie.ValidSecret(cfg.CookieSecret); err != nil {
			return nil, errors.Join(ErrInvalidCookieSecret, err)
		}
	}

	policy, err := loadPolicy(cfg.PolicyFile, o.readFile)
	if err != nil {
		return nil, err
	}
	cfg.Policy = policy

	return cfg, nil
}

func (c *Config) resolveAPI(log *slog.Logger) error {
	raw := firstNonEmpty(c.API.PublicURL, c.API.URL)
	if raw == "" {
		log.Warn("API URL is not set, using the default",
			slog.String("origin", DefaultAPIOrigin),
		)
		raw = DefaultAPIOrigin
	}
	origin, err := apiclient.ParseOrigin(raw)
	if err != nil {
		return errors.Join(ErrInvalidAPIURL, err)
	}
	c.API.Origin = origin.String()

	c.API.Timeout = DefaultAPITimeout
	if rawTimeout := firstNonEmpty(c.API.PublicTimeout, c.API.TimeoutMillis); rawTimeout != "" {
		ms, err := strconv.Atoi(rawTimeout)
		if err != nil || ms <= 0 {
			log.Warn("API timeout is not a positive number of milliseconds, using the default",
				slog.String("value", rawTimeout),
				slog.Duration("default", DefaultAPITimeout),
			)
		} else {
			c.API.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	return nil
}

// loadPolicy overlays the YAML file on swr.DefaultPolicy. Keys the file
// leaves out keep their defaults.
func loadPolicy(path string, readFile func(string) ([]byte, error)) (swr.Policy, error) {
	policy := swr.DefaultPolicy()
	if path == "" {
		return policy, nil
	}
	data, err := readFile(path)
	if err != nil {
		return policy, errors.Join(ErrInvalidPolicyFile, err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, errors.Join(ErrInvalidPolicyFile, err)
	}
	return policy, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
