package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultEnvFile         = ".env"
	defaultPort            = "8080"
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultDataSource      = "data/travel_recommendation_api.json"
	defaultSiteName        = "Travel Recommendations"
	defaultLang            = "en"
	defaultLocalesDir      = "locales"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server  ServerConfig
	Data    DataConfig
	S3      S3Config
	Session SessionConfig
	Site    SiteConfig
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string
	Environment     string
	Dev             bool
	TemplatesDir    string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DataConfig points at the dataset document.
type DataConfig struct {
	// Source is a file path, http(s) URL, s3://bucket/key or gs://bucket/object.
	Source string
	// HTTPTimeout bounds remote fetches. Zero means no client-side timeout.
	HTTPTimeout time.Duration
}

// S3Config holds credentials for s3:// sources.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Region    string
	UseSSL    bool
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	SigningKey string
	Secure     bool
}

// SiteConfig holds presentation settings.
type SiteConfig struct {
	Name        string
	BaseURL     string
	DefaultLang string
	Languages   []string
	LocalesDir  string
}

// IsProd reports whether the server runs in the production environment.
func (c Config) IsProd() bool {
	return strings.EqualFold(c.Server.Environment, "prod")
}

// ValidationError is returned when configuration fields are invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects explicit values. They take precedence over the system environment.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables os.LookupEnv, relying only on provided maps and .env files.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load assembles configuration from defaults, the .env file, the environment and explicit values,
// in increasing order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnv, err := readDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if v, ok := options.envMap[key]; ok {
			return v, true
		}
		if options.useSystemEnv {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
		}
		v, ok := dotEnv[key]
		return v, ok
	}
	get := func(key, fallback string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return fallback
	}

	var invalid []string
	duration := func(key string, fallback time.Duration) time.Duration {
		raw := get(key, "")
		if raw == "" {
			return fallback
		}
		d, err := time.ParseDuration(raw)
		if err != nil || d < 0 {
			invalid = append(invalid, key)
			return fallback
		}
		return d
	}
	boolean := func(key string) bool {
		raw := get(key, "")
		if raw == "" {
			return false
		}
		b, err := strconv.ParseBool(raw)
		if err != nil {
			invalid = append(invalid, key)
			return false
		}
		return b
	}

	// Port resolution: TRAVEL_WEB_PORT, then Cloud Run's PORT, else 8080.
	port := get("TRAVEL_WEB_PORT", get("PORT", defaultPort))

	cfg := Config{
		Server: ServerConfig{
			Addr:            get("TRAVEL_WEB_ADDR", ":"+port),
			Environment:     strings.ToLower(get("TRAVEL_WEB_ENV", "local")),
			Dev:             boolean("TRAVEL_WEB_DEV"),
			TemplatesDir:    get("TRAVEL_WEB_TEMPLATES_DIR", ""),
			ReadTimeout:     duration("TRAVEL_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:    duration("TRAVEL_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:     duration("TRAVEL_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout: duration("TRAVEL_WEB_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Data: DataConfig{
			Source:      get("TRAVEL_WEB_DATA_SOURCE", defaultDataSource),
			HTTPTimeout: duration("TRAVEL_WEB_DATA_HTTP_TIMEOUT", 0),
		},
		S3: S3Config{
			Endpoint:  get("TRAVEL_WEB_S3_ENDPOINT", ""),
			AccessKey: get("TRAVEL_WEB_S3_ACCESS_KEY", ""),
			SecretKey: get("TRAVEL_WEB_S3_SECRET_KEY", ""),
			Region:    get("TRAVEL_WEB_S3_REGION", ""),
			UseSSL:    boolean("TRAVEL_WEB_S3_USE_SSL"),
		},
		Session: SessionConfig{
			SigningKey: get("TRAVEL_WEB_SESSION_SIGNING_KEY", ""),
		},
		Site: SiteConfig{
			Name:        get("TRAVEL_WEB_SITE_NAME", defaultSiteName),
			BaseURL:     strings.TrimRight(get("TRAVEL_WEB_BASE_URL", ""), "/"),
			DefaultLang: strings.ToLower(get("TRAVEL_WEB_DEFAULT_LANG", defaultLang)),
			Languages:   splitList(get("TRAVEL_WEB_LANGUAGES", "en,ja")),
			LocalesDir:  get("TRAVEL_WEB_LOCALES_DIR", defaultLocalesDir),
		},
	}
	cfg.Session.Secure = cfg.IsProd()

	if strings.HasPrefix(cfg.Data.Source, "s3://") && cfg.S3.Endpoint == "" {
		invalid = append(invalid, "TRAVEL_WEB_S3_ENDPOINT")
	}
	if cfg.Site.BaseURL != "" {
		if u, err := url.Parse(cfg.Site.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			invalid = append(invalid, "TRAVEL_WEB_BASE_URL")
		}
	}
	if !contains(cfg.Site.Languages, cfg.Site.DefaultLang) {
		invalid = append(invalid, "TRAVEL_WEB_DEFAULT_LANG")
	}
	if cfg.IsProd() && cfg.Session.SigningKey == "" {
		invalid = append(invalid, "TRAVEL_WEB_SESSION_SIGNING_KEY")
	}

	if len(invalid) > 0 {
		return cfg, &ValidationError{fields: invalid}
	}
	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" && !contains(out, part) {
			out = append(out, part)
		}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
