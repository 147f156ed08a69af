package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ACTIVITYFORM_"

// Duration accepts Go duration strings ("15s", "2m") in YAML and TOML.
type Duration time.Duration

// Std returns the time.Duration value.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the service configuration.
type Config struct {
	Service    string           `yaml:"service" toml:"service"`
	Env        string           `yaml:"env" toml:"env"`
	Server     ServerConfig     `yaml:"server" toml:"server"`
	Backend    BackendConfig    `yaml:"backend" toml:"backend"`
	Form       FormConfig       `yaml:"form" toml:"form"`
	Upload     UploadConfig     `yaml:"upload" toml:"upload"`
	Invalidate InvalidateConfig `yaml:"invalidate" toml:"invalidate"`
}

// ServerConfig configures the HTTP listeners.
type ServerConfig struct {
	Addr            string   `yaml:"addr" toml:"addr"`
	MetricsAddr     string   `yaml:"metrics_addr" toml:"metrics_addr"`
	ReadTimeout     Duration `yaml:"read_timeout" toml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout" toml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	MaxBodyBytes    int64    `yaml:"max_body_bytes" toml:"max_body_bytes"`
	MaxFieldBytes   int64    `yaml:"max_field_bytes" toml:"max_field_bytes"`
	MaxFileBytes    int64    `yaml:"max_file_bytes" toml:"max_file_bytes"`
}

// BackendConfig points at the remote activity API.
type BackendConfig struct {
	BaseURL string   `yaml:"base_url" toml:"base_url"`
	Timeout Duration `yaml:"timeout" toml:"timeout"`
}

// FormConfig tunes reconstruction and validation.
type FormConfig struct {
	SplitFields     []string `yaml:"split_fields" toml:"split_fields"`
	AggregateFields []string `yaml:"aggregate_fields" toml:"aggregate_fields"`
	MaxIndex        int      `yaml:"max_index" toml:"max_index"`
	MessagePrefix   *string  `yaml:"message_prefix" toml:"message_prefix"`
	Timezone        string   `yaml:"timezone" toml:"timezone"`
	SchemaFile      string   `yaml:"schema_file" toml:"schema_file"`
}

// UploadConfig bounds image uploads.
type UploadConfig struct {
	MaxImageBytes int `yaml:"max_image_bytes" toml:"max_image_bytes"`
}

// InvalidateConfig selects the cache invalidation transports.
type InvalidateConfig struct {
	Path    string      `yaml:"path" toml:"path"`
	Timeout Duration    `yaml:"timeout" toml:"timeout"`
	Redis   RedisConfig `yaml:"redis" toml:"redis"`
	NATS    NATSConfig  `yaml:"nats" toml:"nats"`
}

// RedisConfig enables Redis pub/sub when Addrs is set.
type RedisConfig struct {
	Addrs          []string `yaml:"addrs" toml:"addrs"`
	Username       string   `yaml:"username" toml:"username"`
	Password       string   `yaml:"password" toml:"password"`
	DB             int      `yaml:"db" toml:"db"`
	Channel        string   `yaml:"channel" toml:"channel"`
	DialTimeout    Duration `yaml:"dial_timeout" toml:"dial_timeout"`
	ConnectTimeout Duration `yaml:"connect_timeout" toml:"connect_timeout"`
}

// NATSConfig enables NATS when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url" toml:"url"`
	Subject string `yaml:"subject" toml:"subject"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Service: "activityform",
		Env:     "production",
		Server: ServerConfig{
			Addr:            ":8080",
			MetricsAddr:     ":9090",
			ReadTimeout:     Duration(15 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(10 * time.Second),
			MaxBodyBytes:    32 << 20,
			MaxFieldBytes:   1 << 20,
			MaxFileBytes:    10 << 20,
		},
		Backend: BackendConfig{
			Timeout: Duration(15 * time.Second),
		},
		Form: FormConfig{
			SplitFields: []string{"cover"},
			MaxIndex:    1000,
		},
		Upload: UploadConfig{
			MaxImageBytes: 5 << 20,
		},
		Invalidate: InvalidateConfig{
			Path:    "/activity",
			Timeout: Duration(5 * time.Second),
		},
	}
}

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads the configuration with Read and validates it.
func Load(fs afero.Fs, path string, lookup LookupFunc) (Config, error) {
	cfg, err := Read(fs, path, lookup)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Read reads path from fs (YAML or TOML by extension) over the defaults and
// applies environment overrides without validating the result. An empty path
// skips the file. A nil lookup uses os.LookupEnv.
func Read(fs afero.Fs, path string, lookup LookupFunc) (Config, error) {
	cfg := Default()
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if path = strings.TrimSpace(path); path != "" {
		if fs == nil {
			fs = afero.NewOsFs()
		}
		data, err := afero.ReadFile(fs, path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := decode(path, data, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return fmt.Errorf("config: parse yaml %s: %w", path, err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return fmt.Errorf("config: parse toml %s: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("config: unknown toml keys in %s: %v", path, undecoded)
		}
	default:
		return fmt.Errorf("config: unsupported file extension %q", filepath.Ext(path))
	}
	return nil
}

func applyEnv(cfg *Config, lookup LookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str("ENV", &cfg.Env)
	str("ADDR", &cfg.Server.Addr)
	str("METRICS_ADDR", &cfg.Server.MetricsAddr)
	str("BACKEND_URL", &cfg.Backend.BaseURL)
	str("NATS_URL", &cfg.Invalidate.NATS.URL)
	str("REDIS_PASSWORD", &cfg.Invalidate.Redis.Password)

	if v, ok := lookup(EnvPrefix + "REDIS_ADDRS"); ok {
		cfg.Invalidate.Redis.Addrs = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "BACKEND_TIMEOUT"); ok {
		if err := cfg.Backend.Timeout.UnmarshalText([]byte(v)); err != nil {
			return fmt.Errorf("config: %sBACKEND_TIMEOUT: %w", EnvPrefix, err)
		}
	}
	if v, ok := lookup(EnvPrefix + "MAX_INDEX"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %sMAX_INDEX: %w", EnvPrefix, err)
		}
		cfg.Form.MaxIndex = n
	}
	return nil
}

// Validate checks required settings and ranges.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		errs = append(errs, errors.New("backend.base_url is required"))
	} else if u, err := url.Parse(c.Backend.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url %q must be an absolute http(s) url", c.Backend.BaseURL))
	}
	if c.Form.MaxIndex < 0 {
		errs = append(errs, errors.New("form.max_index must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if c.Form.Timezone != "" {
		if _, err := time.LoadLocation(c.Form.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("form.timezone: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Location resolves Form.Timezone. It returns nil when unset so callers keep
// their own default.
func (c Config) Location() (*time.Location, error) {
	if c.Form.Timezone == "" {
		return nil, nil
	}
	return time.LoadLocation(c.Form.Timezone)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
