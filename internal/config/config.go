package config

import (
	stderrors "errors"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/vango-dev/vdiff/internal/errors"
)

const (
	// ConfigName is the config file name without extension.
	ConfigName = "vdiff"

	// EnvPrefix is the environment variable prefix (VDIFF_SERVER_PORT, ...).
	EnvPrefix = "VDIFF"

	// DefaultPort is the default diff service port.
	DefaultPort = 7420

	// DefaultHost is the default diff service host.
	DefaultHost = "localhost"

	// DefaultStoreURI is the default snapshot store location.
	DefaultStoreURI = "./snapshots"

	// DefaultCompressThreshold is the payload size from which frames are
	// compressed.
	DefaultCompressThreshold = 512

	// DefaultMaxMessageSize is the largest WebSocket message or request body
	// the service accepts.
	DefaultMaxMessageSize = 1 << 20
)

// Config is the complete vdiff configuration.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Protocol ProtocolConfig `mapstructure:"protocol"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains diff service settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `mapstructure:"host"`

	// Port is the port to listen on.
	Port int `mapstructure:"port"`

	// ReadTimeout bounds reading a whole request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout bounds writing a response or a stream frame.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// MaxMessageSize caps request bodies and WebSocket messages.
	MaxMessageSize int64 `mapstructure:"max_message_size"`

	// AllowedOrigins lists the origins accepted for WebSocket streams.
	// Empty means same-origin only.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig contains snapshot store settings.
type StoreConfig struct {
	// URI is a directory path, file:// URI or s3://bucket/prefix URI.
	URI string `mapstructure:"uri"`

	// S3 configures the S3 backend.
	S3 S3Config `mapstructure:"s3"`
}

// S3Config contains S3 client settings.
type S3Config struct {
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	PathStyle       bool   `mapstructure:"path_style"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

// ProtocolConfig contains wire protocol settings.
type ProtocolConfig struct {
	// Compress enables LZ4 compression of large frames.
	Compress bool `mapstructure:"compress"`

	// CompressThreshold is the payload size from which frames are compressed.
	CompressThreshold int `mapstructure:"compress_threshold"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`

	// Format is text or json.
	Format string `mapstructure:"format"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           DefaultHost,
			Port:           DefaultPort,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
			MaxMessageSize: DefaultMaxMessageSize,
		},
		Store: StoreConfig{
			URI: DefaultStoreURI,
			S3: S3Config{
				Region: "us-east-1",
			},
		},
		Protocol: ProtocolConfig{
			Compress:          true,
			CompressThreshold: DefaultCompressThreshold,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "vdiff",
		},
	}
}

// Load reads configuration from defaults, the config file and the
// environment, in increasing priority. If path is empty, vdiff.yaml is
// searched in the working directory and $HOME; a missing file is not an
// error.
func Load(path string) (*Config, error) {
	v := viper.New()
	applyDefaults(v, New())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, errors.New("E101").
				WithDetailf("Cannot open %s.", path).
				Wrap(err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stderrors.As(err, &notFound) {
			return nil, errors.New("E101").
				WithDetailf("Failed to read %s.", v.ConfigFileUsed()).
				WithSuggestion("Check that the file exists and is valid YAML").
				Wrap(err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.New("E102").Wrap(err)
	}
	cfg.configPath = v.ConfigFileUsed()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults registers every key with viper so that environment
// overrides apply to keys absent from the file.
func applyDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.read_timeout", d.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", d.Server.WriteTimeout)
	v.SetDefault("server.max_message_size", d.Server.MaxMessageSize)
	v.SetDefault("server.allowed_origins", []string{})

	v.SetDefault("store.uri", d.Store.URI)
	v.SetDefault("store.s3.region", d.Store.S3.Region)
	v.SetDefault("store.s3.endpoint", "")
	v.SetDefault("store.s3.path_style", false)
	v.SetDefault("store.s3.access_key_id", "")
	v.SetDefault("store.s3.secret_access_key", "")

	v.SetDefault("protocol.compress", d.Protocol.Compress)
	v.SetDefault("protocol.compress_threshold", d.Protocol.CompressThreshold)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
}

// applyDefaults fills in default values for fields left empty.
func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.MaxMessageSize == 0 {
		c.Server.MaxMessageSize = DefaultMaxMessageSize
	}
	if c.Store.URI == "" {
		c.Store.URI = DefaultStoreURI
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "vdiff"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E102").
			WithDetailf("server.port must be between 0 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("E102").
			WithDetail("server timeouts must not be negative")
	}
	if c.Server.MaxMessageSize < 0 {
		return errors.New("E102").
			WithDetailf("server.max_message_size must not be negative, got %d", c.Server.MaxMessageSize)
	}
	if c.Protocol.CompressThreshold < 0 {
		return errors.New("E102").
			WithDetailf("protocol.compress_threshold must not be negative, got %d", c.Protocol.CompressThreshold)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return errors.New("E102").
			WithDetailf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Path returns the path where the config was loaded from, or "".
func (c *Config) Path() string {
	return c.configPath
}

// Address returns the listen address of the diff service.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// URL returns the base URL of the diff service.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

// CompressThreshold returns the frame compression threshold, or -1 when
// compression is off.
func (c *Config) CompressThreshold() int {
	if !c.Protocol.Compress {
		return -1
	}
	return c.Protocol.CompressThreshold
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, errors.New("E102").
			WithDetailf("log.level must be debug, info, warn or error, got %q", s)
	}
	return level, nil
}
