package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/vdiff/internal/config"
)

// ServerConfig configures the diff service.
type ServerConfig struct {
	// Address is the listen address (e.g. "localhost:7420").
	Address string

	// ReadTimeout bounds reading a request and each stream message.
	ReadTimeout time.Duration

	// WriteTimeout bounds writing a response and each stream message.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// MaxMessageSize caps request bodies and stream messages in bytes.
	MaxMessageSize int64

	// CompressThreshold is the payload size from which patch frames are LZ4
	// compressed. Negative disables compression.
	CompressThreshold int

	// AllowedOrigins lists the origins accepted for WebSocket upgrades.
	// Empty means same origin only; "*" accepts any origin.
	AllowedOrigins []string

	// Logger receives service logs. Defaults to slog.Default().
	Logger *slog.Logger

	// MetricsEnabled registers metrics and serves /metrics.
	MetricsEnabled bool

	// MetricsNamespace prefixes metric names.
	MetricsNamespace string

	// Registry receives the service metrics. Defaults to a fresh registry
	// owned by the server.
	Registry *prometheus.Registry

	// TracerName names the OpenTelemetry tracer.
	TracerName string
}

// DefaultServerConfig returns a ServerConfig with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           config.New().Address(),
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ShutdownTimeout:   15 * time.Second,
		MaxMessageSize:    config.DefaultMaxMessageSize,
		CompressThreshold: config.DefaultCompressThreshold,
		MetricsEnabled:    true,
		MetricsNamespace:  "vdiff",
		TracerName:        "vdiff",
	}
}

// ConfigFromFile maps the loaded configuration onto a ServerConfig.
func ConfigFromFile(cfg *config.Config, logger *slog.Logger) *ServerConfig {
	sc := DefaultServerConfig()
	sc.Address = cfg.Address()
	sc.ReadTimeout = cfg.Server.ReadTimeout
	sc.WriteTimeout = cfg.Server.WriteTimeout
	sc.MaxMessageSize = cfg.Server.MaxMessageSize
	sc.CompressThreshold = cfg.CompressThreshold()
	sc.AllowedOrigins = cfg.Server.AllowedOrigins
	sc.MetricsEnabled = cfg.Metrics.Enabled
	sc.MetricsNamespace = cfg.Metrics.Namespace
	sc.Logger = logger
	return sc
}

// withDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	out := *c
	d := DefaultServerConfig()
	if out.Address == "" {
		out.Address = d.Address
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = d.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = d.WriteTimeout
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = d.ShutdownTimeout
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = d.MaxMessageSize
	}
	if out.Logger == nil {
		out.Logger = slog.Default()
	}
	if out.Registry == nil {
		out.Registry = prometheus.NewRegistry()
	}
	if out.TracerName == "" {
		out.TracerName = d.TracerName
	}
	return &out
}

// checkOrigin validates the Origin header of a WebSocket upgrade against
// AllowedOrigins. Requests without an Origin header are accepted.
func (c *ServerConfig) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if slices.Contains(c.AllowedOrigins, "*") || slices.Contains(c.AllowedOrigins, origin) {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return r.Host != "" && u.Host == r.Host
}
