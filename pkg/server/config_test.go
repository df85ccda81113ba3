package server

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vango-dev/vdiff/internal/config"
)

func TestDefaultServerConfig(t *testing.T) {
	c := DefaultServerConfig()
	assert.Equal(t, "localhost:7420", c.Address)
	assert.Equal(t, int64(config.DefaultMaxMessageSize), c.MaxMessageSize)
	assert.Equal(t, config.DefaultCompressThreshold, c.CompressThreshold)
	assert.True(t, c.MetricsEnabled)
}

func TestConfigFromFile(t *testing.T) {
	cfg := config.New()
	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 9000
	cfg.Server.ReadTimeout = 3 * time.Second
	cfg.Server.AllowedOrigins = []string{"https://app.example"}
	cfg.Protocol.Compress = false
	cfg.Metrics.Namespace = "custom"

	c := ConfigFromFile(cfg, nil)
	assert.Equal(t, "0.0.0.0:9000", c.Address)
	assert.Equal(t, 3*time.Second, c.ReadTimeout)
	assert.Equal(t, -1, c.CompressThreshold)
	assert.Equal(t, []string{"https://app.example"}, c.AllowedOrigins)
	assert.Equal(t, "custom", c.MetricsNamespace)
}

func TestWithDefaults(t *testing.T) {
	c := (&ServerConfig{}).withDefaults()
	d := DefaultServerConfig()
	assert.Equal(t, d.Address, c.Address)
	assert.Equal(t, d.ReadTimeout, c.ReadTimeout)
	assert.Equal(t, d.MaxMessageSize, c.MaxMessageSize)
	assert.NotNil(t, c.Logger)
	assert.NotNil(t, c.Registry)
	assert.Equal(t, "vdiff", c.TracerName)
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin", nil, "", true},
		{"same origin", nil, "http://example.com", true},
		{"cross origin", nil, "http://evil.example", false},
		{"listed", []string{"http://app.example"}, "http://app.example", true},
		{"wildcard", []string{"*"}, "http://anything.example", true},
		{"malformed", nil, "://", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &ServerConfig{AllowedOrigins: tt.allowed}
			r := httptest.NewRequest("GET", "http://example.com/v1/stream", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, c.checkOrigin(r))
		})
	}
}
