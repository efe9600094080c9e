// Package config loads the collabmapd configuration from a YAML file
// with environment-variable overrides.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/collabmap/internal/core/protocol"
)

// Endpoint configures one transport listener.
type Endpoint struct {
	Enabled         bool          `yaml:"enabled" env:"ENABLED"`
	Host            string        `yaml:"host" env:"HOST"`
	Port            int           `yaml:"port" env:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	MaxMessageSize  int64         `yaml:"max_message_size" env:"MAX_MESSAGE_SIZE"`
	ReadBufferSize  int           `yaml:"read_buffer_size" env:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" env:"WRITE_BUFFER_SIZE"`
	TLSEnabled      bool          `yaml:"tls_enabled" env:"TLS_ENABLED"`
	CertFile        string        `yaml:"cert_file" env:"CERT_FILE"`
	KeyFile         string        `yaml:"key_file" env:"KEY_FILE"`
}

// Config is the collabmapd daemon configuration.
type Config struct {
	LogLevel  string   `yaml:"log_level" env:"COLLABMAP_LOG_LEVEL"`
	WebSocket Endpoint `yaml:"websocket" envPrefix:"COLLABMAP_WS_"`
	QUIC      Endpoint `yaml:"quic" envPrefix:"COLLABMAP_QUIC_"`
}

// Default returns the development configuration: both endpoints on
// loopback, websocket on 8420 and QUIC on 8421.
func Default() Config {
	base := protocol.DefaultConfig()
	endpoint := Endpoint{
		Enabled:         true,
		Host:            base.Host,
		Port:            base.Port,
		ReadTimeout:     base.ReadTimeout,
		WriteTimeout:    base.WriteTimeout,
		MaxMessageSize:  base.MaxMessageSize,
		ReadBufferSize:  base.ReadBufferSize,
		WriteBufferSize: base.WriteBufferSize,
	}
	cfg := Config{
		LogLevel:  "info",
		WebSocket: endpoint,
		QUIC:      endpoint,
	}
	cfg.QUIC.Port = base.Port + 1
	return cfg
}

// Load reads the YAML file at path (skipped when path is empty) on top
// of the defaults, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "failed to read config file")
		}
		if err = yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(err, "failed to parse config file")
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "failed to apply environment overrides")
	}
	return cfg, nil
}

// Protocol converts an endpoint section into a transport config.
func (e Endpoint) Protocol() protocol.Config {
	return protocol.Config{
		Host:            e.Host,
		Port:            e.Port,
		ReadTimeout:     e.ReadTimeout,
		WriteTimeout:    e.WriteTimeout,
		MaxMessageSize:  e.MaxMessageSize,
		ReadBufferSize:  e.ReadBufferSize,
		WriteBufferSize: e.WriteBufferSize,
		TLSEnabled:      e.TLSEnabled,
		CertFile:        e.CertFile,
		KeyFile:         e.KeyFile,
	}
}
