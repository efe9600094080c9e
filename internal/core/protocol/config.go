package protocol

import (
	"fmt"
	"net"
	"time"
)

// Config holds transport endpoint configuration
type Config struct {
	// Network settings
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// Message settings
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int

	// Security settings
	TLSEnabled bool
	CertFile   string
	KeyFile    string
}

// DefaultConfig returns a config suitable for local development.
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		Port:            8420,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    10 * time.Second,
		MaxMessageSize:  1 << 20, // 1MB
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}

// Addr returns the host:port endpoint address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}
