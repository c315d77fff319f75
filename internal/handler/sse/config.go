package sse

import "time"

// Config holds configuration for SSE connections
type Config struct {
	// KeepAliveInterval is how often a comment line is sent on an idle stream
	// so proxies do not time the connection out
	KeepAliveInterval time.Duration

	// RetryInterval is sent to clients as the reconnect delay
	RetryInterval time.Duration
}

// DefaultConfig returns the default SSE configuration
// 10 seconds is safe for most proxies
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
		RetryInterval:     2 * time.Second,
	}
}
