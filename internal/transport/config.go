package transport

import (
	"time"

	"github.com/danmuck/ssrpctl/internal/protocol/ssrp"
)

// Config defines socket and timeout defaults for a browser target.
type Config struct {
	LocalAddr    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BufferSize   int
	Breaker      BreakerConfig
}

// BreakerConfig defines when a target stops being contacted.
type BreakerConfig struct {
	// ConsecutiveFailures opens the breaker; zero disables breaking.
	ConsecutiveFailures uint32
	OpenFor             time.Duration
	HalfOpenRequests    uint32
}

func DefaultConfig() Config {
	return Config{
		ReadTimeout:  2 * time.Second,
		WriteTimeout: time.Second,
		BufferSize:   ssrp.MaxResponseSize,
		Breaker: BreakerConfig{
			ConsecutiveFailures: 3,
			OpenFor:             30 * time.Second,
			HalfOpenRequests:    1,
		},
	}
}
