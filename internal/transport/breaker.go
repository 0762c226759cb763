package transport

import (
	"context"
	"errors"

	"github.com/danmuck/ssrpctl/internal/observability"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

var ErrBreakerOpen = errors.New("transport: circuit breaker open")

// BreakerConn stops contacting a target after repeated failures.
type BreakerConn struct {
	breaker *gobreaker.CircuitBreaker
	Conn
}

func NewBreakerConn(conn Conn, cfg BreakerConfig) *BreakerConn {
	settings := gobreaker.Settings{
		Name:        conn.Target(),
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.OpenFor,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return cfg.ConsecutiveFailures > 0 && counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about the target.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.RecordBreakerState(name, int(to))
			log.Warn().Str("target", name).Str("from", from.String()).Str("to", to.String()).Msg("breaker state change")
		},
	}
	return &BreakerConn{breaker: gobreaker.NewCircuitBreaker(settings), Conn: conn}
}

func (c *BreakerConn) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	reply, err := c.breaker.Execute(func() (interface{}, error) { return c.Conn.Exchange(ctx, request) })
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, errors.Join(ErrBreakerOpen, err)
		}
		return nil, err
	}
	return reply.([]byte), nil
}

func (c *BreakerConn) State() gobreaker.State {
	return c.breaker.State()
}
