package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"
)

var (
	ErrClosed         = errors.New("transport: connection closed")
	ErrEmptyDatagram  = errors.New("transport: empty datagram")
	ErrOversizedReply = errors.New("transport: reply exceeds receive buffer")
)

// Conn exchanges one request datagram for one reply datagram.
type Conn interface {
	Exchange(ctx context.Context, request []byte) ([]byte, error)
	Target() string
	Close() error
}

// UDPClient is a connected udp socket bound to one browser endpoint.
type UDPClient struct {
	cfg    Config
	target string

	mu     sync.Mutex
	conn   *net.UDPConn
	buf    []byte
	closed bool
}

// DialUDP resolves host:port and associates a udp socket with it.
func DialUDP(host string, port int, cfg Config) (*UDPClient, error) {
	target := net.JoinHostPort(host, strconv.Itoa(port))
	remote, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", target, err)
	}
	var local *net.UDPAddr
	if cfg.LocalAddr != "" {
		local, err = net.ResolveUDPAddr("udp", cfg.LocalAddr)
		if err != nil {
			return nil, fmt.Errorf("resolve local %s: %w", cfg.LocalAddr, err)
		}
	}
	conn, err := net.DialUDP("udp", local, remote)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", target, err)
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = DefaultConfig().BufferSize
	}
	return &UDPClient{cfg: cfg, target: target, conn: conn, buf: make([]byte, size+1)}, nil
}

func (c *UDPClient) Target() string {
	return c.target
}

func (c *UDPClient) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// Exchange writes request and waits for a single reply. Calls are serialized
// so a reply is never handed to the wrong caller.
func (c *UDPClient) Exchange(ctx context.Context, request []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.conn.SetWriteDeadline(c.deadline(ctx, c.cfg.WriteTimeout)); err != nil {
		return nil, err
	}
	if _, err := c.conn.Write(request); err != nil {
		return nil, fmt.Errorf("send to %s: %w", c.target, err)
	}

	if err := c.conn.SetReadDeadline(c.deadline(ctx, c.cfg.ReadTimeout)); err != nil {
		return nil, err
	}
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = c.conn.SetReadDeadline(time.Now())
		close(fired)
	})
	n, err := c.conn.Read(c.buf)
	if !stop() {
		// The cancel hook is running; let it finish before the next caller
		// installs its own deadline.
		<-fired
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("receive from %s: %w", c.target, err)
	}
	if n == 0 {
		return nil, ErrEmptyDatagram
	}
	// The buffer carries one spare byte so a datagram that fills it is known
	// to have been cut off.
	if n == len(c.buf) {
		return nil, ErrOversizedReply
	}
	out := make([]byte, n)
	copy(out, c.buf[:n])
	return out, nil
}

func (c *UDPClient) deadline(ctx context.Context, timeout time.Duration) time.Time {
	var d time.Time
	if timeout > 0 {
		d = time.Now().Add(timeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (d.IsZero() || ctxDeadline.Before(d)) {
		d = ctxDeadline
	}
	return d
}

func (c *UDPClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
