// Package netio implements the byte stream channels behind OPENUP, BGET#,
// BPUT#, EOF# and CLOSE#: a handful of TCP connections read one byte at a
// time without blocking the interpreter.
package netio

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

const (
	MaxSockets = 4
	BufferSize = 64 * 1024
	// RetryDelay is how long a read waits for data before reporting none.
	RetryDelay = 10 * time.Millisecond

	NoData      = -1
	EndOfStream = -2
)

var (
	ErrTooManySockets = errors.New("too many open sockets")
	ErrBadAddress     = errors.New("bad network address")
	ErrNotFound       = errors.New("host not found")
	ErrRefused        = errors.New("connection refused")
	ErrBadHandle      = errors.New("bad network handle")
)

type socket struct {
	conn  net.Conn
	buf   []byte
	start int
	end   int
	eof   bool
}

// Transport owns up to MaxSockets connections addressed by small handles.
type Transport struct {
	mu      sync.Mutex
	sockets [MaxSockets]*socket
	dialer  *net.Dialer
	wait    time.Duration
}

type Option func(*Transport)

// WithDialTimeout bounds how long Open waits for a connection.
func WithDialTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.dialer.Timeout = d
	}
}

// WithRetryDelay changes how long a read waits for data.
func WithRetryDelay(d time.Duration) Option {
	return func(t *Transport) {
		t.wait = d
	}
}

func New(opts ...Option) *Transport {
	t := &Transport{
		dialer: &net.Dialer{Timeout: 30 * time.Second},
		wait:   RetryDelay,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// splitAddress turns "ip4:host:port", "ip6:[host]:port" or "host:port"
// into a dial network and address.
func splitAddress(addr string) (string, string, error) {
	network := "tcp"
	switch {
	case strings.HasPrefix(addr, "ip4:"):
		network, addr = "tcp4", addr[4:]
	case strings.HasPrefix(addr, "ip6:"):
		network, addr = "tcp6", addr[4:]
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return "", "", fmt.Errorf("%w: %q", ErrBadAddress, addr)
	}
	return network, net.JoinHostPort(host, port), nil
}

// Open connects to addr and returns the new handle.
func (t *Transport) Open(addr string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	h := -1
	for i, s := range t.sockets {
		if s == nil {
			h = i
			break
		}
	}
	if h < 0 {
		return 0, ErrTooManySockets
	}

	network, hostport, err := splitAddress(addr)
	if err != nil {
		return 0, err
	}

	conn, err := t.dialer.Dial(network, hostport)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return 0, fmt.Errorf("%w: %s", ErrNotFound, dnsErr.Name)
		}
		return 0, fmt.Errorf("%w: %w", ErrRefused, err)
	}

	t.sockets[h] = &socket{conn: conn, buf: make([]byte, BufferSize)}
	log.Debug("connected", "handle", h, "remote", conn.RemoteAddr())
	return h, nil
}

func (t *Transport) socket(h int) (*socket, error) {
	if h < 0 || h >= MaxSockets || t.sockets[h] == nil {
		return nil, fmt.Errorf("%w: %d", ErrBadHandle, h)
	}
	return t.sockets[h], nil
}

// fill reads whatever is available, waiting at most the retry delay.
func (t *Transport) fill(s *socket) error {
	if err := s.conn.SetReadDeadline(time.Now().Add(t.wait)); err != nil {
		return err
	}
	n, err := s.conn.Read(s.buf)
	s.start, s.end = 0, n

	switch {
	case err == nil || n > 0:
		return nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return nil
	default:
		// io.EOF and resets both end the stream
		s.eof = true
		log.Debug("stream ended", "remote", s.conn.RemoteAddr(), "reason", err)
		return nil
	}
}

// NextByte returns the next byte of handle h, NoData when nothing has
// arrived yet or EndOfStream once the peer has closed the connection.
func (t *Transport) NextByte(h int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.socket(h)
	if err != nil {
		return 0, err
	}
	if s.eof {
		return EndOfStream, nil
	}

	if s.start >= s.end {
		if err := t.fill(s); err != nil {
			return 0, err
		}
		if s.eof {
			return EndOfStream, nil
		}
		if s.start >= s.end {
			return NoData, nil
		}
	}

	b := s.buf[s.start]
	s.start++
	return int(b), nil
}

// PutByte sends one byte.
func (t *Transport) PutByte(h int, b byte) error {
	return t.PutBlock(h, []byte{b})
}

// PutBlock sends data in one write.
func (t *Transport) PutBlock(h int, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.socket(h)
	if err != nil {
		return err
	}
	_, err = s.conn.Write(data)
	return err
}

// EOF reports whether the peer has closed handle h.
func (t *Transport) EOF(h int) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.socket(h)
	if err != nil {
		return false, err
	}
	return s.eof, nil
}

// Close closes handle h and frees it for reuse.
func (t *Transport) Close(h int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	s, err := t.socket(h)
	if err != nil {
		return err
	}
	t.sockets[h] = nil
	return s.conn.Close()
}

// CloseAll closes every open handle.
func (t *Transport) CloseAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for h, s := range t.sockets {
		if s != nil {
			_ = s.conn.Close()
			t.sockets[h] = nil
		}
	}
}
