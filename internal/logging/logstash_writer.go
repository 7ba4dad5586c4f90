package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap/zapcore"
)

// LogstashWriter ships zap's JSON lines to a Logstash TCP input over one
// long-lived connection. While Logstash is unreachable entries are counted
// and dropped so request handling never blocks on logging.
type LogstashWriter struct {
	addr          string
	dialTimeout   time.Duration
	writeTimeout  time.Duration
	retryInterval time.Duration
	dial          func(network, addr string, timeout time.Duration) (net.Conn, error)

	mu        sync.Mutex
	conn      net.Conn
	nextRetry time.Time
	closed    bool

	dropped atomic.Uint64
}

type Option func(*LogstashWriter)

// WithDialTimeout overrides the TCP dial timeout. Defaults to 2 seconds.
func WithDialTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.dialTimeout = d
	}
}

// WithWriteTimeout overrides the TCP write timeout. Defaults to 1 second.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.writeTimeout = d
	}
}

// WithRetryInterval sets the cool-down after a failed connect or write.
// Defaults to 5 seconds.
func WithRetryInterval(d time.Duration) Option {
	return func(w *LogstashWriter) {
		w.retryInterval = d
	}
}

func NewLogstashWriter(addr string, opts ...Option) (*LogstashWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}
	w := &LogstashWriter{
		addr:          strings.TrimSpace(addr),
		dialTimeout:   2 * time.Second,
		writeTimeout:  time.Second,
		retryInterval: 5 * time.Second,
		dial:          net.DialTimeout,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Write forwards one encoded entry. It always reports success to zap unless
// the writer was closed; failed entries only bump the drop counter.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	data := make([]byte, len(p), len(p)+1)
	copy(data, p)
	if data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return 0, io.ErrClosedPipe
	}
	if err := w.ensureConnLocked(); err != nil {
		w.dropped.Add(1)
		return len(p), nil
	}
	if w.writeTimeout > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
	}
	if _, err := w.conn.Write(data); err != nil {
		w.dropped.Add(1)
		_ = w.closeConnLocked()
		w.scheduleRetryLocked()
	}
	return len(p), nil
}

// Sync is a no-op: entries are written straight to the socket.
func (w *LogstashWriter) Sync() error {
	return nil
}

// Dropped reports how many entries never reached Logstash.
func (w *LogstashWriter) Dropped() uint64 {
	return w.dropped.Load()
}

func (w *LogstashWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.closeConnLocked()
}

func (w *LogstashWriter) ensureConnLocked() error {
	if w.conn != nil {
		return nil
	}
	if !w.nextRetry.IsZero() && time.Now().Before(w.nextRetry) {
		return errRetryCooldown
	}
	conn, err := w.dial("tcp", w.addr, w.dialTimeout)
	if err != nil {
		w.scheduleRetryLocked()
		return err
	}
	w.conn = conn
	w.nextRetry = time.Time{}
	return nil
}

func (w *LogstashWriter) closeConnLocked() error {
	if w.conn == nil {
		return nil
	}
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *LogstashWriter) scheduleRetryLocked() {
	if w.retryInterval <= 0 {
		w.nextRetry = time.Time{}
		return
	}
	w.nextRetry = time.Now().Add(w.retryInterval)
}

var errRetryCooldown = errors.New("logstash: retry cooldown in effect")

var _ zapcore.WriteSyncer = (*LogstashWriter)(nil)
