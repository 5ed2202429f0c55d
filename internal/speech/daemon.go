package speech

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/logger"
)

// NewDaemonEngine returns an Engine talking NDJSON to a recognition daemon on a unix socket.
func NewDaemonEngine(socketPath, locale string, dialTimeout time.Duration, log logger.Logger) Engine {
	return &streamEngine{
		name:   "recognition daemon",
		locale: locale,
		logger: log,
		dial: func(ctx context.Context) (transport, error) {
			return dialDaemon(ctx, socketPath, dialTimeout)
		},
	}
}

type daemonTransport struct {
	conn      net.Conn
	scanner   *bufio.Scanner
	mu        sync.Mutex
	closeOnce sync.Once
}

func dialDaemon(ctx context.Context, socketPath string, timeout time.Duration) (*daemonTransport, error) {
	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", socketPath, err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024) // 1MB buffer

	return &daemonTransport{conn: conn, scanner: scanner}, nil
}

func (t *daemonTransport) Send(v interface{}) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}

	data = append(data, '\n')
	if _, err := t.conn.Write(data); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

// Receive reads the next NDJSON line. Blocks until data arrives.
func (t *daemonTransport) Receive() ([]byte, error) {
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return append([]byte(nil), t.scanner.Bytes()...), nil
}

func (t *daemonTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		err = t.conn.Close()
	})
	return err
}
