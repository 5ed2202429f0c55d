package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
)

// NewWebsocketEngine returns an Engine speaking the recognition protocol as JSON text frames.
func NewWebsocketEngine(url, locale string, dialTimeout time.Duration, log logger.Logger) Engine {
	dialer := &websocket.Dialer{HandshakeTimeout: dialTimeout}
	return &streamEngine{
		name:   "recognition websocket",
		locale: locale,
		logger: log,
		dial: func(ctx context.Context) (transport, error) {
			conn, _, err := dialer.DialContext(ctx, url, nil)
			if err != nil {
				return nil, fmt.Errorf("dial %s: %w", url, err)
			}
			return &wsTransport{conn: conn}, nil
		},
	}
}

type wsTransport struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	closeOnce sync.Once
}

func (t *wsTransport) Send(v interface{}) error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.WriteJSON(v)
}

func (t *wsTransport) Receive() ([]byte, error) {
	_, data, err := t.conn.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) && closeErr.Code == websocket.CloseNormalClosure {
			return nil, io.EOF
		}
		return nil, err
	}
	return data, nil
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.writeMu.Lock()
		_ = t.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		t.writeMu.Unlock()
		err = t.conn.Close()
	})
	return err
}
