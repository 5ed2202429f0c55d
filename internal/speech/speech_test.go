package speech

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/nguyentantai21042004/call-companion/internal/config"
	"github.com/nguyentantai21042004/call-companion/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	results []ResultEvent
	errs    []error
	ended   chan struct{}
	once    sync.Once
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{ended: make(chan struct{})}
}

func (h *recordingHandler) OnResult(ev ResultEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append(h.results, ev)
}

func (h *recordingHandler) OnError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingHandler) OnEnd() {
	h.once.Do(func() { close(h.ended) })
}

func (h *recordingHandler) waitEnd(t *testing.T) {
	t.Helper()
	select {
	case <-h.ended:
	case <-time.After(2 * time.Second):
		t.Fatal("OnEnd was not called")
	}
}

// startMockDaemon accepts one connection, checks the start command, acknowledges it
// with ack and then writes events.
func startMockDaemon(t *testing.T, ack Response, events []string, gotCmd chan<- Command) string {
	t.Helper()

	sockPath := filepath.Join(t.TempDir(), "speechd.sock")
	ln, err := net.Listen("unix", sockPath)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		reader := bufio.NewReader(conn)
		line, err := reader.ReadBytes('\n')
		if err != nil {
			return
		}
		var cmd Command
		_ = json.Unmarshal(line, &cmd)
		if gotCmd != nil {
			gotCmd <- cmd
		}

		data, _ := json.Marshal(ack)
		conn.Write(append(data, '\n'))

		for _, ev := range events {
			conn.Write([]byte(ev + "\n"))
		}
	}()

	return sockPath
}

func TestDaemonEngineStreamsResults(t *testing.T) {
	gotCmd := make(chan Command, 1)
	sock := startMockDaemon(t, Response{OK: true}, []string{
		`{"event":"partial","text":"hel"}`,
		`not json`,
		`{"event":"segment","text":"hello"}`,
		`{"event":"results","resultIndex":1,"results":[{"transcript":"a","isFinal":true},{"transcript":"b"}]}`,
		`{"event":"level","text":"ignored"}`,
		`{"event":"end"}`,
	}, gotCmd)

	engine := NewDaemonEngine(sock, "en-US", time.Second, logger.NewNop())
	h := newRecordingHandler()
	require.NoError(t, engine.Start(context.Background(), h))

	cmd := <-gotCmd
	assert.Equal(t, Command{Cmd: "start", Locale: "en-US", Continuous: true, InterimResults: true}, cmd)

	h.waitEnd(t)
	h.mu.Lock()
	defer h.mu.Unlock()
	require.Len(t, h.results, 3)
	assert.Equal(t, ResultEvent{Results: []Result{{Transcript: "hel"}}}, h.results[0])
	assert.Equal(t, ResultEvent{Results: []Result{{Transcript: "hello", IsFinal: true}}}, h.results[1])
	assert.Equal(t, 1, h.results[2].ResultIndex)
	assert.Len(t, h.results[2].Results, 2)
	assert.Empty(t, h.errs)
}

func TestDaemonEngineEOFIsEnd(t *testing.T) {
	sock := startMockDaemon(t, Response{OK: true}, nil, nil)

	engine := NewDaemonEngine(sock, "en-US", time.Second, logger.NewNop())
	h := newRecordingHandler()
	require.NoError(t, engine.Start(context.Background(), h))

	h.waitEnd(t)
	assert.Empty(t, h.errs, "a clean close is an end of session, not an error")

	// The session is released, so the engine can be started again.
	sock2 := startMockDaemon(t, Response{OK: true}, nil, nil)
	engine2 := NewDaemonEngine(sock2, "en-US", time.Second, logger.NewNop())
	require.NoError(t, engine2.Start(context.Background(), newRecordingHandler()))
	require.NoError(t, engine2.Stop())
}

func TestDaemonEngineErrorEvent(t *testing.T) {
	sock := startMockDaemon(t, Response{OK: true}, []string{`{"event":"error","message":"microphone unavailable"}`}, nil)

	engine := NewDaemonEngine(sock, "en-US", time.Second, logger.NewNop())
	h := newRecordingHandler()
	require.NoError(t, engine.Start(context.Background(), h))
	h.waitEnd(t)

	h.mu.Lock()
	defer h.mu.Unlock()
	require.NotEmpty(t, h.errs)
	assert.EqualError(t, h.errs[0], "microphone unavailable")
}

func TestDaemonEngineRefusedStart(t *testing.T) {
	sock := startMockDaemon(t, Response{OK: false, Error: "busy"}, nil, nil)

	err := NewDaemonEngine(sock, "en-US", time.Second, logger.NewNop()).Start(context.Background(), newRecordingHandler())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "busy")
}

func TestDaemonEngineDialFailure(t *testing.T) {
	engine := NewDaemonEngine(filepath.Join(t.TempDir(), "none.sock"), "en-US", 100*time.Millisecond, logger.NewNop())
	assert.Error(t, engine.Start(context.Background(), newRecordingHandler()))
}

func TestStopIsQuietAndIdempotent(t *testing.T) {
	sock := startMockDaemon(t, Response{OK: true}, nil, nil)
	engine := NewDaemonEngine(sock, "en-US", time.Second, logger.NewNop())

	// the mock daemon keeps the connection open until it has written everything
	h := newRecordingHandler()
	require.NoError(t, engine.Start(context.Background(), h))
	require.NoError(t, engine.Stop())
	require.NoError(t, engine.Stop())

	h.waitEnd(t)
	h.mu.Lock()
	defer h.mu.Unlock()
	assert.Empty(t, h.errs)
}

var upgrader = websocket.Upgrader{}

func TestWebsocketEngine(t *testing.T) {
	gotCmd := make(chan Command, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			return
		}
		gotCmd <- cmd
		_ = conn.WriteJSON(Response{OK: true})
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"partial","text":"good"}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"event":"segment","text":"good morning"}`))

		// wait for the stop command
		if err := conn.ReadJSON(&cmd); err == nil {
			gotCmd <- cmd
		}
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	engine := NewWebsocketEngine(url, "en-GB", time.Second, logger.NewNop())
	h := newRecordingHandler()
	require.NoError(t, engine.Start(context.Background(), h))

	assert.Equal(t, "en-GB", (<-gotCmd).Locale)
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		return len(h.results) == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, engine.Stop())
	assert.Equal(t, "stop", (<-gotCmd).Cmd)
	h.waitEnd(t)
}

func TestDetect(t *testing.T) {
	sock := startMockDaemon(t, Response{OK: true}, nil, nil)
	log := logger.NewNop()

	tests := []struct {
		name      string
		cfg       config.SpeechConfig
		supported bool
	}{
		{"disabled", config.SpeechConfig{Backend: config.BackendNone}, false},
		{"daemon socket present", config.SpeechConfig{Backend: config.BackendDaemon, SocketPath: sock}, true},
		{"daemon socket missing", config.SpeechConfig{Backend: config.BackendDaemon, SocketPath: filepath.Join(t.TempDir(), "x.sock")}, false},
		{"daemon path is a regular file", config.SpeechConfig{Backend: config.BackendDaemon, SocketPath: "speech_test.go"}, false},
		{"websocket url", config.SpeechConfig{Backend: config.BackendWebsocket, URL: "wss://stt.example.com/v1/listen"}, true},
		{"websocket http url", config.SpeechConfig{Backend: config.BackendWebsocket, URL: "https://stt.example.com"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Detect(tt.cfg, log)
			switch v := c.(type) {
			case Supported:
				assert.True(t, tt.supported, "unexpected Supported")
				assert.NotNil(t, v.Engine)
			case Unsupported:
				assert.False(t, tt.supported, "unexpected Unsupported: %s", v.Reason)
				assert.NotEmpty(t, v.Reason)
			default:
				t.Fatalf("unknown capability %T", c)
			}
		})
	}
}
