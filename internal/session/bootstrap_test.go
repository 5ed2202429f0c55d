package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestInitialStateIsLoading(t *testing.T) {
	b := New("http://127.0.0.1:0", Options{})
	assert.Equal(t, Loading, b.State().Status)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantStatus  Status
		wantRoomURL string
		wantMessage string
	}{
		{
			name:        "ready",
			status:      http.StatusOK,
			body:        `{"roomUrl":"https://x"}`,
			wantStatus:  Ready,
			wantRoomURL: "https://x",
		},
		{
			name:        "extra fields are ignored",
			status:      http.StatusOK,
			body:        `{"roomUrl":"https://room.example.com/abc","expires":3600}`,
			wantStatus:  Ready,
			wantRoomURL: "https://room.example.com/abc",
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        `oops`,
			wantStatus:  Failed,
			wantMessage: "Could not initialize video session: Failed to fetch session data. Status: 500",
		},
		{
			name:        "missing roomUrl",
			status:      http.StatusOK,
			body:        `{}`,
			wantStatus:  Failed,
			wantMessage: "Could not initialize video session: Invalid data format received from the server.",
		},
		{
			name:        "roomUrl not a string",
			status:      http.StatusOK,
			body:        `{"roomUrl":42}`,
			wantStatus:  Failed,
			wantMessage: "Could not initialize video session: Invalid data format received from the server.",
		},
		{
			name:        "empty roomUrl",
			status:      http.StatusOK,
			body:        `{"roomUrl":""}`,
			wantStatus:  Failed,
			wantMessage: "Could not initialize video session: Invalid data format received from the server.",
		},
		{
			name:        "null body",
			status:      http.StatusOK,
			body:        `null`,
			wantStatus:  Failed,
			wantMessage: "Could not initialize video session: Invalid data format received from the server.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := serve(t, tt.status, tt.body)
			st := New(srv.URL, Options{}).Run(context.Background())

			assert.Equal(t, tt.wantStatus, st.Status)
			assert.Equal(t, tt.wantRoomURL, st.RoomURL)
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, st.Message)
			}
		})
	}
}

func TestRunMalformedJSON(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, `{"roomUrl":`)
	st := New(srv.URL, Options{}).Run(context.Background())

	assert.Equal(t, Failed, st.Status)
	assert.Contains(t, st.Message, "Could not initialize video session: ")
	assert.NotContains(t, st.Message, "Invalid data format")
}

func TestRunNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	st := New(url, Options{Timeout: time.Second}).Run(context.Background())
	assert.Equal(t, Failed, st.Status)
	assert.Contains(t, st.Message, "Could not initialize video session: ")
	require.Error(t, st.Err)
}

func TestRunOnlyOnce(t *testing.T) {
	srv, hits := serve(t, http.StatusOK, `{"roomUrl":"https://x"}`)
	m := metrics.New(prometheus.NewRegistry())
	b := New(srv.URL, Options{Metrics: m})

	first := b.Run(context.Background())
	second := b.Run(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), hits.Load())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.SessionBootstrapTotal.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, unknownFailure, FailureMessage(errors.New("")))
	assert.Equal(t, "Could not initialize video session: dial tcp: refused", FailureMessage(errors.New("dial tcp: refused")))
}
