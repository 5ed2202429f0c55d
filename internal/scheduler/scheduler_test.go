package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nguyentantai21042004/call-companion/internal/capture"
	"github.com/nguyentantai21042004/call-companion/internal/insight"
	"github.com/nguyentantai21042004/call-companion/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	results []*insight.Insights // consumed one per call; last one repeats
	gates   []chan struct{}     // optional per-call gate
}

func (f *fakeClient) Mode() string { return "fake" }

func (f *fakeClient) RequestInsights(ctx context.Context, transcript string) *insight.Insights {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, transcript)
	var gate chan struct{}
	if n < len(f.gates) {
		gate = f.gates[n]
	}
	var result *insight.Insights
	if len(f.results) > 0 {
		if n < len(f.results) {
			result = f.results[n]
		} else {
			result = f.results[len(f.results)-1]
		}
	}
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	return result
}

func (f *fakeClient) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeClient) call(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func entries(texts ...string) []capture.TranscriptEntry {
	out := make([]capture.TranscriptEntry, 0, len(texts))
	for i, text := range texts {
		out = append(out, capture.TranscriptEntry{ID: int64(i + 1), Speaker: "Me", Text: text, Timestamp: "10:00"})
	}
	return out
}

func summary(s string) *insight.Insights {
	return &insight.Insights{Summary: s, ActionItems: []string{}, TalkingPoints: []string{}}
}

func TestFlatten(t *testing.T) {
	transcript := []capture.TranscriptEntry{
		{Speaker: "Me", Text: "hello"},
		{Speaker: "Sam", Text: "hi there"},
	}
	assert.Equal(t, "Me: hello\nSam: hi there", Flatten(transcript))
	assert.Equal(t, "", Flatten(nil))
}

func TestBurstCollapsesIntoOneRequest(t *testing.T) {
	client := &fakeClient{results: []*insight.Insights{summary("one")}}
	s := New(client, Options{QuietInterval: 50 * time.Millisecond})
	defer s.Close()

	var transcript []capture.TranscriptEntry
	for _, text := range []string{"a", "b", "c", "d"} {
		transcript = append(transcript, entries(text)...)
		s.TranscriptGrew(transcript)
		time.Sleep(10 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, client.callCount())
	assert.Equal(t, "Me: a\nMe: b\nMe: c\nMe: d", client.call(0))

	require.Eventually(t, func() bool { return s.State().Insights != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "one", s.State().Insights.Summary)
}

func TestEmptyTranscriptNeverRequests(t *testing.T) {
	client := &fakeClient{}
	s := New(client, Options{QuietInterval: 10 * time.Millisecond})
	defer s.Close()

	s.TranscriptGrew(nil)
	s.RefreshNow(context.Background(), nil)

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, client.callCount())
}

func TestGeneratingFlagBracketsRequest(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{results: []*insight.Insights{summary("done")}, gates: []chan struct{}{gate}}

	var mu sync.Mutex
	var seen []State
	s := New(client, Options{
		QuietInterval: 10 * time.Millisecond,
		OnChange: func(st State) {
			mu.Lock()
			seen = append(seen, st)
			mu.Unlock()
		},
	})
	defer s.Close()

	s.TranscriptGrew(entries("hello"))
	require.Eventually(t, func() bool { return s.State().Generating }, time.Second, 5*time.Millisecond)
	assert.Nil(t, s.State().Insights)

	close(gate)
	require.Eventually(t, func() bool { return !s.State().Generating }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "done", s.State().Insights.Summary)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Generating)
	assert.False(t, seen[1].Generating)
}

func TestFailedRefreshKeepsPreviousInsights(t *testing.T) {
	client := &fakeClient{results: []*insight.Insights{summary("first"), nil}}
	s := New(client, Options{})
	defer s.Close()

	s.RefreshNow(context.Background(), entries("a"))
	require.NotNil(t, s.State().Insights)

	s.RefreshNow(context.Background(), entries("a", "b"))
	st := s.State()
	assert.False(t, st.Generating)
	require.NotNil(t, st.Insights)
	assert.Equal(t, "first", st.Insights.Summary)
}

func TestResetDropsInsightsAndStaleResponses(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{results: []*insight.Insights{summary("old session")}, gates: []chan struct{}{gate}}
	m := metrics.New(prometheus.NewRegistry())
	s := New(client, Options{Metrics: m})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.RefreshNow(context.Background(), entries("before reset"))
		close(done)
	}()
	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, 5*time.Millisecond)

	s.Reset()
	close(gate)
	<-done

	st := s.State()
	assert.Nil(t, st.Insights)
	assert.False(t, st.Generating)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StaleResponsesTotal))
}

func TestResetCancelsPendingRequest(t *testing.T) {
	client := &fakeClient{results: []*insight.Insights{summary("x")}}
	s := New(client, Options{QuietInterval: 30 * time.Millisecond})
	defer s.Close()

	s.TranscriptGrew(entries("a"))
	s.Reset()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, client.callCount())
}

func TestOverlappingRequestsKeepNewest(t *testing.T) {
	slow := make(chan struct{})
	client := &fakeClient{
		results: []*insight.Insights{summary("older"), summary("newer")},
		gates:   []chan struct{}{slow},
	}
	s := New(client, Options{})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.RefreshNow(context.Background(), entries("a"))
		close(done)
	}()
	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, 5*time.Millisecond)

	s.RefreshNow(context.Background(), entries("a", "b"))
	assert.True(t, s.State().Generating, "older request still outstanding")

	close(slow)
	<-done

	st := s.State()
	assert.False(t, st.Generating)
	assert.Equal(t, "newer", st.Insights.Summary)
}

func TestOlderSuccessSurvivesNewerFailure(t *testing.T) {
	slow := make(chan struct{})
	client := &fakeClient{
		results: []*insight.Insights{summary("older ok"), nil},
		gates:   []chan struct{}{slow},
	}
	s := New(client, Options{})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.RefreshNow(context.Background(), entries("a"))
		close(done)
	}()
	require.Eventually(t, func() bool { return client.callCount() == 1 }, time.Second, 5*time.Millisecond)

	s.RefreshNow(context.Background(), entries("a", "b"))
	assert.Nil(t, s.State().Insights)

	close(slow)
	<-done

	st := s.State()
	assert.False(t, st.Generating)
	require.NotNil(t, st.Insights)
	assert.Equal(t, "older ok", st.Insights.Summary)
}

func TestResetClearsGeneratingOfPreviousSession(t *testing.T) {
	gate := make(chan struct{})
	client := &fakeClient{results: []*insight.Insights{summary("old"), summary("new")}, gates: []chan struct{}{gate}}
	s := New(client, Options{})
	defer s.Close()

	done := make(chan struct{})
	go func() {
		s.RefreshNow(context.Background(), entries("before reset"))
		close(done)
	}()
	require.Eventually(t, func() bool { return s.State().Generating }, time.Second, 5*time.Millisecond)

	s.Reset()
	st := s.State()
	assert.False(t, st.Generating, "a new session has no request in flight")
	assert.Nil(t, st.Insights)

	s.RefreshNow(context.Background(), entries("after reset"))
	require.NotNil(t, s.State().Insights)
	assert.Equal(t, "new", s.State().Insights.Summary)

	close(gate)
	<-done

	st = s.State()
	assert.False(t, st.Generating, "settling an old request must not touch the new session")
	assert.Equal(t, "new", st.Insights.Summary)
}
