package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlackServiceNotify(t *testing.T) {
	var mu sync.Mutex
	var path, channel, text string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		mu.Lock()
		path = r.URL.Path
		channel = r.PostForm.Get("channel")
		text = r.PostForm.Get("text")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true,"channel":"C1","ts":"1700000000.000100"}`))
	}))
	defer srv.Close()

	s := NewSlackService("xoxb-test", "C1", srv.URL+"/")
	s.Notify(context.Background(), "Unknown flow: refund")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "/chat.postMessage", path)
	assert.Equal(t, "C1", channel)
	assert.Equal(t, "Unknown flow: refund", text)
}

func TestSlackServiceNotifySwallowsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	s := NewSlackService("xoxb-test", "C404", srv.URL+"/")
	require.NotPanics(t, func() { s.Notify(context.Background(), "hello") })
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeNotifier) Notify(_ context.Context, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakeNotifier) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}
