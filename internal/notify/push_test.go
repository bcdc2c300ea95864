package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Leganyst/salon-core/internal/config"
)

type recordingClient struct {
	mu   sync.Mutex
	sent []string
	fail map[string]bool
	all  bool
}

func (c *recordingClient) Send(_ context.Context, token string, _ Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, token)
	if c.all || c.fail[token] {
		return errors.New("unregistered token")
	}
	return nil
}

func TestGateway_PartialFailure(t *testing.T) {
	log, hook := test.NewNullLogger()
	client := &recordingClient{fail: map[string]bool{"bad-token-1": true}}
	g := NewGateway(client, log)

	res := g.Send(context.Background(), Message{Title: "t"}, []string{"ok-1", "bad-token-1", "ok-1", "ok-2"})

	assert.Equal(t, Result{Attempted: 3, Succeeded: 2}, res)
	assert.True(t, res.Any())
	assert.Equal(t, []string{"ok-1", "bad-token-1", "ok-2"}, client.sent)
	require.Len(t, hook.AllEntries(), 1)
	assert.NotContains(t, hook.LastEntry().Data["token_suffix"], "bad-t")
}

func TestGateway_AllFail(t *testing.T) {
	log, _ := test.NewNullLogger()
	res := NewGateway(&recordingClient{all: true}, log).Send(context.Background(), Message{}, []string{"a", "b"})
	assert.Equal(t, 2, res.Attempted)
	assert.False(t, res.Any())

	res = NewGateway(&recordingClient{}, log).Send(context.Background(), Message{}, nil)
	assert.Equal(t, Result{}, res)
}

func TestFCMClient_Send(t *testing.T) {
	var (
		gotPath string
		gotAuth string
		gotBody fcmRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		if gotBody.Message.Token == "dead" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"status":"NOT_FOUND"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"name":"projects/p/messages/1"}`))
	}))
	defer srv.Close()

	c := NewFCMClient(config.PushConfig{Endpoint: srv.URL + "/", ProjectID: "salon", AccessToken: "secret", Timeout: time.Second})
	msg := Message{Title: "Hi", Body: "There", Data: map[string]string{"appointment_id": "3"}}

	require.NoError(t, c.Send(context.Background(), "tok", msg))
	assert.Equal(t, "/v1/projects/salon/messages:send", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "tok", gotBody.Message.Token)
	assert.Equal(t, "Hi", gotBody.Message.Notification.Title)
	assert.Equal(t, "3", gotBody.Message.Data["appointment_id"])

	err := c.Send(context.Background(), "dead", msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFCMClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewFCMClient(config.PushConfig{Endpoint: srv.URL, ProjectID: "p", Timeout: 50 * time.Millisecond})
	assert.Error(t, c.Send(context.Background(), "tok", Message{}))
}

func TestNoopClient(t *testing.T) {
	log, _ := test.NewNullLogger()
	assert.NoError(t, NewNoopClient(log).Send(context.Background(), "tok", Message{Title: "x"}))
}
