package flavor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcraft/mobsim/internal/ai"
	"github.com/otcraft/mobsim/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.FlavorConfig{
		Enabled:   true,
		Endpoint:  srv.URL,
		Model:     "llama3.2",
		Timeout:   5 * time.Second,
		QueueSize: 4,
	})
}

// drainOne polls Drain until the background worker delivers a line.
func drainOne(t *testing.T, c *Client) ai.FlavorLine {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if lines := c.Drain(); len(lines) > 0 {
			return lines[0]
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no flavor line delivered before the deadline")
	return ai.FlavorLine{}
}

func TestClientGeneratesLine(t *testing.T) {
	var gotPrompt string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Prompt
		assert.Equal(t, "llama3.2", req.Model)
		assert.False(t, req.Stream)
		json.NewEncoder(w).Encode(generateResponse{Response: "Your bones will make fine toys."})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	require.True(t, c.Request(42, "a test wolf"))

	line := drainOne(t, c)
	assert.Equal(t, uint32(42), line.ObjectID)
	assert.Equal(t, "Your bones will make fine toys.", line.Text)
	assert.Contains(t, gotPrompt, "a test wolf")
}

func TestClientDropsWhenQueueFull(t *testing.T) {
	// Worker never started, so the request channel just fills up.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 4; i++ {
		assert.True(t, c.Request(uint32(i), "wolf"))
	}
	assert.False(t, c.Request(99, "wolf"), "overflow must be dropped, not blocked on")
}

func TestClientSkipsFailedGeneration(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(generateResponse{Response: "Still here."})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	require.True(t, c.Request(1, "wolf"))
	require.True(t, c.Request(2, "wolf"))

	line := drainOne(t, c)
	assert.Equal(t, uint32(2), line.ObjectID, "failed generation yields no line")
	assert.Equal(t, "Still here.", line.Text)
}

func TestClientRejectsEmptyResponse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: ""})
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Start(ctx)

	require.True(t, c.Request(1, "wolf"))

	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, c.Drain())
}
