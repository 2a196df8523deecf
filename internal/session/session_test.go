package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/configuration"
)

func newTestContainer(t *testing.T, handler http.Handler) (*Container, *api.Client) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(&configuration.Config{
		ServerURL:      server.URL,
		Token:          "test-token",
		RequestTimeout: 5,
	})
	conversation := &api.Conversation{ID: "c1", Title: "untitled"}
	return New(client, conversation), client
}

func writeJSON(w http.ResponseWriter, v any) {
	json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	w.(http.Flusher).Flush()
}

func TestLoadPreservesServerOrder(t *testing.T) {
	serverMessages := []api.Message{
		{ID: "m3", Role: api.RoleUser, Content: "third", IsActiveBranch: true},
		{ID: "m1", Role: api.RoleAssistant, Content: "first", IsActiveBranch: true},
		{ID: "m2", Role: api.RoleUser, Content: "second", IsActiveBranch: true},
	}
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, serverMessages)
	}))

	require.NoError(t, container.Load(context.Background()))

	got := container.Messages()
	require.Len(t, got, 3)
	// Whatever order the server sends is the order we keep.
	assert.Equal(t, "m3", got[0].ID)
	assert.Equal(t, "m1", got[1].ID)
	assert.Equal(t, "m2", got[2].ID)
}

func TestStaleLoadDiscarded(t *testing.T) {
	var calls atomic.Int32
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-releaseFirst
			writeJSON(w, []api.Message{{ID: "stale"}})
			return
		}
		writeJSON(w, []api.Message{{ID: "fresh"}})
	}))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		container.Load(context.Background())
	}()

	<-firstStarted
	require.NoError(t, container.Load(context.Background()))
	close(releaseFirst)
	wg.Wait()

	got := container.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "fresh", got[0].ID)
}

func TestSendWhitespaceIsNoop(t *testing.T) {
	var calls atomic.Int32
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	for _, content := range []string{"", "   ", "\n\t  \n"} {
		require.NoError(t, container.Send(context.Background(), content, nil))
	}
	assert.Zero(t, calls.Load())
	assert.Empty(t, container.Messages())
}

func TestSendFailureRestoresThread(t *testing.T) {
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, []api.Message{{ID: "m1", Role: api.RoleUser, Content: "hello"}})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"internal","message":"boom"}}`))
	}))

	require.NoError(t, container.Load(context.Background()))
	before := container.Messages()

	err := container.Send(context.Background(), "this will fail", nil)
	require.Error(t, err)

	assert.Equal(t, before, container.Messages())
}

func TestSendErrorEventBeforeAckRollsBack(t *testing.T) {
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "connected", "{}")
		writeSSE(w, "error", `{"error":"model unavailable","code":"upstream"}`)
	}))

	err := container.Send(context.Background(), "hello", nil)
	require.Error(t, err)
	assert.Empty(t, container.Messages())
}

func TestSendStreamsAssistantResponse(t *testing.T) {
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "connected", "{}")
		writeSSE(w, "new_user_message", `{"id":"u1","role":"user","content":"hello","is_active_branch":true}`)
		writeSSE(w, "new_assistant_message", `{"id":"a1","role":"assistant","content":"","is_active_branch":true}`)
		writeSSE(w, "message_content_chunk", `{"delta":"hi "}`)
		writeSSE(w, "message_content_chunk", `{"delta":"there"}`)
		writeSSE(w, "title_updated", `{"title":"Greetings"}`)
		writeSSE(w, "complete", "{}")
	}))

	var deltas []string
	err := container.Send(context.Background(), "hello", func(event *api.ChatEvent) {
		if event.Type == api.ChatEventContentChunk {
			deltas = append(deltas, event.Delta)
		}
	})
	require.NoError(t, err)

	got := container.Messages()
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].ID)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, "a1", got[1].ID)
	assert.Equal(t, "hi there", got[1].Content)
	assert.Equal(t, []string{"hi ", "there"}, deltas)
	assert.Equal(t, "Greetings", container.Conversation().Title)
}

func TestSendOptimisticPlaceholdersVisibleDuringStream(t *testing.T) {
	holdStream := make(chan struct{})
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "connected", "{}")
		<-holdStream
		writeSSE(w, "complete", "{}")
	}))

	done := make(chan error, 1)
	go func() {
		done <- container.Send(context.Background(), "hello", nil)
	}()

	// The optimistic pair should appear before the server answers.
	require.Eventually(t, func() bool {
		return len(container.Messages()) == 2
	}, time.Second, 5*time.Millisecond)

	got := container.Messages()
	assert.Equal(t, api.RoleUser, got[0].Role)
	assert.Equal(t, "hello", got[0].Content)
	assert.Equal(t, api.RoleAssistant, got[1].Role)
	assert.Empty(t, got[1].Content)

	close(holdStream)
	require.NoError(t, <-done)
}

func TestEditRejectsNonUserMessages(t *testing.T) {
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []api.Message{
			{ID: "u1", Role: api.RoleUser, Content: "question"},
			{ID: "a1", Role: api.RoleAssistant, Content: "answer"},
		})
	}))
	require.NoError(t, container.Load(context.Background()))

	err := container.Edit(context.Background(), "a1", "rewrite", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only user messages")

	err = container.Edit(context.Background(), "missing", "rewrite", nil)
	require.Error(t, err)
}

func TestEditWhitespaceIsNoop(t *testing.T) {
	var calls atomic.Int32
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))

	require.NoError(t, container.Edit(context.Background(), "u1", "   \n", nil))
	assert.Zero(t, calls.Load())
}

func TestEditStreamsRegeneratedResponse(t *testing.T) {
	container, _ := newTestContainer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeJSON(w, []api.Message{{ID: "u1", Role: api.RoleUser, Content: "question", IsActiveBranch: true}})
			return
		}
		require.Equal(t, "/api/messages/u1/edit", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		writeSSE(w, "edited_message", `{"id":"u2","role":"user","content":"better question","branch_id":"b2","is_active_branch":true,"originated_from_id":"u1","edit_count":1}`)
		writeSSE(w, "new_assistant_message", `{"id":"a2","role":"assistant","content":"","is_active_branch":true}`)
		writeSSE(w, "message_content_chunk", `{"delta":"better answer"}`)
		writeSSE(w, "complete", "{}")
	}))
	require.NoError(t, container.Load(context.Background()))

	var types []string
	err := container.Edit(context.Background(), "u1", "better question", func(event *api.ChatEvent) {
		types = append(types, event.Type)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		api.ChatEventEditedMessage,
		api.ChatEventNewAssistantMessage,
		api.ChatEventContentChunk,
		api.ChatEventComplete,
	}, types)
}
