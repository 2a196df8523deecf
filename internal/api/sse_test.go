package api

import (
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseHandler(frames []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frame := range frames {
			io.WriteString(w, frame)
			flusher.Flush()
		}
	}
}

func TestStreamParsesEvents(t *testing.T) {
	client, _ := newTestClient(t, sseHandler([]string{
		": keepalive\n\n",
		"event: connected\ndata: {}\n\n",
		"event: message_content_chunk\ndata: {\"delta\":\"hel\"}\n\n",
		"event: message_content_chunk\ndata: {\"delta\":\"lo\"}\n\n",
		"event: complete\ndata: {}\n\n",
	}))

	stream, err := client.stream(context.Background(), http.MethodGet, "/api/test", nil)
	require.NoError(t, err)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "connected", event.Name)

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "message_content_chunk", event.Name)
	assert.JSONEq(t, `{"delta":"hel"}`, string(event.Data))

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.JSONEq(t, `{"delta":"lo"}`, string(event.Data))

	event, err = stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "complete", event.Name)

	_, err = stream.Recv()
	assert.ErrorIs(t, err, io.EOF)
}

func TestStreamMultilineData(t *testing.T) {
	client, _ := newTestClient(t, sseHandler([]string{
		"event: update\ndata: line one\ndata: line two\n\n",
	}))

	stream, err := client.stream(context.Background(), http.MethodGet, "/api/test", nil)
	require.NoError(t, err)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", string(event.Data))
}

func TestStreamErrorStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":"denied","message":"no access"}}`))
	}))

	_, err := client.stream(context.Background(), http.MethodGet, "/api/test", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestStreamCloseUnblocksRecv(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		// Hold the connection open until the client goes away.
		<-r.Context().Done()
	}))

	stream, err := client.stream(context.Background(), http.MethodGet, "/api/test", nil)
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() {
		_, err := stream.Recv()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, stream.Close())

	select {
	case err := <-errCh:
		require.Error(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Recv did not unblock after Close")
	}
}

func TestChatStreamDecodesEvents(t *testing.T) {
	client, _ := newTestClient(t, sseHandler([]string{
		"event: connected\ndata: {}\n\n",
		"event: new_user_message\ndata: {\"id\":\"m1\",\"role\":\"user\",\"content\":\"hi\",\"is_active_branch\":true}\n\n",
		"event: new_assistant_message\ndata: {\"id\":\"m2\",\"role\":\"assistant\",\"content\":\"\",\"is_active_branch\":true}\n\n",
		"event: message_content_chunk\ndata: {\"delta\":\"hey\"}\n\n",
		"event: title_updated\ndata: {\"title\":\"Greetings\"}\n\n",
		"event: complete\ndata: {}\n\n",
	}))

	stream, err := client.SendMessage(context.Background(), "c1", "hi")
	require.NoError(t, err)
	defer stream.Close()

	var types []string
	var delta, title string
	var userMessage *Message
	for {
		event, err := stream.Recv()
		if err != nil {
			break
		}
		types = append(types, event.Type)
		switch event.Type {
		case ChatEventNewUserMessage:
			userMessage = event.Message
		case ChatEventContentChunk:
			delta += event.Delta
		case ChatEventTitleUpdated:
			title = event.Title
		}
		if event.Type == ChatEventComplete {
			break
		}
	}

	assert.Equal(t, []string{
		ChatEventConnected,
		ChatEventNewUserMessage,
		ChatEventNewAssistantMessage,
		ChatEventContentChunk,
		ChatEventTitleUpdated,
		ChatEventComplete,
	}, types)
	require.NotNil(t, userMessage)
	assert.Equal(t, "m1", userMessage.ID)
	assert.Equal(t, "hey", delta)
	assert.Equal(t, "Greetings", title)
}

func TestChatStreamErrorEvent(t *testing.T) {
	client, _ := newTestClient(t, sseHandler([]string{
		"event: error\ndata: {\"error\":\"model unavailable\",\"code\":\"upstream\"}\n\n",
	}))

	stream, err := client.SendMessage(context.Background(), "c1", "hi")
	require.NoError(t, err)
	defer stream.Close()

	event, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, ChatEventError, event.Type)
	require.Error(t, event.Err)
	assert.Contains(t, event.Err.Error(), "model unavailable")
}

func TestRAGStatusStreamSkipsUnknownFrames(t *testing.T) {
	client, _ := newTestClient(t, sseHandler([]string{
		"event: hello\ndata: {}\n\n",
		"event: update\ndata: {\"instance_id\":\"r1\",\"total_files\":3,\"processed_files\":1,\"processing_files\":2}\n\n",
	}))

	stream, err := client.StreamRAGStatus(context.Background(), "r1")
	require.NoError(t, err)
	defer stream.Close()

	status, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "r1", status.InstanceID)
	assert.Equal(t, 3, status.TotalFiles)
	assert.Equal(t, 1, status.ProcessedFiles)
}
