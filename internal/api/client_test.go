package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataai/strata/internal/configuration"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(&configuration.Config{
		ServerURL:      server.URL,
		Token:          "test-token",
		RequestTimeout: 5,
	})
	return client, server
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"conversations":[],"total":0,"page":1,"per_page":20}`))
	}))

	_, err := client.ListConversations(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, want: ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, want: ErrForbidden},
		{name: "not found", status: http.StatusNotFound, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"error":{"code":"denied","message":"nope"}}`))
			}))

			_, err := client.GetConversation(context.Background(), "c1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), "nope")
		})
	}
}

func TestClientUntypedError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"conflict","message":"already exists"}}`))
	}))

	_, err := client.CreateConversation(context.Background(), &CreateConversationRequest{Title: "x"})
	require.Error(t, err)
	apiErr := &Error{}
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "conflict", apiErr.Code)
	assert.Equal(t, "already exists", apiErr.Message)
}

func TestClientRetriesIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id":"c1","title":"hello"}`))
	}))

	conversation, err := client.GetConversation(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "hello", conversation.Title)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientDoesNotRetryMutations(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"code":"internal","message":"boom"}}`))
	}))

	_, err := client.CreateConversation(context.Background(), &CreateConversationRequest{Title: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestPaginationQuery(t *testing.T) {
	var gotQuery string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(`{"instances":[],"total":0,"page":3,"per_page":50}`))
	}))

	_, err := client.ListRAGInstances(context.Background(), 3, 50)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "page=3")
	assert.Contains(t, gotQuery, "per_page=50")
}

func TestBranchEndpoints(t *testing.T) {
	var gotPath, gotMethod string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Write([]byte(`[]`))
	}))

	_, err := client.Branches(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "/api/messages/m1/branches", gotPath)
	assert.Equal(t, http.MethodGet, gotMethod)

	require.NoError(t, client.SwitchBranch(context.Background(), "m1"))
	assert.Equal(t, "/api/messages/m1/switch", gotPath)
	assert.Equal(t, http.MethodPost, gotMethod)
}

func TestUploadRAGFiles(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.txt", files[0].Filename)
		assert.Equal(t, "b.md", files[1].Filename)
		w.Write([]byte(`[{"id":"f1","filename":"a.txt","processing_status":"pending"},{"id":"f2","filename":"b.md","processing_status":"pending"}]`))
	}))

	uploaded, err := client.UploadRAGFiles(context.Background(), "r1", []UploadFile{
		{Name: "a.txt", Reader: strings.NewReader("alpha")},
		{Name: "b.md", Reader: strings.NewReader("# beta")},
	})
	require.NoError(t, err)
	require.Len(t, uploaded, 2)
	assert.Equal(t, FileStatusPending, uploaded[0].ProcessingStatus)
}
