package server

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/store"
)

func newTestServer(t *testing.T) (*Server, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "strata.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	funcMap := sprig.HtmlFuncMap()
	funcMap["formatMessage"] = formatMessage
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templatesFS,
		"templates/*.tmpl",
		"templates/pages/*.tmpl",
	)
	require.NoError(t, err)

	return &Server{store: s, pageSize: 10, tmpl: tmpl}, s
}

func seedConversation(t *testing.T, s *store.Store, id, title string) {
	t.Helper()
	now := time.Now().UnixMicro()
	require.NoError(t, s.Save(&store.Conversation{
		ID:                id,
		Title:             &title,
		CreationTimestamp: now,
		UpdateTimestamp:   now,
		Messages: []api.Message{
			{ID: id + "-u1", Role: api.RoleUser, Content: "hello there"},
			{ID: id + "-a1", Role: api.RoleAssistant, Content: "hi, how can I help?"},
		},
	}))
}

func TestInboxListsConversations(t *testing.T) {
	server, s := newTestServer(t)
	seedConversation(t, s, "c1", "First conversation")
	seedConversation(t, s, "c2", "Second conversation")

	recorder := httptest.NewRecorder()
	server.handleInbox(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "First conversation")
	assert.Contains(t, body, "Second conversation")
}

func TestInboxSearch(t *testing.T) {
	server, s := newTestServer(t)
	seedConversation(t, s, "c1", "Kubernetes debugging")
	seedConversation(t, s, "c2", "Cooking pasta")

	recorder := httptest.NewRecorder()
	server.handleInbox(recorder, httptest.NewRequest(http.MethodGet, "/?q=kubernetes", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "Kubernetes debugging")
	assert.NotContains(t, body, "Cooking pasta")
}

func TestConversationPageRendersMessages(t *testing.T) {
	server, s := newTestServer(t)
	seedConversation(t, s, "c1", "First conversation")

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/conversation/c1", nil)
	server.handleConversationRoutes(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	body := recorder.Body.String()
	assert.Contains(t, body, "hello there")
	assert.Contains(t, body, "hi, how can I help?")
}

func TestTagLifecycle(t *testing.T) {
	server, s := newTestServer(t)
	seedConversation(t, s, "c1", "First conversation")

	// Add a tag.
	form := strings.NewReader("tag=infra")
	request := httptest.NewRequest(http.MethodPost, "/conversation/c1/tags", form)
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	server.handleConversationRoutes(recorder, request)
	require.Equal(t, http.StatusSeeOther, recorder.Code)

	conversation, err := s.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, []string{"infra"}, conversation.Tags)

	// Remove it.
	request = httptest.NewRequest(http.MethodDelete, "/conversation/c1/tags/infra", nil)
	recorder = httptest.NewRecorder()
	server.handleConversationRoutes(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	conversation, err = s.Get("c1")
	require.NoError(t, err)
	assert.Empty(t, conversation.Tags)
}

func TestTogglePin(t *testing.T) {
	server, s := newTestServer(t)
	seedConversation(t, s, "c1", "First conversation")

	request := httptest.NewRequest(http.MethodPost, "/conversation/c1/pin", nil)
	recorder := httptest.NewRecorder()
	server.handleConversationRoutes(recorder, request)
	require.Equal(t, http.StatusSeeOther, recorder.Code)

	conversation, err := s.Get("c1")
	require.NoError(t, err)
	assert.True(t, conversation.Pinned)
}

func TestDeleteConversation(t *testing.T) {
	server, s := newTestServer(t)
	seedConversation(t, s, "c1", "First conversation")

	request := httptest.NewRequest(http.MethodDelete, "/conversation/c1", nil)
	request.Header.Set("X-Requested-With", "XMLHttpRequest")
	recorder := httptest.NewRecorder()
	server.handleConversationRoutes(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	_, err := s.Get("c1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFormatMessageEscapesCode(t *testing.T) {
	rendered := string(formatMessage("```go\nfmt.Println(\"<b>\")\n```"))
	assert.Contains(t, rendered, `<code class="language-go">`)
	assert.Contains(t, rendered, "&lt;b&gt;")
}
