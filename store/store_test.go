package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataai/strata/internal/api"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testConversation(id, title string, contents ...string) *Conversation {
	messages := make([]api.Message, len(contents))
	for i, content := range contents {
		role := api.RoleUser
		if i%2 == 1 {
			role = api.RoleAssistant
		}
		messages[i] = api.Message{ID: id + "-m" + string(rune('a'+i)), Role: role, Content: content, IsActiveBranch: true}
	}
	now := time.Now().UnixMicro()
	return &Conversation{
		ID:                id,
		Title:             &title,
		CreationTimestamp: now,
		UpdateTimestamp:   now,
		Messages:          messages,
	}
}

func TestSaveAndGet(t *testing.T) {
	s := newTestStore(t)

	conversation := testConversation("c1", "Greetings", "hello", "hi there")
	require.NoError(t, s.Save(conversation))

	got, err := s.Get("c1")
	require.NoError(t, err)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Greetings", *got.Title)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "hello", got.Messages[0].Content)
	assert.Equal(t, api.RoleAssistant, got.Messages[1].Role)
	assert.NotZero(t, got.SyncedTimestamp)
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveIsUpsert(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(testConversation("c1", "First", "one")))
	require.NoError(t, s.Save(testConversation("c1", "Second", "one", "two")))

	got, err := s.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "Second", *got.Title)
	assert.Len(t, got.Messages, 2)

	list, err := s.List(&ListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.TotalCount)
}

func TestSavePreservesLocalAnnotations(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save(testConversation("c1", "First", "one")))
	require.NoError(t, s.SetPinned("c1", true))
	require.NoError(t, s.SetTags("c1", []string{"work"}))

	// A re-sync from the server must not clobber pin or tags.
	require.NoError(t, s.Save(testConversation("c1", "First updated", "one", "two")))

	got, err := s.Get("c1")
	require.NoError(t, err)
	assert.True(t, got.Pinned)
	assert.Equal(t, []string{"work"}, got.Tags)
	assert.Equal(t, "First updated", *got.Title)
}

func TestListOrderingAndPins(t *testing.T) {
	s := newTestStore(t)

	older := testConversation("c1", "Older", "x")
	older.UpdateTimestamp = 100
	newer := testConversation("c2", "Newer", "y")
	newer.UpdateTimestamp = 200
	pinned := testConversation("c3", "Pinned", "z")
	pinned.UpdateTimestamp = 50

	require.NoError(t, s.Save(older))
	require.NoError(t, s.Save(newer))
	require.NoError(t, s.Save(pinned))
	require.NoError(t, s.SetPinned("c3", true))

	list, err := s.List(&ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Conversations, 3)
	assert.Equal(t, "c3", list.Conversations[0].ID)
	assert.Equal(t, "c2", list.Conversations[1].ID)
	assert.Equal(t, "c1", list.Conversations[2].ID)

	pinnedOnly, err := s.List(&ListRequest{PinnedOnly: true})
	require.NoError(t, err)
	require.Len(t, pinnedOnly.Conversations, 1)
	assert.Equal(t, "c3", pinnedOnly.Conversations[0].ID)
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	for _, id := range []string{"c1", "c2", "c3", "c4", "c5"} {
		require.NoError(t, s.Save(testConversation(id, "Title "+id, "content")))
	}

	page, err := s.List(&ListRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.TotalCount)
	assert.Equal(t, 3, page.PageCount)
	assert.Len(t, page.Conversations, 2)
}

func TestListByTags(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testConversation("c1", "One", "x")))
	require.NoError(t, s.Save(testConversation("c2", "Two", "y")))
	require.NoError(t, s.SetTags("c1", []string{"work", "go"}))
	require.NoError(t, s.SetTags("c2", []string{"work"}))

	both, err := s.List(&ListRequest{Tags: []string{"work"}})
	require.NoError(t, err)
	assert.Len(t, both.Conversations, 2)

	one, err := s.List(&ListRequest{Tags: []string{"work", "go"}})
	require.NoError(t, err)
	require.Len(t, one.Conversations, 1)
	assert.Equal(t, "c1", one.Conversations[0].ID)

	tags, err := s.Tags()
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "work"}, tags)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testConversation("c1", "Compilers", "how do lexers work", "a lexer splits input")))
	require.NoError(t, s.Save(testConversation("c2", "Cooking", "how do i make bread", "use flour and water")))

	results, err := s.Search(&SearchRequest{Query: "lexer"})
	require.NoError(t, err)
	require.Len(t, results.Conversations, 1)
	assert.Equal(t, "c1", results.Conversations[0].ID)

	// Titles are indexed too.
	results, err = s.Search(&SearchRequest{Query: "Cooking"})
	require.NoError(t, err)
	require.Len(t, results.Conversations, 1)
	assert.Equal(t, "c2", results.Conversations[0].ID)

	empty, err := s.Search(&SearchRequest{Query: ""})
	require.NoError(t, err)
	assert.Empty(t, empty.Conversations)
}

func TestSearchIndexFollowsUpdates(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testConversation("c1", "Old title", "original content")))
	require.NoError(t, s.Save(testConversation("c1", "New title", "replacement content")))

	stale, err := s.Search(&SearchRequest{Query: "original"})
	require.NoError(t, err)
	assert.Empty(t, stale.Conversations)

	fresh, err := s.Search(&SearchRequest{Query: "replacement"})
	require.NoError(t, err)
	assert.Len(t, fresh.Conversations, 1)
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save(testConversation("c1", "Title", "content")))

	require.NoError(t, s.Delete("c1"))
	_, err := s.Get("c1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Search entry goes with it.
	results, err := s.Search(&SearchRequest{Query: "content"})
	require.NoError(t, err)
	assert.Empty(t, results.Conversations)

	assert.ErrorIs(t, s.Delete("c1"), ErrNotFound)
}

func TestFromServer(t *testing.T) {
	now := time.Now()
	conversation := &api.Conversation{ID: "c1", Title: "Hello", CreatedAt: now.Add(-time.Hour), UpdatedAt: now}
	messages := []api.Message{{ID: "m1", Role: api.RoleUser, Content: "hi"}}

	cached := FromServer(conversation, messages)
	assert.Equal(t, "c1", cached.ID)
	assert.Equal(t, "Hello", *cached.Title)
	assert.Equal(t, now.Add(-time.Hour).UnixMicro(), cached.CreationTimestamp)
	assert.Len(t, cached.Messages, 1)
}
