package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/configuration"
)

func newTestNavigator(t *testing.T, handler http.Handler) (*Navigator, *Container) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(&configuration.Config{
		ServerURL:      server.URL,
		Token:          "test-token",
		RequestTimeout: 5,
	})
	container := New(client, &api.Conversation{ID: "c1"})
	return NewNavigator(client, container), container
}

func TestCurrentIndex(t *testing.T) {
	tests := []struct {
		name     string
		siblings []api.Message
		want     int
	}{
		{
			name: "active in middle",
			siblings: []api.Message{
				{ID: "b1"}, {ID: "b2", IsActiveBranch: true}, {ID: "b3"},
			},
			want: 1,
		},
		{
			name: "active first",
			siblings: []api.Message{
				{ID: "b1", IsActiveBranch: true}, {ID: "b2"},
			},
			want: 0,
		},
		{
			name:     "none active",
			siblings: []api.Message{{ID: "b1"}, {ID: "b2"}},
			want:     -1,
		},
		{
			name:     "empty",
			siblings: nil,
			want:     -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurrentIndex(tt.siblings))
		})
	}
}

func TestHasBranches(t *testing.T) {
	assert.False(t, HasBranches(nil))
	assert.False(t, HasBranches([]api.Message{{ID: "b1"}}))
	assert.True(t, HasBranches([]api.Message{{ID: "b1"}, {ID: "b2"}}))
}

func TestBranchesCached(t *testing.T) {
	var calls atomic.Int32
	navigator, _ := newTestNavigator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, []api.Message{{ID: "b1", IsActiveBranch: true}, {ID: "b2"}})
	}))

	for i := 0; i < 3; i++ {
		siblings, err := navigator.Branches(context.Background(), "m1")
		require.NoError(t, err)
		require.Len(t, siblings, 2)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestSwitchNextSingleCallThenReload(t *testing.T) {
	var branchCalls, switchCalls, loadCalls atomic.Int32
	var switchedTo atomic.Value
	navigator, container := newTestNavigator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/branches"):
			branchCalls.Add(1)
			writeJSON(w, []api.Message{{ID: "b1", IsActiveBranch: true}, {ID: "b2"}})
		case strings.HasSuffix(r.URL.Path, "/switch"):
			switchCalls.Add(1)
			switchedTo.Store(r.URL.Path)
		case strings.HasSuffix(r.URL.Path, "/messages"):
			loadCalls.Add(1)
			writeJSON(w, []api.Message{{ID: "b2", IsActiveBranch: true}})
		}
	}))

	require.NoError(t, navigator.SwitchNext(context.Background(), "m1"))

	assert.Equal(t, int32(1), switchCalls.Load())
	assert.Equal(t, "/api/messages/b2/switch", switchedTo.Load())
	assert.Equal(t, int32(1), loadCalls.Load())

	// The thread was reloaded from the server, not patched locally.
	got := container.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, "b2", got[0].ID)

	// Cache was dropped: asking again refetches.
	_, err := navigator.Branches(context.Background(), "m1")
	require.NoError(t, err)
	assert.Equal(t, int32(2), branchCalls.Load())
}

func TestSwitchAtBoundaryIsNoop(t *testing.T) {
	var switchCalls atomic.Int32
	navigator, _ := newTestNavigator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/switch") {
			switchCalls.Add(1)
			return
		}
		writeJSON(w, []api.Message{{ID: "b1", IsActiveBranch: true}, {ID: "b2"}})
	}))

	// Already at the first sibling; prev has nowhere to go.
	require.NoError(t, navigator.SwitchPrev(context.Background(), "m1"))
	assert.Zero(t, switchCalls.Load())
}

func TestSwitchSingleSiblingIsNoop(t *testing.T) {
	var switchCalls atomic.Int32
	navigator, _ := newTestNavigator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/switch") {
			switchCalls.Add(1)
			return
		}
		writeJSON(w, []api.Message{{ID: "b1", IsActiveBranch: true}})
	}))

	require.NoError(t, navigator.SwitchNext(context.Background(), "m1"))
	assert.Zero(t, switchCalls.Load())
}

func TestSwitchInFlightGuard(t *testing.T) {
	holdSwitch := make(chan struct{})
	navigator, _ := newTestNavigator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/branches"):
			writeJSON(w, []api.Message{{ID: "b1", IsActiveBranch: true}, {ID: "b2"}})
		case strings.HasSuffix(r.URL.Path, "/switch"):
			<-holdSwitch
		case strings.HasSuffix(r.URL.Path, "/messages"):
			writeJSON(w, []api.Message{})
		}
	}))

	done := make(chan error, 1)
	go func() {
		done <- navigator.SwitchNext(context.Background(), "m1")
	}()

	require.Eventually(t, func() bool {
		err := navigator.SwitchNext(context.Background(), "m1")
		return err != nil
	}, time.Second, 5*time.Millisecond)

	err := navigator.SwitchNext(context.Background(), "m1")
	assert.ErrorIs(t, err, ErrSwitchInFlight)

	close(holdSwitch)
	require.NoError(t, <-done)
}
