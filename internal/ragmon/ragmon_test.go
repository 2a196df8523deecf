package ragmon

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/configuration"
)

func newTestMonitor(t *testing.T, handler http.Handler) *Monitor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := api.NewClient(&configuration.Config{
		ServerURL:      server.URL,
		Token:          "test-token",
		RequestTimeout: 5,
	})
	return New(client, "r1")
}

func statusJSON(processed int) string {
	status := api.RAGStatus{
		InstanceID:      "r1",
		TotalFiles:      4,
		ProcessedFiles:  processed,
		ProcessingFiles: 4 - processed,
	}
	data, _ := json.Marshal(status)
	return string(data)
}

func TestMonitorInstallsSnapshots(t *testing.T) {
	updates := make(chan int)
	monitor := newTestMonitor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/stream") {
			w.Write([]byte(statusJSON(0)))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		for processed := range updates {
			fmt.Fprintf(w, "event: update\ndata: %s\n\n", statusJSON(processed))
			w.(http.Flusher).Flush()
		}
	}))

	installed := make(chan *api.RAGStatus, 8)
	monitor.OnUpdate(func(status *api.RAGStatus) { installed <- status })

	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Close()

	// Initial snapshot from the GET.
	initial := monitor.Status()
	require.NotNil(t, initial)
	assert.Equal(t, 0, initial.ProcessedFiles)

	updates <- 2
	select {
	case status := <-installed:
		assert.Equal(t, 2, status.ProcessedFiles)
		assert.Equal(t, 2, status.ProcessingFiles)
	case <-time.After(2 * time.Second):
		t.Fatal("no update installed")
	}

	// Each update replaces the snapshot wholesale.
	updates <- 4
	select {
	case status := <-installed:
		assert.Equal(t, 4, status.ProcessedFiles)
		assert.Equal(t, 0, status.ProcessingFiles)
	case <-time.After(2 * time.Second):
		t.Fatal("no update installed")
	}
	assert.Equal(t, 4, monitor.Status().ProcessedFiles)
	close(updates)
}

func TestMonitorConnected(t *testing.T) {
	hold := make(chan struct{})
	monitor := newTestMonitor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/stream") {
			w.Write([]byte(statusJSON(0)))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-hold
	}))

	assert.False(t, monitor.Connected())
	require.NoError(t, monitor.Start(context.Background()))
	defer monitor.Close()

	require.Eventually(t, monitor.Connected, 2*time.Second, 5*time.Millisecond)
	close(hold)
}

func TestMonitorCloseStopsUpdates(t *testing.T) {
	firstUpdate := make(chan struct{})
	release := make(chan struct{})
	monitor := newTestMonitor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/stream") {
			w.Write([]byte(statusJSON(0)))
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "event: update\ndata: %s\n\n", statusJSON(1))
		w.(http.Flusher).Flush()
		close(firstUpdate)
		<-release
		fmt.Fprintf(w, "event: update\ndata: %s\n\n", statusJSON(3))
		w.(http.Flusher).Flush()
	}))

	var callbackCount int
	callbackSeen := make(chan struct{}, 8)
	monitor.OnUpdate(func(*api.RAGStatus) {
		callbackCount++
		callbackSeen <- struct{}{}
	})

	require.NoError(t, monitor.Start(context.Background()))

	<-firstUpdate
	select {
	case <-callbackSeen:
	case <-time.After(2 * time.Second):
		t.Fatal("first update never installed")
	}
	require.Equal(t, 1, monitor.Status().ProcessedFiles)

	monitor.Close()
	close(release)

	// The follower exits without installing the late update.
	select {
	case <-monitor.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("follower did not stop")
	}
	assert.Equal(t, 1, monitor.Status().ProcessedFiles)
	assert.Equal(t, 1, callbackCount)
	assert.False(t, monitor.Connected())
}

func TestMonitorStartFailsWithoutSnapshot(t *testing.T) {
	monitor := newTestMonitor(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"code":"not_found","message":"no such instance"}}`))
	}))

	err := monitor.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNotFound)
}
