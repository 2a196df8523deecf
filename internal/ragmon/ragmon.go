// Package ragmon tracks the ingestion status of a RAG instance over
// the server's status stream. Each update replaces the previous
// snapshot wholesale; nothing is merged client-side.
package ragmon

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/strataai/strata/internal/api"
	"github.com/strataai/strata/internal/debug"
)

const reconnectDelay = 2 * time.Second

// Monitor follows one instance's ingestion status.
type Monitor struct {
	client     *api.Client
	instanceID string

	mu        sync.Mutex
	status    *api.RAGStatus
	connected bool
	onUpdate  func(*api.RAGStatus)

	cancel    context.CancelFunc
	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// New creates a monitor for an instance.
func New(client *api.Client, instanceID string) *Monitor {
	return &Monitor{
		client:     client,
		instanceID: instanceID,
		closed:     make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// OnUpdate registers a callback invoked after each installed
// snapshot. Must be set before Start.
func (m *Monitor) OnUpdate(fn func(*api.RAGStatus)) {
	m.onUpdate = fn
}

// Start fetches an initial snapshot, then follows the status stream
// in the background, reconnecting on transient failures until Close.
func (m *Monitor) Start(ctx context.Context) error {
	status, err := m.client.GetRAGStatus(ctx, m.instanceID)
	if err != nil {
		return errors.Wrap(err, "fetching initial status")
	}
	m.install(status)

	ctx, m.cancel = context.WithCancel(ctx)
	go m.follow(ctx)
	return nil
}

// Status returns the latest snapshot, or nil before Start.
func (m *Monitor) Status() *api.RAGStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Connected reports whether the status stream is currently open.
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Done returns a channel closed when the background follower exits.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Close stops the monitor. No snapshot is installed and no callback
// fires after Close returns.
func (m *Monitor) Close() {
	m.closeOnce.Do(func() {
		m.mu.Lock()
		close(m.closed)
		m.connected = false
		m.mu.Unlock()
		if m.cancel != nil {
			m.cancel()
		}
	})
}

func (m *Monitor) follow(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-m.closed:
			return
		default:
		}

		stream, err := m.client.StreamRAGStatus(ctx, m.instanceID)
		if err != nil {
			if m.isClosed() || ctx.Err() != nil {
				return
			}
			debug.GetLogger().Debug("status stream failed, reconnecting", "instance", m.instanceID, "error", err.Error())
			if !m.sleep(ctx, reconnectDelay) {
				return
			}
			continue
		}

		m.setConnected(true)
		for {
			status, err := stream.Recv()
			if err != nil {
				break
			}
			m.install(status)
		}
		stream.Close()
		m.setConnected(false)

		if m.isClosed() || ctx.Err() != nil {
			return
		}
		if !m.sleep(ctx, reconnectDelay) {
			return
		}
	}
}

// install replaces the snapshot, unless the monitor closed first.
func (m *Monitor) install(status *api.RAGStatus) {
	m.mu.Lock()
	select {
	case <-m.closed:
		m.mu.Unlock()
		return
	default:
	}
	m.status = status
	onUpdate := m.onUpdate
	m.mu.Unlock()

	if onUpdate != nil {
		onUpdate(status)
	}
}

func (m *Monitor) setConnected(connected bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.closed:
		return
	default:
	}
	m.connected = connected
}

func (m *Monitor) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

func (m *Monitor) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-m.closed:
		return false
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
