package registry

import (
	"sync"

	"github.com/teamboard/teamboard/internal/metrics"
	"go.uber.org/zap"
)

// Connection is the registry's view of a live board viewer. The concrete
// type is owned by the transport layer; the registry only references it.
type Connection interface {
	ID() string
	ProjectID() int64
	Enqueue(payload []byte) error
	Close()
}

// Registry tracks which connections are watching which project board. It is
// the only shared mutable state in the realtime subsystem and every method
// is safe for concurrent use. An entry whose set becomes empty is removed.
type Registry struct {
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	byProject map[int64]map[string]Connection
}

func NewRegistry(logger *zap.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		logger:    logger,
		metrics:   m,
		byProject: make(map[int64]map[string]Connection),
	}
}

// Subscribe adds a connection to the project's set, creating the set if this
// is the project's first viewer. Subscribing an already present connection
// is a no-op.
func (r *Registry) Subscribe(projectID int64, conn Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byProject[projectID]
	if !ok {
		conns = make(map[string]Connection)
		r.byProject[projectID] = conns
	}

	if _, ok := conns[conn.ID()]; ok {
		return
	}

	conns[conn.ID()] = conn
	r.metrics.ActiveConnections.Inc()
	r.metrics.ConnectionsTotal.Inc()

	r.logger.Info("connection subscribed",
		zap.Int64("projectId", projectID),
		zap.String("connectionId", conn.ID()),
		zap.Int("activeUsers", len(conns)))
}

// Unsubscribe removes a connection from the project's set and drops the
// entry entirely when the last viewer leaves. Unknown projects or
// connections are silently ignored; races between prune-on-failure and a
// client-initiated close make double removal routine.
func (r *Registry) Unsubscribe(projectID int64, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conns, ok := r.byProject[projectID]
	if !ok {
		return
	}

	if _, ok := conns[connectionID]; !ok {
		return
	}

	delete(conns, connectionID)
	r.metrics.ActiveConnections.Dec()

	if len(conns) == 0 {
		delete(r.byProject, projectID)
	}

	r.logger.Info("connection unsubscribed",
		zap.Int64("projectId", projectID),
		zap.String("connectionId", connectionID),
		zap.Int("activeUsers", len(conns)))
}

// Snapshot returns a point-in-time copy of the project's connections, safe
// to iterate while other goroutines keep mutating the registry.
func (r *Registry) Snapshot(projectID int64) []Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.byProject[projectID]
	if len(conns) == 0 {
		return nil
	}

	snapshot := make([]Connection, 0, len(conns))
	for _, conn := range conns {
		snapshot = append(snapshot, conn)
	}

	return snapshot
}

// Count reports how many connections currently watch the project.
func (r *Registry) Count(projectID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byProject[projectID])
}
