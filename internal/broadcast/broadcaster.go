package broadcast

import (
	"encoding/json"

	"github.com/teamboard/teamboard/internal/event"
	"github.com/teamboard/teamboard/internal/metrics"
	"github.com/teamboard/teamboard/internal/registry"
	"go.uber.org/zap"
)

// Broadcaster fans one envelope out to every connection currently watching a
// project. Delivery is at-most-once and best-effort: there is no retry, no
// backlog, and no ordering promise between receivers.
type Broadcaster struct {
	logger   *zap.Logger
	registry *registry.Registry
	metrics  *metrics.Metrics
}

func NewBroadcaster(
	logger *zap.Logger,
	reg *registry.Registry,
	m *metrics.Metrics,
) *Broadcaster {
	return &Broadcaster{
		logger:   logger,
		registry: reg,
		metrics:  m,
	}
}

// Broadcast serializes the envelope once and attempts delivery to the
// snapshot taken at call time. Connections that fail are collected during
// the pass and pruned in one batch afterwards, so the snapshot is never
// mutated mid-iteration and one dead peer cannot stop the others from
// receiving the event.
func (b *Broadcaster) Broadcast(projectID int64, envelope event.Envelope) {
	snapshot := b.registry.Snapshot(projectID)
	if len(snapshot) == 0 {
		return
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		b.logger.Error("failed to serialize event envelope",
			zap.Int64("projectId", projectID),
			zap.String("eventType", string(envelope.EventType)),
			zap.Error(err))

		return
	}

	b.metrics.BroadcastsTotal.Inc()

	var failed []registry.Connection

	for _, conn := range snapshot {
		if err := conn.Enqueue(payload); err != nil {
			b.logger.Warn("event delivery failed, pruning connection",
				zap.Int64("projectId", projectID),
				zap.String("connectionId", conn.ID()),
				zap.Error(err))

			failed = append(failed, conn)
		}
	}

	for _, conn := range failed {
		b.registry.Unsubscribe(projectID, conn.ID())
		conn.Close()
		b.metrics.DeliveryFailures.Inc()
	}
}
