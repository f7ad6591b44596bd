package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/teamboard/teamboard/internal/broadcast"
	"github.com/teamboard/teamboard/internal/event"
	"github.com/teamboard/teamboard/internal/metrics"
	"github.com/teamboard/teamboard/internal/registry"
	"go.uber.org/zap"
)

const (
	readLimit         = 4096
	closeWriteTimeout = time.Second
)

// WebSocketServer owns the lifecycle of board viewer connections: it
// validates the project id from the path, registers the connection, sends
// the connected greeting and runs the inbound echo loop until the client
// goes away.
type WebSocketServer struct {
	logger   *zap.Logger
	upgrader *websocket.Upgrader
	registry *registry.Registry
	metrics  *metrics.Metrics
}

func NewWebSocketServer(
	logger *zap.Logger,
	upgrader *websocket.Upgrader,
	reg *registry.Registry,
	m *metrics.Metrics,
) *WebSocketServer {
	return &WebSocketServer{
		logger:   logger,
		upgrader: upgrader,
		registry: reg,
		metrics:  m,
	}
}

func (s *WebSocketServer) Register(router *mux.Router) {
	router.HandleFunc("/ws/kanban/{project_id}", s.handleConnection)
}

func (s *WebSocketServer) handleConnection(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))

		return
	}

	projectID, err := parseProjectID(mux.Vars(r)["project_id"])
	if err != nil {
		// Never registered: the client addressed a board that cannot exist.
		s.metrics.RejectedOpens.Inc()
		s.logger.Warn("refusing connection with invalid project id",
			zap.String("projectId", mux.Vars(r)["project_id"]))

		ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseUnsupportedData,
				"project_id must be a positive integer"),
			time.Now().Add(closeWriteTimeout))
		ws.Close()

		return
	}

	ws.SetReadLimit(readLimit)

	conn := broadcast.NewConnection(gonanoid.Must(), projectID, ws, s.logger)
	s.registry.Subscribe(projectID, conn)

	greeting := event.NewConnected(projectID,
		fmt.Sprintf("connected to project %d board", projectID),
		s.registry.Count(projectID))
	s.send(conn, greeting)

	s.readLoop(conn, ws)

	s.registry.Unsubscribe(projectID, conn.ID())
	conn.Close()
}

// readLoop echoes inbound frames until the connection dies. Clients do not
// mutate board state over the socket; a parseable frame gets an ack, an
// unparseable one gets an error envelope and the connection stays open.
func (s *WebSocketServer) readLoop(conn *broadcast.Connection, ws *websocket.Conn) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			s.logger.Debug("websocket read ended",
				zap.String("connectionId", conn.ID()),
				zap.Error(err))

			return
		}

		var received any
		if err := json.Unmarshal(raw, &received); err != nil {
			s.send(conn, event.NewProtocolError("invalid JSON payload"))

			continue
		}

		s.send(conn, event.NewAck(received))
	}
}

func (s *WebSocketServer) send(conn *broadcast.Connection, envelope event.Envelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		s.logger.Error("failed to serialize envelope",
			zap.String("eventType", string(envelope.EventType)),
			zap.Error(err))

		return
	}

	if err := conn.Enqueue(payload); err != nil {
		s.logger.Debug("dropping envelope for unreachable connection",
			zap.String("connectionId", conn.ID()),
			zap.Error(err))
	}
}

func parseProjectID(raw string) (int64, error) {
	projectID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}

	if projectID <= 0 {
		return 0, fmt.Errorf("project id must be positive, got %d", projectID)
	}

	return projectID, nil
}
