package ws

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/providers/browser/navigation"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/service"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/types"
	"github.com/GriffinCanCode/AgentOS/navigator/internal/shared/utils"
)

const (
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	execTimeout  = 30 * time.Second
	eventBuffer  = 64
	maxFrameSize = utils.MaxJSONSize
)

// Handler streams navigation events of one window over a WebSocket and
// accepts tool calls against it.
type Handler struct {
	windows  *browser.WindowManager
	registry *service.Registry
	metrics  *monitoring.Metrics
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

// NewHandler creates a stream handler. allowedOrigins follows the CORS
// configuration; "*" accepts any origin.
func NewHandler(windows *browser.WindowManager, registry *service.Registry, metrics *monitoring.Metrics, logger *zap.Logger, allowedOrigins []string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		windows:  windows,
		registry: registry,
		metrics:  metrics,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Stream handles GET /windows/:id/stream.
func (h *Handler) Stream(c *gin.Context) {
	id := c.Param("id")
	if err := utils.ValidateID(id, "window_id", true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	win, err := h.windows.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", logging.Window(id), zap.Error(err))
		return
	}
	h.metrics.IncWSConnections()
	defer h.metrics.DecWSConnections()

	s := &session{
		h:       h,
		conn:    conn,
		win:     win,
		out:     make(chan types.WSMessage, eventBuffer),
		logger:  h.logger.With(logging.Window(id)),
		ctx:     c.Request.Context(),
	}
	s.run()
}

type session struct {
	h       *Handler
	conn    *websocket.Conn
	win     *navigation.Window
	out     chan types.WSMessage
	logger  *zap.Logger
	ctx     context.Context
	dropped atomic.Int64
}

func (s *session) run() {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	defer s.conn.Close()

	listener := s.win.Events().AddListener(navigation.AnyEvent, func(ev navigation.Event) {
		s.enqueue(types.WSMessage{Type: "event", WindowID: s.win.ID(), Data: ev})
	})
	defer s.win.Events().RemoveListener(navigation.AnyEvent, listener)

	s.enqueue(types.WSMessage{
		Type:     "system",
		WindowID: s.win.ID(),
		Message:  "subscribed",
		Data:     map[string]any{"url": s.win.Controller().Document().Href()},
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.readLoop(ctx)
	}()

	s.writeLoop(ctx, done)
	s.logger.Debug("Stream closed", zap.Int64("dropped", s.dropped.Load()))
}

// enqueue never blocks the dispatching controller; a slow client loses
// events rather than stalling navigation.
func (s *session) enqueue(msg types.WSMessage) {
	select {
	case s.out <- msg:
	default:
		s.dropped.Add(1)
	}
}

func (s *session) writeLoop(ctx context.Context, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-s.out:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("WebSocket write failed", zap.Error(err))
				return
			}
			s.h.metrics.RecordWSMessage("out", msg.Type)
		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *session) readLoop(ctx context.Context) {
	s.conn.SetReadLimit(int64(maxFrameSize))
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg types.WSMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("WebSocket read error", zap.Error(err))
			}
			return
		}
		s.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch msg.Type {
		case "ping":
			s.h.metrics.RecordWSMessage("in", msg.Type)
			s.enqueue(types.WSMessage{Type: "pong", WindowID: s.win.ID()})
		case "execute":
			s.h.metrics.RecordWSMessage("in", msg.Type)
			s.execute(ctx, msg)
		default:
			// client-chosen types stay out of metric labels
			s.h.metrics.RecordWSMessage("in", "unknown")
			s.enqueue(errorMessage(s.win.ID(), "unknown message type: "+msg.Type))
		}
	}
}

// execute runs a tool against the streamed window. Data carries
// {"tool_id": ..., "params": {...}}.
func (s *session) execute(ctx context.Context, msg types.WSMessage) {
	data, _ := msg.Data.(map[string]any)
	toolID, err := types.GetString(data, "tool_id", true)
	if err == nil {
		err = utils.ValidateToolID(toolID, "tool_id", true)
	}
	if err != nil {
		s.enqueue(errorMessage(s.win.ID(), err.Error()))
		return
	}

	params := types.GetMap(data, "params")
	if params == nil {
		params = map[string]any{}
	}
	id := s.win.ID()
	if _, ok := params["window_id"]; !ok {
		params["window_id"] = id
	}

	ctx, cancel := context.WithTimeout(ctx, execTimeout)
	defer cancel()
	result, err := s.h.registry.Execute(ctx, toolID, params, &types.Context{WindowID: &id})
	if err != nil {
		s.enqueue(errorMessage(id, err.Error()))
		return
	}
	s.enqueue(types.WSMessage{Type: "result", WindowID: id, Message: toolID, Data: result})
}

func errorMessage(windowID, text string) types.WSMessage {
	return types.WSMessage{Type: "error", WindowID: windowID, Message: text}
}
