package posestream

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/litescript/ls-spiral/internal/camera"
	"github.com/litescript/ls-spiral/internal/chart"
	"github.com/litescript/ls-spiral/internal/logging"
	"github.com/litescript/ls-spiral/internal/scene"
	"github.com/litescript/ls-spiral/internal/spiral"
	"github.com/litescript/ls-spiral/internal/state"
)

const (
	requestBuffer = 16
	writeTimeout  = 2 * time.Second
)

// client is one connection. Writes are serialized by mu.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

// Server streams poses to every connected client.
type Server struct {
	state     *state.Manager
	cfg       camera.Config
	frameRate int
	log       *logging.Logger

	upgrader websocket.Upgrader
	requests chan camera.Request

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// New creates a server reading scenes from st.
func New(st *state.Manager, cfg camera.Config, frameRate int, log *logging.Logger) *Server {
	if frameRate <= 0 {
		frameRate = 60
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Server{
		state:     st,
		cfg:       cfg,
		frameRate: frameRate,
		log:       log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		requests: make(chan camera.Request, requestBuffer),
		clients:  make(map[*client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	return mux
}

// ClientCount returns the number of connected clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade: %v", err)
		return
	}
	c := &client{conn: conn}
	defer s.drop(c)

	// Hold the write lock across registration and the scene so the first
	// broadcast pose cannot overtake the scene.
	c.mu.Lock()
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	err = conn.WriteJSON(scene.Build(s.state.Snapshot()))
	c.mu.Unlock()
	if err != nil {
		s.log.Warn("send scene: %v", err)
		return
	}
	s.log.Info("client connected from %s", r.RemoteAddr)

	for {
		var msg FocusMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("websocket read: %v", err)
			}
			return
		}
		req, err := msg.Request()
		if err != nil {
			s.log.Warn("ignoring client message: %v", err)
			continue
		}
		select {
		case s.requests <- req:
		case <-r.Context().Done():
			return
		default:
			s.log.Warn("request queue full, dropping %s", req.Kind)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// broadcast sends v to every client and drops the ones that fail.
func (s *Server) broadcast(v any) {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(v); err != nil {
			s.log.Debug("websocket write: %v", err)
			s.drop(c)
		}
	}
}

// Run drives the choreographer at the configured frame rate until ctx is
// done. It is the only goroutine touching the choreographer.
func (s *Server) Run(ctx context.Context) error {
	snap := s.state.Snapshot()
	geom, mapping := snap.Geometry, snap.Mapping
	ch := s.newChoreographer(geom, mapping)

	ticker := time.NewTicker(time.Second / time.Duration(s.frameRate))
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			s.closeAll()
			return ctx.Err()

		case req := <-s.requests:
			ch.Request(req)

		case now := <-ticker.C:
			snap := s.state.Snapshot()
			switch {
			case snap.Geometry != geom:
				geom, mapping = snap.Geometry, snap.Mapping
				ch = s.newChoreographer(geom, mapping)
				s.broadcast(scene.Build(snap))
			case snap.Mapping != mapping:
				mapping = snap.Mapping
				ch.SetBodies(mapping.Planets)
				s.broadcast(scene.Build(snap))
			}

			dt := now.Sub(last).Seconds()
			last = now
			ch.Tick(dt)
			s.broadcast(poseMessage(ch))
		}
	}
}

func (s *Server) newChoreographer(g *spiral.Geometry, m *chart.Mapping) *camera.Choreographer {
	ch := camera.New(g, s.cfg, s.log.With("component", "camera"))
	if m != nil {
		ch.SetBodies(m.Planets)
	}
	metrics := s.state.Metrics()
	ch.OnAnimationStart = func(a camera.Animation) {
		metrics.AnimationStarted(a.Mode.String())
	}
	return ch
}

// closeAll never holds s.mu while taking a client lock; a handler takes
// them in the opposite order while it registers.
func (s *Server) closeAll() {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
		delete(s.clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.mu.Lock()
		c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.mu.Unlock()
		c.conn.Close()
	}
}

// ListenAndServe serves on addr and runs the pose loop until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.Run(ctx) }()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("pose stream listening on %s", addr)
	err := srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		<-loopErr
		return nil
	}
	return err
}
