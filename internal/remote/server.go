// Package remote serves playback state, the live spectrum and transport
// commands over HTTP and websockets on the local network.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tessro/station/internal/core"
	"github.com/tessro/station/internal/eq"
	"github.com/tessro/station/internal/player"
	"github.com/tessro/station/internal/spectrum"
	"github.com/tessro/station/internal/tail"
)

// Controller is the playback surface the remote drives.
type Controller interface {
	Snapshot() core.PlaybackState
	Queue() player.QueueState

	IsPlaying() bool
	FrequencyBinCount() int
	FrequencyData(dst []byte)

	TogglePlay()
	Next()
	Previous()
	Jump(index int)
	Seek(pos time.Duration)
	SetVolume(v float64)
	ToggleMute()
	ToggleShuffle()
	CycleRepeat()
	SetBand(band int, dB float64)
	ApplyPreset(p eq.Preset)
}

// Message is the websocket envelope in both directions.
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StatePayload is sent on connect, after every command and on changes.
type StatePayload struct {
	Playback core.PlaybackState `json:"playback"`
	Queue    player.QueueState  `json:"queue"`
}

// EventPayload describes a playback change seen by the watcher.
type EventPayload struct {
	Event string    `json:"event"`
	Time  time.Time `json:"time"`
}

// Command is a client request. Fields are read according to Type.
type Command struct {
	Type    string  `json:"type"`
	Index   int     `json:"index,omitempty"`
	Seconds float64 `json:"seconds,omitempty"`
	Value   float64 `json:"value,omitempty"`
	Band    int     `json:"band,omitempty"`
	Preset  string  `json:"preset,omitempty"`
}

// Options configures a Server.
type Options struct {
	Addr          string
	FrameInterval time.Duration
	PollInterval  time.Duration
	Logger        *slog.Logger
}

// Server is the remote control server.
type Server struct {
	ctrl   Controller
	hub    *Hub
	opts   Options
	logger *slog.Logger

	httpServer *http.Server
	listener   net.Listener
}

// NewServer creates a server for ctrl.
func NewServer(ctrl Controller, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = "127.0.0.1:7777"
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = spectrum.DefaultFrameInterval
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 250 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ctrl:   ctrl,
		hub:    NewHub(),
		opts:   opts,
		logger: logger.With("component", "remote"),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler(ctx context.Context) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/state", s.handleAPIState)
	mux.HandleFunc("POST /api/command", s.handleAPICommand)
	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		s.handleWebSocket(ctx, w, r)
	})
	return mux
}

// Run starts the hub, the broadcast loops and the HTTP server, and
// blocks until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.listener = ln
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.Start(ctx)

	s.httpServer = &http.Server{
		Handler:           s.Handler(ctx),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("remote listening", "addr", ln.Addr().String())
	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Start runs the hub and broadcast loops until ctx is done. Serve calls
// it; tests using Handler directly call it themselves.
func (s *Server) Start(ctx context.Context) {
	go s.hub.Run(ctx)
	go s.spectrumLoop(ctx)
	go s.watchLoop(ctx)
}

// Addr returns the bound address once Run has started listening.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.opts.Addr
	}
	return s.listener.Addr().String()
}

// Hub exposes the client hub.
func (s *Server) Hub() *Hub { return s.hub }

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

func (s *Server) handleWebSocket(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	c := &client{hub: s.hub, conn: conn, send: make(chan []byte, 256)}
	if data, err := s.encode("state", s.state()); err == nil {
		c.send <- data
	}
	select {
	case s.hub.register <- c:
	case <-ctx.Done():
		conn.Close()
		return
	}

	go c.writePump()
	c.readPump(ctx, func(msg []byte) {
		var m Message
		if err := json.Unmarshal(msg, &m); err != nil {
			s.logger.Warn("bad websocket message", "error", err)
			return
		}
		cmd := Command{Type: m.Type}
		if len(m.Payload) > 0 {
			if err := json.Unmarshal(m.Payload, &cmd); err != nil {
				s.logger.Warn("bad command payload", "type", m.Type, "error", err)
				return
			}
			cmd.Type = m.Type
		}
		if err := s.Execute(cmd); err != nil {
			s.logger.Warn("command failed", "type", cmd.Type, "error", err)
			s.broadcast("error", map[string]string{"message": err.Error()})
		}
	})
}

func (s *Server) state() StatePayload {
	return StatePayload{Playback: s.ctrl.Snapshot(), Queue: s.ctrl.Queue()}
}

// Execute applies cmd and broadcasts the resulting state.
func (s *Server) Execute(cmd Command) error {
	switch cmd.Type {
	case "toggle":
		s.ctrl.TogglePlay()
	case "next":
		s.ctrl.Next()
	case "previous":
		s.ctrl.Previous()
	case "jump":
		s.ctrl.Jump(cmd.Index)
	case "seek":
		s.ctrl.Seek(time.Duration(cmd.Seconds * float64(time.Second)))
	case "volume":
		s.ctrl.SetVolume(cmd.Value)
	case "mute":
		s.ctrl.ToggleMute()
	case "shuffle":
		s.ctrl.ToggleShuffle()
	case "repeat":
		s.ctrl.CycleRepeat()
	case "band":
		if cmd.Band < 0 || cmd.Band >= eq.Bands {
			return fmt.Errorf("band %d out of range", cmd.Band)
		}
		s.ctrl.SetBand(cmd.Band, cmd.Value)
	case "preset":
		p, err := eq.ParsePreset(cmd.Preset)
		if err != nil {
			return err
		}
		s.ctrl.ApplyPreset(p)
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	s.broadcast("state", s.state())
	return nil
}

func (s *Server) encode(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: kind, Payload: raw})
}

func (s *Server) broadcast(kind string, payload any) {
	data, err := s.encode(kind, payload)
	if err != nil {
		s.logger.Error("encode broadcast", "type", kind, "error", err)
		return
	}
	s.hub.Broadcast(data)
}

// spectrumLoop pushes 64-bucket frames while audio plays and someone
// is listening.
func (s *Server) spectrumLoop(ctx context.Context) {
	spectrum.Loop(ctx, s.ctrl, s.opts.FrameInterval, func(frame []byte) {
		if s.hub.ClientCount() == 0 {
			return
		}
		levels := make([]int, len(frame))
		for i, b := range frame {
			levels[i] = int(b)
		}
		s.broadcast("spectrum", levels)
	})
}

// watchLoop broadcasts tail events and the new state on every change.
func (s *Server) watchLoop(ctx context.Context) {
	w := tail.NewWatcher(s.ctrl, s.opts.PollInterval, s.logger)
	go func() { _ = w.Start(ctx) }()

	for e := range w.Events() {
		if s.hub.ClientCount() == 0 {
			continue
		}
		s.broadcast("event", EventPayload{Event: e.Type.String(), Time: e.Timestamp})
		s.broadcast("state", s.state())
	}
}

func (s *Server) handleAPIState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.state())
}

func (s *Server) handleAPICommand(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid command: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.Execute(cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.handleAPIState(w, r)
}
