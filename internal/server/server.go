package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"

	"github.com/lox/pokervariants/internal/game"
)

// Server accepts WebSocket clients and routes their messages to table
// sessions
type Server struct {
	cfg    *Config
	logger *log.Logger

	upgrader websocket.Upgrader
	sessions map[string]*TableSession

	mu    sync.Mutex
	conns map[*Connection]struct{}
}

// NewServer builds a server and its table sessions from configuration
func NewServer(cfg *Config, logger *log.Logger, clock quartz.Clock) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		sessions: map[string]*TableSession{},
		conns:    map[*Connection]struct{}{},
	}
	for _, tc := range cfg.Tables {
		sess, err := NewTableSession(tc, logger, clock)
		if err != nil {
			return nil, err
		}
		s.sessions[tc.Name] = sess
	}
	return s, nil
}

// Session returns a table session by name
func (s *Server) Session(name string) (*TableSession, bool) {
	sess, ok := s.sessions[name]
	return sess, ok
}

// ListenAndServe blocks serving WebSocket clients until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Address, s.cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
		s.shutdown()
	}()

	s.logger.Info("listening", "addr", addr, "tables", len(s.sessions))
	err := srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) shutdown() {
	for _, sess := range s.sessions {
		sess.Close()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.Close()
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "err", err)
		return
	}
	c := newConnection(ws, s, s.logger)
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (s *Server) unregister(c *Connection) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()

	// a vanished player times out of their seat like any other absence;
	// removal here only covers players not in a hand
	if table, player := c.Table(), c.PlayerID(); table != "" && player != "" {
		if sess, ok := s.sessions[table]; ok {
			_ = sess.Leave(player)
		}
	}
}

// handleMessage dispatches one client envelope
func (s *Server) handleMessage(c *Connection, msg *Message) {
	switch msg.Type {
	case MsgJoinTable:
		var data JoinTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("bad_message", "malformed join_table")
			return
		}
		sess, ok := s.sessions[data.Table]
		if !ok {
			c.sendError("unknown_table", data.Table)
			return
		}
		seat, err := sess.Join(data.PlayerID, data.Name, data.BuyIn, c)
		if err != nil {
			c.sendError("join_failed", err.Error())
			return
		}
		c.bind(data.PlayerID, data.Table)
		if m, err := NewMessage(MsgJoined, JoinedData{Table: data.Table, Seat: seat}); err == nil {
			c.Send(m)
		}

	case MsgLeaveTable:
		var data LeaveTableData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("bad_message", "malformed leave_table")
			return
		}
		if sess, ok := s.sessions[data.Table]; ok {
			if err := sess.Leave(c.PlayerID()); err != nil {
				c.sendError("leave_failed", err.Error())
			}
		}

	case MsgAction:
		var data ActionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("bad_message", "malformed action")
			return
		}
		sess, ok := s.sessions[data.Table]
		if !ok {
			c.sendError("unknown_table", data.Table)
			return
		}
		if err := sess.HandleAction(c.PlayerID(), data); err != nil {
			if ue, ok := game.AsUserError(err); ok {
				c.sendError(string(ue.Code), ue.Message)
			} else {
				c.sendError("internal", err.Error())
			}
		}

	case MsgGetState:
		var data GetStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("bad_message", "malformed get_state")
			return
		}
		sess, ok := s.sessions[data.Table]
		if !ok {
			c.sendError("unknown_table", data.Table)
			return
		}
		if m, err := NewMessage(MsgState, StateData{
			Table: data.Table,
			State: sess.StateFor(c.PlayerID()),
		}); err == nil {
			c.Send(m)
		}

	default:
		c.sendError("unknown_type", string(msg.Type))
	}
}
