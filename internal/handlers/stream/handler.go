// Package stream serves live battle effects over WebSocket
package stream

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/KirkDiggler/rpg-battle/internal/engine/state"
	"github.com/KirkDiggler/rpg-battle/internal/errors"
	"github.com/KirkDiggler/rpg-battle/internal/orchestrators/battle"
)

// Route is the ServeMux pattern the handler is registered under
const Route = "GET /battles/{id}/stream"

const (
	defaultWriteTimeout = 10 * time.Second
	defaultPingInterval = 30 * time.Second
)

// Config holds dependencies for the stream handler
type Config struct {
	BattleService battle.Service
	// CheckOrigin defaults to same-origin only
	CheckOrigin  func(r *http.Request) bool
	WriteTimeout time.Duration
	PingInterval time.Duration
}

// Validate ensures all required dependencies are present
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()
	if c.BattleService == nil {
		vb.RequiredField("BattleService")
	}
	if c.WriteTimeout < 0 {
		vb.InvalidField("WriteTimeout", "cannot be negative")
	}
	if c.PingInterval < 0 {
		vb.InvalidField("PingInterval", "cannot be negative")
	}
	return vb.Build()
}

// Handler upgrades requests to WebSocket and writes one JSON effect record
// per message
type Handler struct {
	battles      battle.Service
	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	pingInterval time.Duration
}

// NewHandler creates a new stream handler
func NewHandler(cfg *Config) (*Handler, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	h := &Handler{
		battles:      cfg.BattleService,
		upgrader:     websocket.Upgrader{CheckOrigin: cfg.CheckOrigin},
		writeTimeout: cfg.WriteTimeout,
		pingInterval: cfg.PingInterval,
	}
	if h.writeTimeout == 0 {
		h.writeTimeout = defaultWriteTimeout
	}
	if h.pingInterval == 0 {
		h.pingInterval = defaultPingInterval
	}
	return h, nil
}

// Register mounts the handler on mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle(Route, h)
}

// ServeHTTP subscribes before upgrading so a missing battle is a plain
// HTTP error rather than a closed socket
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	battleID := r.PathValue("id")
	if battleID == "" {
		http.Error(w, "battle id is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sub, err := h.battles.Subscribe(ctx, &battle.SubscribeInput{BattleID: battleID})
	if err != nil {
		http.Error(w, errors.GetMessage(err), errors.GetCode(err).HTTPStatus())
		return
	}
	defer sub.Cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error
		slog.Warn("WebSocket upgrade failed", "battle_id", battleID, "error", err)
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	if sub.Ended {
		slog.Info("Effect stream refused for ended battle", "battle_id", battleID)
		if err := h.closeEnded(conn); err != nil {
			slog.Debug("Failed to close effect stream", "battle_id", battleID, "error", err)
		}
		return
	}

	slog.Info("Effect stream opened", "battle_id", battleID, "remote_addr", r.RemoteAddr)
	go readUntilClosed(conn, cancel)

	if err := h.writeEffects(conn, sub.Effects); err != nil {
		slog.Debug("Effect stream ended", "battle_id", battleID, "error", err)
		return
	}
	slog.Info("Effect stream closed", "battle_id", battleID)
}

// readUntilClosed drains control frames; any read error means the peer left
func readUntilClosed(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

func (h *Handler) writeEffects(conn *websocket.Conn, effects <-chan state.Record) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case rec, ok := <-effects:
			if !ok {
				return nil
			}
			if err := conn.SetWriteDeadline(time.Now().Add(h.writeTimeout)); err != nil {
				return err
			}
			if err := conn.WriteJSON(rec); err != nil {
				return err
			}
			if rec.Kind == state.KindBattleEnded {
				return h.closeEnded(conn)
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.writeTimeout)); err != nil {
				return err
			}
		}
	}
}

func (h *Handler) closeEnded(conn *websocket.Conn) error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "battle ended")
	return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeTimeout))
}
