package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/lotto-ledger/pkg/jackpot"
)

const (
	EventTypeConnected = "connected"
	EventTypeUpdated   = "updated"
	EventTypeHeartbeat = "heartbeat"
)

// JackpotHandler bridges jackpot.Service to HTTP routes (SSE + WebSocket).
type JackpotHandler struct {
	svc             *jackpot.Service
	logger          zerolog.Logger
	heartbeatPeriod time.Duration
	upgrader        websocket.Upgrader
}

// NewJackpotHandler creates a jackpot handler.
func NewJackpotHandler(svc *jackpot.Service, logger zerolog.Logger) *JackpotHandler {
	return &JackpotHandler{
		svc:             svc,
		logger:          logger.With().Str("handler", "jackpot").Logger(),
		heartbeatPeriod: 30 * time.Second,
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Response is one stream message.
type Response struct {
	Type      string                `json:"type"`
	Timestamp int64                 `json:"timestamp"`
	Pools     map[string]PoolUpdate `json:"pools,omitempty"`
}

// PoolUpdate is the latest value of one pool.
type PoolUpdate struct {
	Amount    decimal.Decimal `json:"amount"`
	Minor     int64           `json:"minor"`
	Draw      int             `json:"draw"`
	Timestamp int64           `json:"timestamp"`
}

func newPoolUpdate(u jackpot.Update) PoolUpdate {
	return PoolUpdate{Amount: u.Amount, Minor: u.Minor, Draw: u.Draw, Timestamp: u.Timestamp.Unix()}
}

type streamConfig struct {
	isTargetPool func(string) bool
	ctx          context.Context
}

// StreamUpdates opens an SSE connection and streams pool updates.
// Route: GET /api/jackpot/updates?pools=jackpot,tier1
func (h *JackpotHandler) StreamUpdates(c *gin.Context) {
	config, ok := h.prepareStreamConfig(c)
	if !ok {
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)

	h.streamUpdates(config, &sseSender{writer: c.Writer}, nil)
}

// StreamUpdatesWebSocket opens a WebSocket connection and streams pool updates.
// Route: GET /api/jackpot/updates/ws?pools=jackpot
func (h *JackpotHandler) StreamUpdatesWebSocket(c *gin.Context) {
	config, ok := h.prepareStreamConfig(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}
	defer conn.Close() //nolint:errcheck

	done := make(chan struct{})

	// The client never sends data; a read error means it went away.
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(10 * time.Minute)) //nolint:errcheck
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(10 * time.Minute))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Warn().Err(err).Msg("WebSocket connection closed unexpectedly")
				} else {
					h.logger.Debug().Err(err).Msg("WebSocket closed")
				}
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	go func() {
		defer pingTicker.Stop()
		for {
			select {
			case <-done:
				return
			case <-pingTicker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					h.logger.Debug().Err(err).Msg("Failed to send ping")
					return
				}
			}
		}
	}()

	sender := &wsSender{
		conn:          conn,
		done:          done,
		logger:        h.logger,
		writeDeadline: 10 * time.Second,
	}
	h.streamUpdates(config, sender, done)
}

// prepareStreamConfig reads the optional pool filter.
func (h *JackpotHandler) prepareStreamConfig(c *gin.Context) (*streamConfig, bool) {
	var targets []string
	if raw := c.Query("pools"); raw != "" {
		targets = lo.Uniq(lo.Map(strings.Split(raw, ","), func(s string, _ int) string {
			return strings.TrimSpace(s)
		}))
		known := append([]string{jackpot.PoolJackpot}, jackpot.TierPools...)
		if unknown, _ := lo.Difference(targets, known); len(unknown) > 0 {
			ErrorWithMessage(c, http.StatusBadRequest, "unknown pools: "+strings.Join(unknown, ","))
			return nil, false
		}
	}

	return &streamConfig{
		isTargetPool: func(poolID string) bool {
			return len(targets) == 0 || lo.Contains(targets, poolID)
		},
		ctx: c.Request.Context(),
	}, true
}

// streamUpdates handles the common streaming logic for both SSE and WebSocket.
func (h *JackpotHandler) streamUpdates(config *streamConfig, sender messageSender, closed <-chan struct{}) {
	updates, cancel := h.svc.Listen(config.ctx)
	defer cancel()

	if err := sender.Send(&Response{Type: EventTypeConnected, Timestamp: time.Now().Unix()}); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to send connected event, stopping stream")
		return
	}

	initial := make(map[string]PoolUpdate)
	for _, u := range h.svc.Current(config.ctx) {
		if config.isTargetPool(u.PoolID) {
			initial[u.PoolID] = newPoolUpdate(u)
		}
	}
	if len(initial) > 0 {
		if err := sender.Send(&Response{Type: EventTypeUpdated, Timestamp: time.Now().Unix(), Pools: initial}); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to send initial pools, stopping stream")
			return
		}
	}

	heartbeat := time.NewTicker(h.heartbeatPeriod)
	defer heartbeat.Stop()

	for {
		select {
		case <-config.ctx.Done():
			return
		case <-closed:
			h.logger.Debug().Msg("WebSocket connection closed, stopping stream")
			return
		case <-heartbeat.C:
			if err := sender.Send(&Response{Type: EventTypeHeartbeat, Timestamp: time.Now().Unix()}); err != nil {
				h.logger.Warn().Err(err).Msg("Failed to send heartbeat, stopping stream")
				return
			}
		case update, ok := <-updates:
			if !ok {
				return
			}
			// One flush emits all pools of a draw back to back; send them together.
			pending := make(map[string]PoolUpdate)
			if config.isTargetPool(update.PoolID) {
				pending[update.PoolID] = newPoolUpdate(update)
			}
		drain:
			for {
				select {
				case next, ok := <-updates:
					if !ok {
						break drain
					}
					if config.isTargetPool(next.PoolID) {
						pending[next.PoolID] = newPoolUpdate(next)
					}
				default:
					break drain
				}
			}
			if len(pending) == 0 {
				continue
			}
			if err := sender.Send(&Response{Type: EventTypeUpdated, Timestamp: time.Now().Unix(), Pools: pending}); err != nil {
				h.logger.Warn().Err(err).Int("pool_count", len(pending)).Msg("Failed to send update, stopping stream")
				return
			}
		}
	}
}

// messageSender interface for sending messages (SSE or WebSocket).
type messageSender interface {
	Send(*Response) error
}

// sseSender sends messages via SSE.
type sseSender struct {
	writer gin.ResponseWriter
}

func (s *sseSender) Send(resp *Response) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if _, err := s.writer.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		return err
	}
	s.writer.Flush()
	return nil
}

// wsSender sends messages via WebSocket.
type wsSender struct {
	conn          *websocket.Conn
	done          <-chan struct{}
	logger        zerolog.Logger
	writeDeadline time.Duration
}

func (s *wsSender) Send(resp *Response) error {
	select {
	case <-s.done:
		return io.EOF
	default:
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.writeDeadline)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to set write deadline")
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			s.logger.Debug().Err(err).Str("event_type", resp.Type).Msg("WebSocket closed during write")
		} else {
			s.logger.Warn().Err(err).Str("event_type", resp.Type).Msg("WebSocket WriteMessage failed")
		}
		return err
	}
	return nil
}
