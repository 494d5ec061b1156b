package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gridsync/internal/engine"
	"gridsync/internal/network"
	"gridsync/pkg/api"
	"gridsync/pkg/logger"
	"gridsync/pkg/utils"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Настройки WebSocket
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	handshakeWait    = 5 * time.Second
	maxMessageSize   = 4096
	preloadTimeout   = 3 * time.Second
	closeReasonProto = "protocol mismatch"
)

var ErrHandshake = errors.New("handshake failed")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Client - посредник между Websocket и транспортом сервера.
// Каждый бинарный кадр WebSocket - один кадр конечной точки.
type Client struct {
	Game *engine.Instance
	Hub  *network.Hub
	Conn *websocket.Conn

	ID   uint64
	Name string
	out  <-chan []byte
	log  *logrus.Entry
}

func NewClient(game *engine.Instance, hub *network.Hub, conn *websocket.Conn) *Client {
	return &Client{
		Game: game,
		Hub:  hub,
		Conn: conn,
		log:  logger.Log.WithField("component", "ws_client"),
	}
}

// handshake читает Handshake, подгружает сохраненного игрока, регистрирует
// клиента в хабе и отвечает Welcome. Пока handshake не вернулся, тик о клиенте не знает.
func (c *Client) handshake(ctx context.Context) error {
	if err := c.Conn.SetReadDeadline(time.Now().Add(handshakeWait)); err != nil {
		return err
	}
	kind, data, err := c.Conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	if kind != websocket.BinaryMessage {
		return fmt.Errorf("%w: expected binary message", ErrHandshake)
	}

	var hs api.Handshake
	if err := api.Decode(data, &hs); err != nil {
		if errors.Is(err, api.ErrProtocolMismatch) {
			c.writeClose(websocket.CloseProtocolError, closeReasonProto)
		}
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}

	c.ID = hs.ClientID
	if c.ID == 0 {
		c.ID = utils.NewClientID()
	}
	c.Name = hs.Name
	c.log = c.log.WithField("client_id", c.ID)

	preloadCtx, cancel := context.WithTimeout(ctx, preloadTimeout)
	defer cancel()
	if err := c.Game.Preload(preloadCtx, c.ID); err != nil {
		// Без сохраненной клетки игрок появится в точке по умолчанию
		c.log.WithError(err).Warn("Preload failed")
	}

	welcome, err := api.Encode(c.Game.Welcome(c.ID))
	if err != nil {
		return err
	}

	out, err := c.Hub.Register(c.ID, c.Name)
	if err != nil {
		c.writeClose(websocket.ClosePolicyViolation, "already connected")
		return fmt.Errorf("%w: %v", ErrHandshake, err)
	}
	c.out = out

	if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		c.Hub.Unregister(c.ID)
		return err
	}
	if err := c.Conn.WriteMessage(websocket.BinaryMessage, welcome); err != nil {
		c.Hub.Unregister(c.ID)
		return fmt.Errorf("failed to write welcome: %w", err)
	}

	c.log.WithField("name", c.Name).Info("Client logged in")
	return nil
}

func (c *Client) writeClose(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		c.log.WithError(err).Debug("write close message failed")
	}
}

// readPump передает кадры клиента в хаб до разрыва соединения
func (c *Client) readPump() {
	defer func() {
		c.Hub.Unregister(c.ID)
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection")
		}
		c.log.Info("Client disconnected")
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		c.log.WithError(err).Warn("failed to set read deadline")
	}
	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
			c.log.WithError(err).Warn("failed to set pong read deadline")
		}
		return nil
	})

	for {
		kind, frame, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.WithError(err).Warn("WS read error")
			}
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		if err := c.Hub.Deliver(c.ID, frame); err != nil {
			c.log.WithError(err).Debug("Frame dropped")
		}
	}
}

// writePump отправляет кадры клиенту + Ping
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if err := c.Conn.Close(); err != nil {
			c.log.WithError(err).Debug("failed to close websocket connection in writePump")
		}
	}()

	for {
		select {
		case frame, ok := <-c.out:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set write deadline")
			}
			if !ok {
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.log.WithError(err).Debug("write close message failed")
				}
				return
			}
			if err := c.Conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				c.log.WithError(err).Debug("write frame failed")
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.log.WithError(err).Warn("failed to set ping write deadline")
			}
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.log.WithError(err).Debug("ping failed")
				return
			}
		}
	}
}
