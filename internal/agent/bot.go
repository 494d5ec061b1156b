// Package agent - безголовый игрок для нагрузочных и ручных проверок.
//
// Bot является ВНЕШНИМ клиентом: он подключается к серверу по WebSocket
// так же, как обычный игрок, и собирает тот же клиентский конвейер
// (прием, перевод ID, планирование, расписание шагов).
//
// Жизненный цикл:
//  1. Dial -> рукопожатие, получение Welcome с параметрами симуляции.
//  2. Run -> на каждом тике: прием кадров, client.Tick, отправка очереди.
//  3. Раз в think вызывается Decide: атаковать видимую цель, бить текущую
//     или идти в случайную известную клетку.
package agent

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"gridsync/internal/client"
	"gridsync/internal/domain"
	"gridsync/internal/network"
	"gridsync/pkg/api"
	"gridsync/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait     = 5 * time.Second
	handshakeWait = 5 * time.Second
)

// DecisionKind - что бот решил сделать.
type DecisionKind uint8

const (
	Idle DecisionKind = iota
	Walk
	Attack
	AutoAttack
)

func (k DecisionKind) String() string {
	switch k {
	case Walk:
		return "walk"
	case Attack:
		return "attack"
	case AutoAttack:
		return "auto_attack"
	default:
		return "idle"
	}
}

// Decision - выбранное действие. Tile и Click заданы для Walk и Attack.
type Decision struct {
	Kind  DecisionKind
	Tile  domain.Tile
	Click client.Click
}

// Bot представляет собой "Игрока-компьютера" (Headless Agent).
type Bot struct {
	Name     string
	Welcome  api.Welcome
	Client   *client.Client
	endpoint *network.Endpoint
	conn     *websocket.Conn
	rng      *rand.Rand
	log      *logrus.Entry
}

// Dial подключается к url и проходит рукопожатие.
func Dial(ctx context.Context, url, name string, clientID uint64, seed int64) (*Bot, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}

	welcome, err := handshake(conn, api.Handshake{ProtocolID: api.ProtocolID, ClientID: clientID, Name: name})
	if err != nil {
		conn.Close()
		return nil, err
	}

	endpoint := network.NewClientEndpoint()
	b := &Bot{
		Name:     name,
		Welcome:  welcome,
		Client:   client.New(welcome.ClientID, endpoint, welcome.StepInterval),
		endpoint: endpoint,
		conn:     conn,
		rng:      rand.New(rand.NewSource(seed)),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "bot",
			"client_id": welcome.ClientID,
			"name":      name,
		}),
	}
	b.log.WithField("tick_rate", welcome.TickRate).Info("Bot connected")
	return b, nil
}

func handshake(conn *websocket.Conn, hs api.Handshake) (api.Welcome, error) {
	data, err := api.Encode(hs)
	if err != nil {
		return api.Welcome{}, err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return api.Welcome{}, err
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return api.Welcome{}, fmt.Errorf("failed to send handshake: %w", err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(handshakeWait)); err != nil {
		return api.Welcome{}, err
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		return api.Welcome{}, fmt.Errorf("failed to read welcome: %w", err)
	}
	var welcome api.Welcome
	if err := api.Decode(reply, &welcome); err != nil {
		return api.Welcome{}, err
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return api.Welcome{}, err
	}
	return welcome, nil
}

// Run запускает цикл жизни бота до отмены ctx или разрыва соединения.
func (b *Bot) Run(ctx context.Context, think time.Duration) error {
	defer b.conn.Close()

	frames := make(chan []byte, 256)
	readErr := make(chan error, 1)
	go b.readLoop(ctx, frames, readErr)

	rate := b.Welcome.TickRate
	if rate <= 0 {
		rate = domain.DefaultTickRate
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	lastThought := time.Time{}
	for {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = b.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return nil
		case err := <-readErr:
			return err
		case frame := <-frames:
			if err := b.endpoint.Deliver(frame); err != nil {
				b.log.WithError(err).Debug("Frame dropped")
			}
		case now := <-ticker.C:
			if _, err := b.Client.Tick(); err != nil {
				b.log.WithError(err).Warn("Client tick failed")
			}
			if now.Sub(lastThought) >= think {
				lastThought = now
				b.act(Decide(b.Client.State, b.Client.Scheduler.Len(), b.rng))
			}
			if err := b.flush(now); err != nil {
				return err
			}
		}
	}
}

func (b *Bot) readLoop(ctx context.Context, frames chan<- []byte, errs chan<- error) {
	for {
		kind, frame, err := b.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) || errors.Is(err, websocket.ErrCloseSent) {
				errs <- nil
				return
			}
			errs <- fmt.Errorf("read: %w", err)
			return
		}
		if kind != websocket.BinaryMessage {
			continue
		}
		select {
		case frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

// flush отправляет накопленные кадры конечной точки
func (b *Bot) flush(now time.Time) error {
	out := make(chan []byte, 256)
	b.endpoint.Flush(now, out)
	close(out)

	for frame := range out {
		if err := b.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return err
		}
		if err := b.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}
	return nil
}

func (b *Bot) act(d Decision) {
	var err error
	switch d.Kind {
	case Walk, Attack:
		err = b.Client.Click(d.Tile, d.Click)
	case AutoAttack:
		err = b.Client.AutoAttack()
	default:
		return
	}
	if errors.Is(err, client.ErrNoControlled) {
		// свой игрок исчез между Decide и отправкой, ждем следующего Spawn
		return
	}
	if err != nil {
		b.log.WithError(err).WithField("decision", d.Kind.String()).Debug("Decision not applied")
		return
	}
	b.log.WithFields(logrus.Fields{
		"decision": d.Kind.String(),
		"tile":     d.Tile.String(),
	}).Debug("Bot decided")
}

// Decide выбирает следующее действие по локальному состоянию.
// pending - сколько шагов еще в расписании: пока бот идет, он не передумывает.
func Decide(s *client.State, pending int, rng *rand.Rand) Decision {
	me, ok := s.Entity(s.Controlled)
	if !ok || pending > 0 {
		return Decision{Kind: Idle}
	}

	if me.Target != 0 {
		if _, alive := s.Entity(me.Target); alive {
			return Decision{Kind: AutoAttack}
		}
	}

	targets := append(s.FindKind(domain.EntityDummy), s.FindKind(domain.EntitySlime)...)
	for _, id := range targets {
		if e, ok := s.Entity(id); ok && e.Tile.Y == me.Tile.Y {
			return Decision{Kind: Attack, Tile: e.Tile, Click: client.Click{Action: domain.ActionAttack, Target: id}}
		}
	}

	tiles := make([]domain.Tile, 0)
	for t := range s.Traversable() {
		if t != me.Tile {
			tiles = append(tiles, t)
		}
	}
	if len(tiles) == 0 {
		return Decision{Kind: Idle}
	}
	slices.SortFunc(tiles, compareTiles)
	return Decision{Kind: Walk, Tile: tiles[rng.Intn(len(tiles))], Click: client.WalkClick()}
}

func compareTiles(a, b domain.Tile) int {
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}
