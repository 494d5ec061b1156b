package client

import (
	"errors"
	"fmt"

	"gridsync/internal/domain"
	"gridsync/internal/network"
	"gridsync/pkg/api"
	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
)

// ErrNoControlled - своя сущность игрока еще не пришла с сервера или уже удалена.
var ErrNoControlled = errors.New("no controlled entity")

// Conn - клиентская сторона соединения (network.Endpoint).
type Conn interface {
	Source
	Send(ch network.Channel, payload []byte) error
}

// Client собирает конвейер клиента: прием, применение, расписание.
type Client struct {
	ID        uint64
	Mapper    *Mapper
	State     *State
	Scheduler *Scheduler

	conn     Conn
	receiver *Receiver
	log      *logrus.Entry
}

func New(id uint64, conn Conn, stepInterval uint64) *Client {
	state := NewState(id)
	mapper := NewMapper()
	return &Client{
		ID:        id,
		Mapper:    mapper,
		State:     state,
		Scheduler: NewScheduler(stepInterval),
		conn:      conn,
		receiver:  NewReceiver(mapper, state.Allocate),
		log:       logger.Log.WithFields(logrus.Fields{"component": "client", "client_id": id}),
	}
}

// Tick выполняет один шаг клиента и возвращает примененные уведомления.
// 1. прием и перевод ID, 2. применение к состоянию, 3. отправка созревших шагов.
func (c *Client) Tick() ([]Notice, error) {
	notices := c.receiver.Poll(c.conn)
	c.State.Apply(notices)

	for _, cmd := range c.Scheduler.Due(c.State.Tick, c.Mapper, c.despawnLocal) {
		msg, err := api.NewClickCommand(cmd.Click, cmd.Tile)
		if err != nil {
			return notices, err
		}
		if err := c.send(network.CommandChannel, msg); err != nil {
			return notices, err
		}
	}
	return notices, nil
}

func (c *Client) despawnLocal(id LocalID) {
	c.State.Remove(id)
}

// Click планирует путь управляемой сущности к dest и заменяет текущую очередь.
// Диагностический клик уходит сразу.
func (c *Client) Click(dest domain.Tile, click Click) error {
	start, ok := c.State.ControlledTile()
	if !ok {
		return ErrNoControlled
	}
	steps, err := Plan(start, dest, click, c.State.Passable())
	if err != nil {
		return err
	}
	c.Scheduler.Schedule(c.State.Tick, steps)

	c.log.WithFields(logrus.Fields{
		"from":  start.String(),
		"to":    dest.String(),
		"click": click.String(),
		"steps": len(steps),
	}).Debug("Path scheduled")

	diag := api.ClickMessage{Destination: dest, Click: domain.LeftClick{Action: click.Action}}
	if server, ok := c.Mapper.ServerOf(c.State.Controlled); ok {
		diag.Entity = server
	}
	if server, ok := c.Mapper.ServerOf(click.Target); ok {
		diag.Click.Target = server
	}
	return c.send(network.ClickChannel, diag)
}

// AutoAttack просит сервер ударить текущую цель.
func (c *Client) AutoAttack() error {
	return c.send(network.CommandChannel, api.NewAutoAttackCommand())
}

func (c *Client) send(ch network.Channel, msg any) error {
	payload, err := api.Encode(msg)
	if err != nil {
		return err
	}
	if err := c.conn.Send(ch, payload); err != nil {
		return fmt.Errorf("send on channel %d: %w", ch, err)
	}
	return nil
}
