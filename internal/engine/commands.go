package engine

import (
	"gridsync/internal/domain"
	"gridsync/internal/engine/handlers"
	"gridsync/internal/network"
	"gridsync/internal/systems"
	"gridsync/pkg/api"

	"github.com/sirupsen/logrus"
)

func (i *Instance) commandsStage() {
	if n := i.timers.Fire(i.World, i.CurrentTick); n > 0 {
		i.log.WithField("entities", n).Debug("Punch finished")
	}

	for _, clientID := range i.Interest.ClientIDs() {
		actor, _ := i.Interest.Controlled(clientID)

		for _, raw := range i.Hub.Receive(clientID, network.CommandChannel) {
			i.executeCommand(clientID, actor, raw)
		}
		for _, raw := range i.Hub.Receive(clientID, network.ClickChannel) {
			i.logClick(clientID, raw)
		}
		if n := len(i.Hub.Receive(clientID, network.InputChannel)); n > 0 {
			i.log.WithFields(logrus.Fields{"client_id": clientID, "count": n}).Debug("Input messages ignored")
		}
	}

	if n := systems.SettleRunning(i.World, i.CurrentTick, i.cfg.StepInterval); n > 0 {
		i.log.WithField("entities", n).Debug("Stopped running")
	}
}

// executeCommand разбирает и выполняет одну команду клиента.
// Испорченный ввод логируется и отбрасывается.
func (i *Instance) executeCommand(clientID uint64, actor domain.EntityID, raw []byte) {
	cmdLog := i.log.WithFields(logrus.Fields{
		"client_id": clientID,
		"tick":      i.CurrentTick,
	})

	var cmd api.ClientCommand
	if err := api.Decode(raw, &cmd); err != nil {
		cmdLog.WithError(err).Warn("Malformed command dropped")
		return
	}

	handler, ok := i.handlers[cmd.Action]
	if !ok {
		cmdLog.WithField("action", cmd.Action.String()).Warn("No handler for action")
		return
	}
	if !i.World.Alive(actor) || i.World.IsDespawning(actor) {
		cmdLog.WithField("action", cmd.Action.String()).Debug("Command for a removed entity dropped")
		return
	}

	ctx := handlers.Context{
		World:    i.World,
		Tick:     i.CurrentTick,
		ClientID: clientID,
		Actor:    actor,
		Timers:   i.timers,
		Rules:    i.cfg.Combat,
	}

	result, err := handler(ctx, cmd.Payload)
	if err != nil {
		cmdLog.WithError(err).WithField("action", cmd.Action.String()).Warn("Command rejected")
		return
	}

	if i.journal != nil {
		i.journal.Record(i.CurrentTick, clientID, uint8(network.CommandChannel), raw)
	}
	i.logResult(clientID, cmd.Action, result)
}

func (i *Instance) logClick(clientID uint64, raw []byte) {
	var click api.ClickMessage
	if err := api.Decode(raw, &click); err != nil {
		i.log.WithError(err).WithField("client_id", clientID).Warn("Malformed click dropped")
		return
	}
	i.log.WithFields(logrus.Fields{
		"client_id":   clientID,
		"entity_id":   click.Entity.String(),
		"click":       click.Click.String(),
		"destination": click.Destination.String(),
	}).Debug("Click event")
}
