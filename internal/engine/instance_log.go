package engine

import (
	"gridsync/internal/domain"
	"gridsync/internal/engine/handlers"

	"github.com/sirupsen/logrus"
)

// logResult пишет итог команды в игровой лог.
func (i *Instance) logResult(clientID uint64, action domain.ActionType, res handlers.Result) {
	if res.Msg == "" {
		return
	}

	entry := i.log.WithFields(logrus.Fields{
		"component": "game_log",
		"client_id": clientID,
		"action":    action.String(),
		"log_type":  res.MsgType,
		"tick":      i.CurrentTick,
	})
	if res.IsRejected() {
		entry.Info(res.Msg)
		return
	}
	entry.Debug(res.Msg)
}
