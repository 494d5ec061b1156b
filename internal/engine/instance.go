// Package engine - серверный цикл: один авторитетный мир, прогоняемый
// по тикам через фиксированную последовательность стадий.
package engine

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"gridsync/internal/domain"
	"gridsync/internal/engine/handlers"
	"gridsync/internal/engine/handlers/actions"
	"gridsync/internal/infrastructure/storage"
	"gridsync/internal/interest"
	"gridsync/internal/network"
	"gridsync/internal/replication"
	"gridsync/internal/world"
	"gridsync/pkg/dungeon"
	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Имена стадий тика в порядке выполнения
const (
	StageConnection  = "connection"
	StageScope       = "scope"
	StageTransitions = "transitions"
	StageCommands    = "commands"
	StageUpdates     = "updates"
	StageClear       = "clear"
)

// Stage - именованный шаг тика.
type Stage struct {
	Name string
	Run  func()
}

// Deps - внешние зависимости инстанса.
type Deps struct {
	Hub     *network.Hub
	Store   storage.PlayerStore // nil - позиции игроков не сохраняются
	Journal *storage.Journal    // nil - команды не записываются
	Clock   func() time.Time    // nil - time.Now
}

// Instance представляет собой один запущенный мир.
// Все поля, кроме снимка и подсказок появления, принадлежат горутине тика.
type Instance struct {
	cfg Config

	World      *world.World
	Hub        *network.Hub
	Interest   *interest.Manager
	Dispatcher *replication.Dispatcher

	handlers map[domain.ActionType]handlers.HandlerFunc
	timers   *CombatTimers
	stages   []Stage
	timings  []StageTiming

	store   storage.PlayerStore
	saver   *storage.Saver
	journal *storage.Journal
	clock   func() time.Time

	Rng         *rand.Rand // Локальный генератор
	CurrentTick uint64     // Локальное время мира

	hintsMu sync.Mutex
	hints   map[uint64]domain.Tile // сохраненные клетки, загруженные при рукопожатии

	snapMu   sync.RWMutex
	snapshot Snapshot

	log *logrus.Entry
}

func NewInstance(cfg Config, deps Deps) (*Instance, error) {
	if deps.Hub == nil {
		return nil, errors.New("hub is required")
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	w := world.New()
	level := dungeon.Training(cfg.WorldWidth, cfg.WorldDepth, cfg.ChunkSize)
	w.Populate(level)
	w.ClearTick()

	manager := interest.NewManager(cfg.ScopeRadius, deps.Hub)

	i := &Instance{
		cfg:        cfg,
		World:      w,
		Hub:        deps.Hub,
		Interest:   manager,
		Dispatcher: replication.NewDispatcher(w, manager, deps.Hub, cfg.FilteredLoad),
		handlers:   actions.Registry(),
		timers:     NewCombatTimers(),
		store:      deps.Store,
		journal:    deps.Journal,
		clock:      deps.Clock,
		Rng:        rand.New(rand.NewSource(cfg.Seed)),
		hints:      make(map[uint64]domain.Tile),
		log:        logger.Log.WithField("component", "engine"),
	}
	if i.store != nil {
		i.saver = storage.NewSaver(i.store)
	}

	i.stages = []Stage{
		{Name: StageConnection, Run: i.connectionStage},
		{Name: StageScope, Run: i.scopeStage},
		{Name: StageTransitions, Run: i.transitionsStage},
		{Name: StageCommands, Run: i.commandsStage},
		{Name: StageUpdates, Run: i.updatesStage},
		{Name: StageClear, Run: i.clearStage},
	}
	i.timings = make([]StageTiming, len(i.stages))
	for idx, s := range i.stages {
		i.timings[idx].Name = s.Name
	}

	i.log.WithFields(logrus.Fields{
		"entities": w.Len(),
		"width":    cfg.WorldWidth,
		"depth":    cfg.WorldDepth,
		"seed":     cfg.Seed,
	}).Info("World built")
	return i, nil
}

// Stages возвращает имена стадий в порядке выполнения.
func (i *Instance) Stages() []string {
	names := make([]string, len(i.stages))
	for idx, s := range i.stages {
		names[idx] = s.Name
	}
	return names
}

// Step прогоняет один тик.
func (i *Instance) Step() {
	for idx, s := range i.stages {
		start := time.Now()
		s.Run()
		i.timings[idx].Last = time.Since(start)
	}
	i.CurrentTick++
}

// Run запускает игровой цикл до отмены ctx.
func (i *Instance) Run(ctx context.Context) error {
	interval := i.cfg.TickInterval()
	i.log.WithField("tick_interval", interval.String()).Info("Instance loop started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			i.shutdown()
			return nil
		case <-ticker.C:
			i.Step()
		}
	}
}

// shutdown сохраняет всех подключенных игроков и дожидается записи.
func (i *Instance) shutdown() {
	for _, clientID := range i.Interest.ClientIDs() {
		if id, ok := i.Interest.Controlled(clientID); ok {
			i.savePlayer(clientID, id)
		}
	}
	if i.saver != nil {
		i.saver.Close()
		i.saver = nil
	}
	i.log.WithFields(logrus.Fields{
		"tick":    i.CurrentTick,
		"clients": len(i.Interest.ClientIDs()),
	}).Info("Instance loop stopped")
}

// Journal возвращает журнал команд (nil, если запись выключена).
// Читать можно только после остановки Run.
func (i *Instance) Journal() *storage.Journal {
	return i.journal
}

// --- Стадии ---

func (i *Instance) scopeStage() {
	if n := i.Interest.RecomputeScopes(i.World); n > 0 {
		i.log.WithField("clients", n).Debug("Scopes recomputed")
	}
}

func (i *Instance) transitionsStage() {
	for _, id := range i.World.TakeDespawns() {
		i.timers.Cancel(id)
		i.Interest.Release(i.World, id)
	}
	stats := i.Interest.Transitions(i.World)
	if stats.Spawned > 0 || stats.Despawned > 0 {
		i.log.WithFields(logrus.Fields{
			"spawned":   stats.Spawned,
			"despawned": stats.Despawned,
		}).Debug("Scope transitions")
	}
}

func (i *Instance) updatesStage() {
	i.Dispatcher.Updates()
	i.Dispatcher.Events()
	if err := i.Dispatcher.BroadcastTick(i.CurrentTick); err != nil {
		i.log.WithError(err).Debug("Tick broadcast incomplete")
	}
}

func (i *Instance) clearStage() {
	i.World.ClearTick()
	stats := i.Hub.Flush(i.clock())
	i.publishSnapshot(stats)
}
