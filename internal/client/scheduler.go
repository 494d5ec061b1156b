package client

import (
	"gridsync/internal/domain"
)

// Command - исходящая команда клика в ID сервера.
type Command struct {
	Click domain.LeftClick
	Tile  domain.Tile
}

// Scheduler держит очередь шагов управляемой сущности.
type Scheduler struct {
	interval uint64
	queue    []Step
}

func NewScheduler(interval uint64) *Scheduler {
	if interval == 0 {
		interval = domain.DefaultStepInterval
	}
	return &Scheduler{interval: interval}
}

// Schedule проставляет шагу i тик now+(i+1)*interval и заменяет очередь.
// Уже отправленные команды не отзываются.
func (s *Scheduler) Schedule(now uint64, steps []Step) {
	queue := make([]Step, len(steps))
	for i, st := range steps {
		st.Tick = now + uint64(i+1)*s.interval
		queue[i] = st
	}
	s.queue = queue
}

// Due снимает с головы очереди все шаги с Tick <= now и переводит их в команды.
// Шаг, цель которого больше не связана с сервером, пропускается.
// Pickup сразу удаляет предмет локально через despawn.
func (s *Scheduler) Due(now uint64, mapper *Mapper, despawn func(LocalID)) []Command {
	var out []Command
	n := 0
	for n < len(s.queue) && s.queue[n].Tick <= now {
		st := s.queue[n]
		n++

		click := domain.LeftClick{Action: st.Click.Action}
		if st.Click.Target != 0 {
			var server domain.EntityID
			var ok bool
			if st.Click.Action == domain.ActionPickup {
				server, ok = mapper.RemoveLocal(st.Click.Target)
				if ok && despawn != nil {
					despawn(st.Click.Target)
				}
			} else {
				server, ok = mapper.ServerOf(st.Click.Target)
			}
			if !ok {
				continue
			}
			click.Target = server
		}
		out = append(out, Command{Click: click, Tile: st.Tile})
	}
	s.queue = s.queue[n:]
	return out
}

// Pending возвращает копию оставшихся шагов.
func (s *Scheduler) Pending() []Step {
	out := make([]Step, len(s.queue))
	copy(out, s.queue)
	return out
}

func (s *Scheduler) Len() int {
	return len(s.queue)
}

func (s *Scheduler) Clear() {
	s.queue = nil
}

func (s *Scheduler) Interval() uint64 {
	return s.interval
}
