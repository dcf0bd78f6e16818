package engine

import (
	"feedloader/internal/domain"
	"fmt"
	"sync"
)

// State - состояние single-flight защиты ленты.
type State int

const (
	// StateIdle: запросов нет, лента не исчерпана.
	StateIdle State = iota
	// StateFetching: выполняется ровно один запрос.
	StateFetching
	// StateExhausted: лента в терминальном состоянии, запросов больше не будет.
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateExhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type event int

const (
	eventAcquire event = iota
	eventHasMore
	eventTerminal
)

// transition - единственная функция переходов защиты.
// Возвращает новое состояние и признак того, что событие допустимо.
func transition(s State, ev event) (State, bool) {
	switch ev {
	case eventAcquire:
		if s == StateIdle {
			return StateFetching, true
		}
		return s, false
	case eventHasMore:
		if s == StateFetching {
			return StateIdle, true
		}
	case eventTerminal:
		if s == StateFetching {
			return StateExhausted, true
		}
	}
	return s, false
}

// Guard гарантирует не более одного запроса одновременно и ни одного
// после того, как лента исчерпана. Проверка и захват выполняются под одной блокировкой.
type Guard struct {
	mu    sync.Mutex
	state State
}

// NewGuard создает защиту. seededEmpty переводит её сразу в StateExhausted
// для лент, про которые заранее известно, что элементов нет.
func NewGuard(seededEmpty bool) *Guard {
	g := &Guard{state: StateIdle}
	if seededEmpty {
		g.state = StateExhausted
	}
	return g
}

// Acquire выдаёт разрешение на запрос, только если защита в StateIdle.
func (g *Guard) Acquire() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	next, ok := transition(g.state, eventAcquire)
	g.state = next
	return ok
}

// Release вызывается ровно один раз на каждое выданное разрешение.
// Вызов без разрешения - ошибка программиста и приводит к панике.
func (g *Guard) Release(outcome domain.Outcome) {
	ev := eventHasMore
	if outcome.Terminal() {
		ev = eventTerminal
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	next, ok := transition(g.state, ev)
	if !ok {
		panic(fmt.Sprintf("engine: Release(%s) in state %s without a granted fetch", outcome, g.state))
	}
	g.state = next
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Flags возвращает состояние в виде пары флагов blocked/exhausted.
func (g *Guard) Flags() (blocked, exhausted bool) {
	switch g.State() {
	case StateFetching:
		return true, false
	case StateExhausted:
		return true, true
	default:
		return false, false
	}
}

func (g *Guard) Exhausted() bool {
	return g.State() == StateExhausted
}
