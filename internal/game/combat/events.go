package combat

// EventKind classifies a presentation event.
type EventKind uint8

const (
	EventDamage EventKind = iota
	EventMiss
	EventAbsorb
	EventHeal
	EventShield
	EventStatus
	EventDeath
	EventRevive
	EventMove
	EventSkill
	EventTurnSkip
	EventRoundStart
	EventBattleEnd
	EventNote
)

var eventNames = [...]string{
	EventDamage:     "damage",
	EventMiss:       "miss",
	EventAbsorb:     "absorb",
	EventHeal:       "heal",
	EventShield:     "shield",
	EventStatus:     "status",
	EventDeath:      "death",
	EventRevive:     "revive",
	EventMove:       "move",
	EventSkill:      "skill",
	EventTurnSkip:   "turn_skip",
	EventRoundStart: "round_start",
	EventBattleEnd:  "battle_end",
	EventNote:       "note",
}

func (k EventKind) String() string {
	if int(k) < len(eventNames) {
		return eventNames[k]
	}
	return "unknown"
}

// Event описывает одно изменение состояния боя для слоя отображения.
type Event struct {
	Kind   EventKind
	Source string // unit id, "" for environment (DOT, sudden death)
	Target string
	Amount int
	Status string
	Text   string
	Row    int
	Col    int
}

// Observer receives events. Simulation results never depend on it.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// Observe implements Observer.
func (f ObserverFunc) Observe(e Event) { f(e) }

type nopObserver struct{}

func (nopObserver) Observe(Event) {}

// EventLog records every event. Not safe for concurrent use; a session is single-threaded.
type EventLog struct {
	Events []Event
}

// Observe implements Observer.
func (l *EventLog) Observe(e Event) {
	l.Events = append(l.Events, e)
}

// Filter returns events of the given kind in emission order.
func (l *EventLog) Filter(kind EventKind) []Event {
	var out []Event
	for _, e := range l.Events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// Count returns the number of events of the given kind.
func (l *EventLog) Count(kind EventKind) int {
	n := 0
	for _, e := range l.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Multi fans one event out to several observers.
type Multi []Observer

// Observe implements Observer.
func (m Multi) Observe(e Event) {
	for _, o := range m {
		o.Observe(e)
	}
}
