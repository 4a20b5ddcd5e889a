package session

import (
	"sync"
	"time"

	"github.com/lox/headsup/internal/game"
)

// EventType names a state change
type EventType string

const (
	EventRoundStart   EventType = "round_start"
	EventPlayerAction EventType = "player_action"
	EventStreetChange EventType = "street_change"
	EventRoundEnd     EventType = "round_end"
	EventRoundReset   EventType = "round_reset"
	EventRoundAborted EventType = "round_aborted"
	EventRejected     EventType = "action_rejected"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Event is published after every state change. Snapshot is the state
// immediately after the change.
type Event struct {
	Type      EventType
	Seat      game.Seat   // acting seat for player actions, winner for round ends
	Action    game.Action // player actions only
	Amount    int         // chips paid or awarded
	Snapshot  Snapshot
	Err       error // rejected and aborted events only
	Timestamp time.Time
}

// Subscriber receives events
type Subscriber interface {
	OnEvent(event Event)
}

// SubscriberFunc adapts a function to the Subscriber interface
type SubscriberFunc func(Event)

// OnEvent calls f(event)
func (f SubscriberFunc) OnEvent(event Event) {
	f(event)
}

// eventBus fans events out to subscribers. Publishing happens outside the
// session lock so subscribers may call back into the session.
type eventBus struct {
	mu          sync.Mutex
	subscribers map[int]Subscriber
	nextID      int
}

func newEventBus() *eventBus {
	return &eventBus{subscribers: make(map[int]Subscriber)}
}

func (b *eventBus) subscribe(s Subscriber) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subscribers[id] = s
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers, id)
	}
}

func (b *eventBus) publish(events []Event) {
	if len(events) == 0 {
		return
	}
	b.mu.Lock()
	subs := make([]Subscriber, 0, len(b.subscribers))
	// deliver in subscription order
	for i := 0; i < b.nextID; i++ {
		if s, ok := b.subscribers[i]; ok {
			subs = append(subs, s)
		}
	}
	b.mu.Unlock()

	for _, e := range events {
		for _, s := range subs {
			s.OnEvent(e)
		}
	}
}

func (b *eventBus) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = make(map[int]Subscriber)
}
