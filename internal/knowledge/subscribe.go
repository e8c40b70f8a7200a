// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/teambrain/knowledgesync/pkg/types"
)

// Callback receives a copy of the entry that touched a subscribed topic.
// Callbacks run synchronously on the mutating goroutine, after the store
// state has settled; a panicking callback is isolated and logged.
type Callback func(types.Entry)

type subscriber struct {
	id string
	fn Callback
}

// Subscribe registers fn for every add or update of an entry carrying the
// given topic. It returns a registration token for Unsubscribe; Go function
// values are not comparable, so the token stands in for the callback
// identity.
func (s *Store) Subscribe(topic string, fn Callback) string {
	topic = types.NormalizeTopic(topic)
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[topic] = append(s.subs[topic], subscriber{id: id, fn: fn})
	return id
}

// Unsubscribe removes the registration identified by token from the topic's
// callback list and reports whether one was found.
func (s *Store) Unsubscribe(topic, token string) bool {
	topic = types.NormalizeTopic(topic)

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.subs[topic]
	for i, sub := range list {
		if sub.id == token {
			s.subs[topic] = append(list[:i], list[i+1:]...)
			if len(s.subs[topic]) == 0 {
				delete(s.subs, topic)
			}
			return true
		}
	}
	return false
}

// subscribersFor collects, in registration order per topic, every callback
// watching one of the entry's topics. Called with the lock held; the
// returned slice is invoked after the lock is released so a callback may
// call back into the store.
func (s *Store) subscribersFor(entry *types.Entry) []subscriber {
	var out []subscriber
	for _, topic := range entry.Topics {
		out = append(out, s.subs[topic]...)
	}
	return out
}

// dispatch invokes each callback with its own guarded call so one failing
// subscriber cannot abort the mutation or starve the others.
func dispatch(subs []subscriber, entry types.Entry) {
	for _, sub := range subs {
		invoke(sub, entry)
	}
}

func invoke(sub subscriber, entry types.Entry) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("subscription callback panicked", "entry", entry.ID, "panic", r)
		}
	}()
	sub.fn(entry.Clone())
}
