// Package sync provides the in-process notification channel that keeps
// task stores bound to the same list name consistent.
package sync

import (
	"log"
	gosync "sync"

	"github.com/google/uuid"
)

// Subscription identifies one registered handler.
type Subscription struct {
	ListName string
	ID       uuid.UUID
}

// subscriber is a registered handler and its identity.
type subscriber struct {
	id uuid.UUID
	fn func()
}

// Channel is a publish/subscribe registry partitioned by list name.
// Construct one per process and share it between all task stores.
type Channel struct {
	mu         gosync.Mutex
	handlers   map[string][]subscriber
	publishing map[string]bool
}

// NewChannel creates an empty Channel.
func NewChannel() *Channel {
	return &Channel{
		handlers:   make(map[string][]subscriber),
		publishing: make(map[string]bool),
	}
}

// Subscribe registers fn to run whenever listName is published.
func (c *Channel) Subscribe(listName string, fn func()) Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := Subscription{ListName: listName, ID: uuid.New()}
	c.handlers[listName] = append(c.handlers[listName], subscriber{id: sub.ID, fn: fn})
	return sub
}

// Unsubscribe removes a registration. Unknown registrations are ignored.
func (c *Channel) Unsubscribe(sub Subscription) {
	c.mu.Lock()
	defer c.mu.Unlock()

	subs := c.handlers[sub.ListName]
	for i, s := range subs {
		if s.id != sub.ID {
			continue
		}
		// Copy rather than splice in place: a Publish in progress may
		// still be iterating the old slice.
		next := make([]subscriber, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(c.handlers, sub.ListName)
		} else {
			c.handlers[sub.ListName] = next
		}
		return
	}
}

// Publish runs the handlers registered for listName, in registration
// order, and returns how many ran. A Publish for a name that is already
// being published is dropped, which bounds re-entrancy to depth 1.
func (c *Channel) Publish(listName string) int {
	c.mu.Lock()
	if c.publishing[listName] {
		c.mu.Unlock()
		log.Printf("sync: dropping nested publish for list %q", listName)
		return 0
	}
	subs := c.handlers[listName]
	c.publishing[listName] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.publishing, listName)
		c.mu.Unlock()
	}()

	for _, s := range subs {
		s.fn()
	}
	return len(subs)
}

// Subscribers returns the number of handlers registered for listName.
func (c *Channel) Subscribers(listName string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handlers[listName])
}
