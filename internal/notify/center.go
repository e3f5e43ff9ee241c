// Package notify holds the single result notification the screen shows
// after a payment attempt settles.
package notify

import (
	"sync"
	"time"
)

const (
	SuccessMessage = "¡Transacción Exitosa!"
	FailureMessage = "Transacción Fallida"
)

type Notification struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	ShownAt time.Time `json:"shownAt"`
}

// Center keeps at most one current notification. Each published
// notification auto-dismisses after the configured delay unless dismissed
// or replaced first; the pending timer is cancelled in either case. A timer
// callback that already fired when its notification was replaced carries
// the generation it was armed for and no-ops against the replacement.
type Center struct {
	ttl time.Duration

	mu         sync.Mutex
	current    *Notification
	timer      *time.Timer
	generation uint64
}

func NewCenter(ttl time.Duration) *Center {
	return &Center{ttl: ttl}
}

func (c *Center) Publish(success bool) {
	message := FailureMessage
	if success {
		message = SuccessMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.generation++
	generation := c.generation
	c.current = &Notification{Success: success, Message: message, ShownAt: time.Now()}
	c.timer = time.AfterFunc(c.ttl, func() {
		c.expire(generation)
	})
}

// expire dismisses only the notification the timer was armed for.
func (c *Center) expire(generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return
	}
	c.timer = nil
	c.current = nil
}

func (c *Center) Current() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	current := *c.current
	return &current
}

func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
}

// Close cancels any pending auto-dismiss timer. Used on service teardown.
func (c *Center) Close() {
	c.Dismiss()
}
