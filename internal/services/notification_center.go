package services

import (
	"sync"
	"time"
)

// NotificationKind classifies a transient notification
type NotificationKind string

const (
	NotificationSuccess NotificationKind = "success"
	NotificationError   NotificationKind = "error"
)

// Notification is a transient user-facing message
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
}

// notificationCenter holds at most one notification at a time. Publishing
// replaces the current one and cancels its pending dismiss timer; a
// notification dismisses itself after the configured TTL.
type notificationCenter struct {
	mu         sync.Mutex
	current    *Notification
	timer      *time.Timer
	generation uint64
	ttl        time.Duration
}

// NewNotificationCenter creates a notification center with the given
// auto-dismiss TTL
func NewNotificationCenter(ttl time.Duration) NotificationCenterInterface {
	return &notificationCenter{ttl: ttl}
}

// Publish replaces the current notification and arms a fresh dismiss timer.
// The generation counter ensures a replaced notification's timer can never
// dismiss a later one.
func (c *notificationCenter) Publish(kind NotificationKind, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}

	c.generation++
	gen := c.generation
	c.current = &Notification{
		Kind:      kind,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	c.timer = time.AfterFunc(c.ttl, func() {
		c.dismiss(gen)
	})
}

// Current returns the notification on display, or nil
func (c *notificationCenter) Current() *Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return nil
	}
	copied := *c.current
	return &copied
}

// Close dismisses the current notification immediately
func (c *notificationCenter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// Shutdown cancels any pending timer; used on service teardown
func (c *notificationCenter) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

// dismiss clears the slot only if the notification that armed the timer is
// still the one on display
func (c *notificationCenter) dismiss(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	c.clearLocked()
}

func (c *notificationCenter) clearLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.current = nil
	c.generation++
}
