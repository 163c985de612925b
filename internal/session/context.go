// Package session tracks the identity of the replay run currently in
// progress so that other subsystems, chiefly logging, can annotate
// their output with it.
package session

import (
	"log/slog"
	"sync"
	"time"
)

// Context holds the current session name and virtual clock position.
type Context struct {
	mu          sync.RWMutex
	name        string
	virtualTime time.Time
}

// NewContext creates a context for the named session.
func NewContext(name string) *Context {
	if name == "" {
		name = "unnamed session"
	}
	return &Context{name: name}
}

// Name returns the current session name.
func (c *Context) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetName replaces the session name.
func (c *Context) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.name = name
}

// VirtualTime returns the last observed virtual clock position.
func (c *Context) VirtualTime() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.virtualTime
}

// SetVirtualTime records the virtual clock position after a tick.
func (c *Context) SetVirtualTime(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.virtualTime = t
}

// LogAttrs returns the session attributes to attach to log records.
// It satisfies logging.AttrSource.
func (c *Context) LogAttrs() []slog.Attr {
	c.mu.RLock()
	defer c.mu.RUnlock()

	attrs := []slog.Attr{slog.String("session", c.name)}
	if !c.virtualTime.IsZero() {
		attrs = append(attrs, slog.Time("virtual_time", c.virtualTime))
	}
	return attrs
}
