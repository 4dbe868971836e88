package engine

import "sync"

// Context is the shared key/value store passed through a whole run. The
// engine treats it as opaque storage: callers and work functions read and
// write arbitrary keys, and values set by one task are visible to every
// task that runs after it.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContext returns an empty shared run context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores a value under a key, replacing any previous value.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get returns the value stored under key and whether it was present.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// GetString returns the value under key when it is a string.
func (c *Context) GetString(key string) (string, bool) {
	v, ok := c.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Keys returns a snapshot of the stored keys.
func (c *Context) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	return keys
}
