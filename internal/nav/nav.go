// Package nav routes between named client sections, one visible at a time.
package nav

import "fmt"

// Home is always registered and is the fallback for unknown sections.
const Home = "home"

// Handler runs when its section becomes visible.
type Handler func() error

// Controller keeps the section registry and the current selection. Showing an
// unregistered section falls back to Home exactly once; the fallback itself
// never recurses.
type Controller struct {
	sections map[string]Handler
	current  string
}

// NewController registers Home with a no-op handler.
func NewController() *Controller {
	c := &Controller{sections: map[string]Handler{}, current: Home}
	c.sections[Home] = func() error { return nil }
	return c
}

// Register adds or replaces a section handler. Empty names are rejected.
func (c *Controller) Register(name string, h Handler) error {
	if name == "" {
		return fmt.Errorf("validation: empty section name")
	}
	if h == nil {
		return fmt.Errorf("validation: nil handler for %q", name)
	}
	c.sections[name] = h
	return nil
}

// Show makes the named section current and runs its handler. Unknown names
// fall back to Home.
func (c *Controller) Show(name string) error {
	h, ok := c.sections[name]
	if !ok {
		name, h = Home, c.sections[Home]
	}
	if err := h(); err != nil {
		return fmt.Errorf("show %s: %w", name, err)
	}
	c.current = name
	return nil
}

// Current returns the visible section.
func (c *Controller) Current() string { return c.current }
