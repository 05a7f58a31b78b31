package nav

import (
	"errors"
	"testing"
)

func TestShowRunsHandlerAndTracksCurrent(t *testing.T) {
	c := NewController()
	var shown int
	if err := c.Register("productos", func() error { shown++; return nil }); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := c.Show("productos"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if shown != 1 || c.Current() != "productos" {
		t.Fatalf("shown=%d current=%q", shown, c.Current())
	}
}

func TestUnknownSectionFallsBackToHome(t *testing.T) {
	c := NewController()
	if err := c.Show("no-such-section"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if c.Current() != Home {
		t.Fatalf("current = %q, want %q", c.Current(), Home)
	}
}

func TestHandlerErrorKeepsPreviousSection(t *testing.T) {
	c := NewController()
	boom := errors.New("fetch failed")
	if err := c.Register("carrito", func() error { return boom }); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := c.Show("carrito"); !errors.Is(err, boom) {
		t.Fatalf("expected handler error, got %v", err)
	}
	if c.Current() != Home {
		t.Fatalf("current moved to failing section: %q", c.Current())
	}
}

func TestRegisterValidation(t *testing.T) {
	c := NewController()
	if err := c.Register("", func() error { return nil }); err == nil {
		t.Fatalf("empty name accepted")
	}
	if err := c.Register("x", nil); err == nil {
		t.Fatalf("nil handler accepted")
	}
}

func TestHomeHandlerReplaceable(t *testing.T) {
	c := NewController()
	var homeShown int
	if err := c.Register(Home, func() error { homeShown++; return nil }); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := c.Show("missing"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if homeShown != 1 {
		t.Fatalf("fallback did not run home handler")
	}
}
