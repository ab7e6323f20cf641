package timeutil

import (
	"testing"
	"time"
)

func TestRealClock(t *testing.T) {
	var c Clock = RealClock{}
	start := c.Now()
	c.Sleep(time.Millisecond)
	if c.Since(start) < time.Millisecond {
		t.Errorf("Since() = %v, want >= 1ms", c.Since(start))
	}
}

func TestMockClock(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	c := NewMockClock(base)

	if !c.Now().Equal(base) {
		t.Fatalf("Now() = %v, want %v", c.Now(), base)
	}

	c.Advance(2 * time.Second)
	if got := c.Since(base); got != 2*time.Second {
		t.Errorf("Since() = %v, want 2s", got)
	}

	c.Sleep(5 * time.Millisecond)
	c.Sleep(5 * time.Millisecond)
	if got := c.Since(base); got != 2*time.Second+10*time.Millisecond {
		t.Errorf("Since() after sleeps = %v", got)
	}
	if n := len(c.Sleeps()); n != 2 {
		t.Errorf("Sleeps() len = %d, want 2", n)
	}

	later := base.Add(time.Hour)
	c.Set(later)
	if !c.Now().Equal(later) {
		t.Errorf("Set() did not take effect")
	}
}

func TestStamp(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 5, 9, 0, time.Local)
	s := Stamp(ts)
	if s != "20260301_140509" {
		t.Fatalf("Stamp() = %q", s)
	}
	back, err := ParseStamp(s)
	if err != nil {
		t.Fatalf("ParseStamp(%q): %v", s, err)
	}
	if !back.Equal(ts) {
		t.Errorf("ParseStamp() = %v, want %v", back, ts)
	}
	if _, err := ParseStamp("frame_000001"); err == nil {
		t.Error("ParseStamp accepted a non-stamp name")
	}
}
