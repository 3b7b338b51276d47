package busy

import (
	"sync"
	"testing"
)

func TestCounter_BalancedConcurrent(t *testing.T) {
	t.Parallel()
	c := New()
	const n = 64

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		c.Show()
	}
	for i := 0; i < n-1; i++ {
		wg.Add(1)
		go func() { defer wg.Done(); c.Hide() }()
	}
	wg.Wait()
	if !c.Busy() || c.Count() != 1 {
		t.Fatalf("n starts and n-1 completions must stay busy, count=%d", c.Count())
	}

	c.Hide()
	if c.Busy() {
		t.Fatalf("must be idle after last completion")
	}
}

func TestCounter_InterleavedConcurrent(t *testing.T) {
	t.Parallel()
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Show()
			c.Hide()
		}()
	}
	wg.Wait()
	if c.Busy() {
		t.Fatalf("count=%d, want idle", c.Count())
	}
}

func TestCounter_FloorAtZero(t *testing.T) {
	t.Parallel()
	c := New()
	c.Hide()
	c.Hide()
	if c.Count() != 0 {
		t.Fatalf("count went negative: %d", c.Count())
	}
	c.Show()
	if !c.Busy() {
		t.Fatalf("one show after stray hides must be busy")
	}
}

func TestCounter_OnChangeFlipsOnly(t *testing.T) {
	t.Parallel()
	c := New()
	var flips []bool
	c.OnChange(func(b bool) { flips = append(flips, b) })

	c.Show()
	c.Show()
	c.Hide()
	c.Hide()
	c.Hide()
	if len(flips) != 2 || !flips[0] || flips[1] {
		t.Fatalf("unexpected flips: %v", flips)
	}
}
