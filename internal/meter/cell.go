// Package meter holds the live input level shared between the recording
// tick and any number of animation readers.
package meter

import "sync"

// Cell is an observable level with a single writer and many readers.
// Readers always see the newest value; a slow reader never blocks Set.
type Cell struct {
	mu     sync.Mutex
	value  float64
	subs   map[int]chan float64
	nextID int
	closed bool
}

func NewCell(initial float64) *Cell {
	return &Cell{value: initial, subs: make(map[int]chan float64)}
}

// Load returns the current level.
func (c *Cell) Load() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Set publishes a new level to every subscriber.
func (c *Cell) Set(v float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.value = v
	for _, ch := range c.subs {
		offer(ch, v)
	}
}

// Subscribe returns a channel primed with the current level and a cancel
// func. The channel is closed on cancel or when the cell is closed.
func (c *Cell) Subscribe() (<-chan float64, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan float64, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextID
	c.nextID++
	c.subs[id] = ch
	ch <- c.value

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Subscribers returns the number of live subscriptions.
func (c *Cell) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close ends every subscription. Later Set calls are ignored.
func (c *Cell) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// offer replaces a stale buffered value with v. Only Set sends, under mu.
func offer(ch chan float64, v float64) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- v
}
