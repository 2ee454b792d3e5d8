// Package progress reports the advance of a pass over a protocol file on a terminal.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

// DefaultEvery is the number of increments between two redraws.
const DefaultEvery = 500

// Counter shows a running count of processed items where the total is not
// known upfront. Every call is a no-op when the counter is disabled.
type Counter struct {
	writer  io.Writer
	op      string
	every   int64
	current atomic.Int64
	lastLen atomic.Int64
	enabled atomic.Bool
}

// NewCounter creates a counter writing to stderr.
func NewCounter(op string, enabled bool) *Counter {
	c := &Counter{writer: os.Stderr, op: op, every: DefaultEvery}
	c.enabled.Store(enabled)
	return c
}

// SetOutput redirects the counter.
func (c *Counter) SetOutput(w io.Writer) { c.writer = w }

// SetEvery changes how many increments pass between redraws. Values below 1
// redraw on every increment.
func (c *Counter) SetEvery(n int) {
	if n < 1 {
		n = 1
	}
	c.every = int64(n)
}

// Increment advances the counter by one.
func (c *Counter) Increment() {
	n := c.current.Add(1)
	if !c.enabled.Load() || n%c.every != 0 {
		return
	}
	c.render(fmt.Sprintf("%s... %d events", c.op, n))
}

// Current returns the number of increments so far.
func (c *Counter) Current() int {
	return int(c.current.Load())
}

// Done clears the progress line and prints the final message. An empty
// message prints a summary with the final count.
func (c *Counter) Done(message string) {
	if !c.enabled.Load() {
		return
	}
	if message == "" {
		message = fmt.Sprintf("%s complete (%d events)", c.op, c.current.Load())
	}
	c.render(message)
	fmt.Fprintln(c.writer)
}

// Enabled reports whether the counter draws anything.
func (c *Counter) Enabled() bool {
	return c.enabled.Load()
}

func (c *Counter) render(line string) {
	clear := "\r"
	if n := c.lastLen.Load(); n > 0 {
		clear = "\r" + strings.Repeat(" ", int(n)) + "\r"
	}
	fmt.Fprint(c.writer, clear+line)
	c.lastLen.Store(int64(len(line)))
}
