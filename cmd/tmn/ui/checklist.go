package ui

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Checklist redraws the whole step list in place on every snapshot.
type Checklist struct {
	out           io.Writer
	steps         []stepState
	renderedLines int
	frame         int

	mu   sync.Mutex
	stop chan struct{}
	once sync.Once
}

func NewChecklist(out io.Writer) *Checklist {
	return &Checklist{out: out, stop: make(chan struct{})}
}

func (c *Checklist) OnSnapshot(snap stepSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	first := c.steps == nil
	c.steps = snap.Steps
	if first {
		go c.spin()
	}
	c.redraw()
}

// Close stops the spinner and draws the final state.
func (c *Checklist) Close() {
	c.once.Do(func() {
		close(c.stop)
		c.mu.Lock()
		c.redraw()
		c.mu.Unlock()
	})
}

func (c *Checklist) spin() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.frame = (c.frame + 1) % len(spinFrames)
			c.redraw()
			c.mu.Unlock()
		}
	}
}

// redraw must be called with c.mu held.
func (c *Checklist) redraw() {
	if c.renderedLines > 0 {
		fmt.Fprintf(c.out, "\033[%dA", c.renderedLines)
	}
	for _, s := range c.steps {
		fmt.Fprintf(c.out, "\r%s\033[K\n", c.line(s))
	}
	for i := len(c.steps); i < c.renderedLines; i++ {
		fmt.Fprint(c.out, "\r\033[K\n")
	}
	c.renderedLines = len(c.steps)
}

func (c *Checklist) line(s stepState) string {
	var icon, label string
	switch s.Status {
	case stepRunning:
		icon, label = Accent(spinFrames[c.frame]), s.Title
	case stepDone:
		icon, label = Success("✓"), s.Title
	case stepFailed:
		icon, label = ErrorStyle.Render("✗"), ErrorStyle.Render(s.Title)
	case stepSkipped:
		icon, label = Muted("–"), Muted(s.Title)
	default:
		icon, label = Muted("●"), Muted(s.Title)
	}
	line := stepIndent(s) + icon + " " + label
	if s.Message != "" {
		line += " " + Muted(s.Message)
	}
	return line
}

func stepIndent(s stepState) string {
	if s.ParentID != "" {
		return "    "
	}
	return "  "
}
