// Package notify shows transient notifications. Each toast is delivered
// to subscribers right away and drops out of the active list after a
// fixed duration.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/hrmspro/hrms/pkg/logger"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
	KindWarning Kind = "warning"
)

// DefaultDuration is how long a toast stays active.
const DefaultDuration = 3500 * time.Millisecond

type Toast struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler func(Toast)

// Notifier is what the CRUD engine and commands report through.
type Notifier interface {
	Success(msg string) Toast
	Error(msg string) Toast
	Info(msg string) Toast
	Warning(msg string) Toast
}

type Center struct {
	duration time.Duration
	logger   *slog.Logger
	after    func(time.Duration, func()) *time.Timer

	mu       sync.RWMutex
	seq      int64
	active   []Toast
	timers   map[int64]*time.Timer
	handlers []Handler
}

func NewCenter(duration time.Duration, lg *slog.Logger) *Center {
	if duration <= 0 {
		duration = DefaultDuration
	}
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &Center{
		duration: duration,
		logger:   lg,
		after:    time.AfterFunc,
		timers:   make(map[int64]*time.Timer),
	}
}

func (c *Center) Subscribe(h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, h)
}

func (c *Center) Success(msg string) Toast { return c.Show(KindSuccess, msg) }
func (c *Center) Error(msg string) Toast   { return c.Show(KindError, msg) }
func (c *Center) Info(msg string) Toast    { return c.Show(KindInfo, msg) }
func (c *Center) Warning(msg string) Toast { return c.Show(KindWarning, msg) }

// Show appends a toast, calls every subscriber synchronously and
// schedules the dismissal.
func (c *Center) Show(kind Kind, msg string) Toast {
	c.mu.Lock()
	c.seq++
	t := Toast{ID: c.seq, Kind: kind, Message: msg, CreatedAt: time.Now()}
	c.active = append(c.active, t)
	c.timers[t.ID] = c.after(c.duration, func() { c.Dismiss(t.ID) })
	handlers := append([]Handler(nil), c.handlers...)
	c.mu.Unlock()

	c.logger.Debug("toast shown", "id", t.ID, "kind", kind, "message", msg)

	for _, h := range handlers {
		h(t)
	}
	return t
}

func (c *Center) Dismiss(id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if timer, ok := c.timers[id]; ok {
		timer.Stop()
		delete(c.timers, id)
	}
	for i, t := range c.active {
		if t.ID == id {
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

func (c *Center) Active() []Toast {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Toast(nil), c.active...)
}

// Close stops pending dismissals.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, timer := range c.timers {
		timer.Stop()
		delete(c.timers, id)
	}
}

var symbols = map[Kind]string{
	KindSuccess: "✔",
	KindError:   "✖",
	KindInfo:    "ℹ",
	KindWarning: "⚠",
}

// Printer writes each toast as one line, for terminals.
func Printer(w io.Writer) Handler {
	var mu sync.Mutex
	return func(t Toast) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "%s %s\n", symbols[t.Kind], t.Message)
	}
}
