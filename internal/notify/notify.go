// Package notify delivers the short success/failure notices shown after a
// user action.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/fatih/color"
)

const fallbackMessage = "An unexpected error occurred"

type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, err error)
}

// Message is the text shown for err: a message the error chose to expose
// (timeouts, backend errors, validation) or a generic fallback.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallbackMessage
}

// Console prints colored notices, green for success and red for failure.
type Console struct {
	out io.Writer
	mu  sync.Mutex
}

func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

func (c *Console) Success(_ context.Context, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, color.GreenString("✔ %s", msg))
}

func (c *Console) Error(_ context.Context, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, color.RedString("✘ %s", Message(err)))
}

// Log writes notices to a structured logger; the API server uses it so a
// failed request leaves a trace next to its JSON error.
type Log struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Success(ctx context.Context, msg string) {
	l.logger.InfoContext(ctx, msg)
}

func (l *Log) Error(ctx context.Context, err error) {
	l.logger.WarnContext(ctx, Message(err), slog.String("error", err.Error()))
}

// Recorder keeps every notice; for tests.
type Recorder struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (r *Recorder) Success(_ context.Context, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, msg)
}

func (r *Recorder) Error(_ context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, Message(err))
}

// Discard drops everything.
type Discard struct{}

func (Discard) Success(context.Context, string) {}
func (Discard) Error(context.Context, error)    {}
