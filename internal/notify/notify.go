// Package notify delivers timer messages to the user.
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottoegg/internal/domain"
	"github.com/hammamikhairi/ottoegg/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Notifier = (*CLINotifier)(nil)
	_ domain.Notifier = (*Fanout)(nil)
	_ domain.Notifier = (*Recorder)(nil)
)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc prints one formatted line.
type PrintFunc func(format string, a ...any)

// CLINotifier writes notifications to a terminal with ANSI formatting.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
	color   bool
}

// CLIOption configures a CLINotifier.
type CLIOption func(*CLINotifier)

// WithPrinter routes output through fn instead of stdout.
func WithPrinter(fn PrintFunc) CLIOption {
	return func(n *CLINotifier) {
		n.printFn = fn
	}
}

// WithWriter prints lines to w.
func WithWriter(w io.Writer) CLIOption {
	return func(n *CLINotifier) {
		n.printFn = func(format string, a ...any) {
			fmt.Fprintf(w, format+"\n", a...)
		}
	}
}

// WithColor turns ANSI colouring on or off.
func WithColor(on bool) CLIOption {
	return func(n *CLINotifier) {
		n.color = on
	}
}

// NewCLINotifier creates a terminal notifier. Defaults to coloured output
// on stdout.
func NewCLINotifier(log *logger.Logger, opts ...CLIOption) *CLINotifier {
	n := &CLINotifier{log: log, color: true}
	for _, o := range opts {
		o(n)
	}
	if n.printFn == nil {
		WithWriter(os.Stdout)(n)
	}
	return n
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	n.print(cyan, message)
	return nil
}

// NotifyUrgent prints an urgent notification in bold red.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	n.print(red, message)
	return nil
}

func (n *CLINotifier) print(color, message string) {
	if !n.color {
		n.printFn("%s", Plain(message))
		return
	}
	n.printFn("%s%s%s%s", color, bold, message, reset)
}

// Fanout sends every message to all of its notifiers. A failing notifier
// does not stop the others; their errors are joined.
type Fanout struct {
	targets []domain.Notifier
}

// NewFanout combines notifiers. Nil entries are skipped.
func NewFanout(targets ...domain.Notifier) *Fanout {
	f := &Fanout{}
	for _, t := range targets {
		if t != nil {
			f.targets = append(f.targets, t)
		}
	}
	return f
}

// Notify forwards to every target.
func (f *Fanout) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NotifyUrgent forwards to every target.
func (f *Fanout) NotifyUrgent(ctx context.Context, message string) error {
	var errs []error
	for _, t := range f.targets {
		if err := t.NotifyUrgent(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Message is one recorded notification.
type Message struct {
	Text   string
	Urgent bool
}

// Recorder keeps the most recent notifications in memory. The TUI and the
// HTTP API read from it.
type Recorder struct {
	mu    sync.Mutex
	limit int
	msgs  []Message
}

// NewRecorder keeps at most limit messages.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 1
	}
	return &Recorder{limit: limit}
}

// Notify records a normal message.
func (r *Recorder) Notify(ctx context.Context, message string) error {
	r.add(Message{Text: Plain(message)})
	return nil
}

// NotifyUrgent records an urgent message.
func (r *Recorder) NotifyUrgent(ctx context.Context, message string) error {
	r.add(Message{Text: Plain(message), Urgent: true})
	return nil
}

func (r *Recorder) add(m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, m)
	if over := len(r.msgs) - r.limit; over > 0 {
		r.msgs = append(r.msgs[:0], r.msgs[over:]...)
	}
}

// Messages returns the recorded messages, oldest first.
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.msgs...)
}

// Last returns the newest message.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return Message{}, false
	}
	return r.msgs[len(r.msgs)-1], true
}

var (
	bracketPrefix = regexp.MustCompile(`^\[[A-Za-z]+\]\s*`)
	ansiCodes     = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// Plain strips ANSI codes and the "[Timer]" style prefix from a message.
func Plain(msg string) string {
	cleaned := ansiCodes.ReplaceAllString(msg, "")
	cleaned = bracketPrefix.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
