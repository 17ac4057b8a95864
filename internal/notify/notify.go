// Package notify carries human-readable progress and error reports out of
// the sentiment and prediction code without touching their return values.
package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notifier receives advisory reports. Implementations must not fail.
type Notifier interface {
	Info(ctx context.Context, msg string)
	Warning(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Log writes every report as a plain log line. It is the sink used when no
// interactive surface is attached.
type Log struct {
	logger *log.Logger
}

func NewLog(w io.Writer, prefix string) *Log {
	if w == nil {
		w = os.Stderr
	}
	return &Log{logger: log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})}
}

// NewLogWithLogger wraps an existing logger.
func NewLogWithLogger(l *log.Logger) *Log {
	if l == nil {
		l = log.Default()
	}
	return &Log{logger: l}
}

func (l *Log) Info(_ context.Context, msg string)    { l.logger.Info(msg) }
func (l *Log) Warning(_ context.Context, msg string) { l.logger.Warn(msg) }
func (l *Log) Error(_ context.Context, msg string)   { l.logger.Error(msg) }

var (
	defaultOnce sync.Once
	defaultLog  *Log
)

// Default returns the process-wide log sink.
func Default() Notifier {
	defaultOnce.Do(func() {
		defaultLog = NewLogWithLogger(log.Default())
	})
	return defaultLog
}

// OrDefault returns n, or the default log sink when n is nil.
func OrDefault(n Notifier) Notifier {
	if n == nil {
		return Default()
	}
	return n
}

// Note is one recorded report.
type Note struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

func (n Note) String() string {
	return fmt.Sprintf("%s: %s", n.Level, n.Message)
}

// Recorder collects reports in memory so they can be shown next to a result.
type Recorder struct {
	mu    sync.Mutex
	notes []Note
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Info(_ context.Context, msg string)    { r.add(LevelInfo, msg) }
func (r *Recorder) Warning(_ context.Context, msg string) { r.add(LevelWarning, msg) }
func (r *Recorder) Error(_ context.Context, msg string)   { r.add(LevelError, msg) }

func (r *Recorder) add(level Level, msg string) {
	r.mu.Lock()
	r.notes = append(r.notes, Note{Level: level, Message: msg})
	r.mu.Unlock()
}

// Notes returns a copy of everything recorded so far.
func (r *Recorder) Notes() []Note {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Note(nil), r.notes...)
}

// Messages renders the recorded notes as "level: message" strings.
func (r *Recorder) Messages() []string {
	notes := r.Notes()
	if len(notes) == 0 {
		return nil
	}
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.String())
	}
	return out
}

type multi []Notifier

// Multi fans every report out to all non-nil notifiers.
func Multi(notifiers ...Notifier) Notifier {
	out := make(multi, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (m multi) Info(ctx context.Context, msg string) {
	for _, n := range m {
		n.Info(ctx, msg)
	}
}

func (m multi) Warning(ctx context.Context, msg string) {
	for _, n := range m {
		n.Warning(ctx, msg)
	}
}

func (m multi) Error(ctx context.Context, msg string) {
	for _, n := range m {
		n.Error(ctx, msg)
	}
}

type recorderKey struct{}

// WithRecorder attaches a request-scoped recorder to ctx. Notifiers built
// with Scoped copy every report into it.
func WithRecorder(ctx context.Context, r *Recorder) context.Context {
	return context.WithValue(ctx, recorderKey{}, r)
}

// RecorderFrom returns the recorder attached to ctx, or nil.
func RecorderFrom(ctx context.Context) *Recorder {
	if ctx == nil {
		return nil
	}
	r, _ := ctx.Value(recorderKey{}).(*Recorder)
	return r
}

type scoped struct {
	next Notifier
}

// Scoped forwards to next (the default log sink when nil) and to the
// recorder found in the call's context, if any.
func Scoped(next Notifier) Notifier {
	return scoped{next: OrDefault(next)}
}

func (s scoped) Info(ctx context.Context, msg string) {
	s.next.Info(ctx, msg)
	if r := RecorderFrom(ctx); r != nil {
		r.Info(ctx, msg)
	}
}

func (s scoped) Warning(ctx context.Context, msg string) {
	s.next.Warning(ctx, msg)
	if r := RecorderFrom(ctx); r != nil {
		r.Warning(ctx, msg)
	}
}

func (s scoped) Error(ctx context.Context, msg string) {
	s.next.Error(ctx, msg)
	if r := RecorderFrom(ctx); r != nil {
		r.Error(ctx, msg)
	}
}
