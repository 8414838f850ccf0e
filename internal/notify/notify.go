// Package notify carries user-visible, non-fatal messages (the toasts of the
// dashboards) from components to whichever front end is rendering them.
package notify

import (
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Message struct {
	Level Level     `json:"level"`
	Text  string    `json:"text"`
	At    time.Time `json:"at"`
}

type Notifier interface {
	Success(text string)
	Error(text string)
}

// Log writes notifications to a structured logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Success(text string) { l.logger().Info(text, "notification", LevelSuccess) }
func (l Log) Error(text string)   { l.logger().Warn(text, "notification", LevelError) }

func (l Log) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

// Recorder keeps the most recent notifications in memory so a front end can
// drain them. The zero value is ready to use.
type Recorder struct {
	mu   sync.Mutex
	max  int
	msgs []Message
	next Notifier
}

// NewRecorder keeps at most max messages and forwards each one to next when
// it is non-nil.
func NewRecorder(max int, next Notifier) *Recorder {
	return &Recorder{max: max, next: next}
}

func (r *Recorder) Success(text string) { r.add(LevelSuccess, text) }
func (r *Recorder) Error(text string)   { r.add(LevelError, text) }

func (r *Recorder) add(level Level, text string) {
	r.mu.Lock()
	r.msgs = append(r.msgs, Message{Level: level, Text: text, At: time.Now()})
	if r.max > 0 && len(r.msgs) > r.max {
		r.msgs = r.msgs[len(r.msgs)-r.max:]
	}
	r.mu.Unlock()
	if r.next == nil {
		return
	}
	if level == LevelSuccess {
		r.next.Success(text)
	} else {
		r.next.Error(text)
	}
}

// Drain returns and forgets everything recorded so far.
func (r *Recorder) Drain() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.msgs
	r.msgs = nil
	return out
}

// Last returns the most recent message, if any.
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.msgs) == 0 {
		return Message{}, false
	}
	return r.msgs[len(r.msgs)-1], true
}
