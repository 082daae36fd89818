// Package notify defines the sinks through which the engines report
// user-facing messages and progress, so the engines run without a UI.
package notify

import "sync"

// Severity of a user-facing message
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Sink receives user-facing messages
type Sink interface {
	Report(message string, severity Severity)
}

// Progress receives progress updates of a long running operation
type Progress interface {
	SetVisible(visible bool)
	SetPercent(percent int)
}

// Nop discards everything
type Nop struct{}

func (Nop) Report(string, Severity) {}
func (Nop) SetVisible(bool)         {}
func (Nop) SetPercent(int)          {}

// SinkOrNop returns s, or a Nop when s is nil
func SinkOrNop(s Sink) Sink {
	if s == nil {
		return Nop{}
	}
	return s
}

// ProgressOrNop returns p, or a Nop when p is nil
func ProgressOrNop(p Progress) Progress {
	if p == nil {
		return Nop{}
	}
	return p
}

// Notice is a recorded message
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Recorder collects messages and progress, e.g. to return them in an API
// response. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
	percent []int
	visible bool
}

func (r *Recorder) Report(message string, severity Severity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Message: message, Severity: severity})
}

func (r *Recorder) SetVisible(visible bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = visible
}

func (r *Recorder) SetPercent(percent int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.percent = append(r.percent, max(0, min(percent, 100)))
}

// Notices returns a copy of the recorded messages
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Percents returns every progress value reported so far
func (r *Recorder) Percents() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.percent...)
}

// Visible reports whether progress is currently shown
func (r *Recorder) Visible() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visible
}
