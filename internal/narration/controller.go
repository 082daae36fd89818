// Package narration reads text aloud through a pluggable speech backend
// and tracks the playback state shown to the user.
package narration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/zombar/easyread/internal/notify"
)

var (
	ErrEmptyText   = errors.New("please enter some text to read aloud")
	ErrTextTooLong = errors.New("text too long for speech synthesis")
)

// MaxTextLength is the longest text, in characters, that is read aloud
const MaxTextLength = 5000

// State is the playback state
type State string

const (
	StateIdle     State = "idle"
	StateSpeaking State = "speaking"
	StatePaused   State = "paused"
)

// Utterance is one piece of text to speak
type Utterance struct {
	Text  string
	Rate  float64 // multiplier of the backend's normal speed
	Voice string  // backend specific, empty for the default voice
}

// Speaker is a speech backend
type Speaker interface {
	Start(ctx context.Context, u Utterance) error
	Pause() error
	Resume() error
	Stop() error
}

// Controller drives a Speaker and owns the playback state. It is safe for
// concurrent use.
type Controller struct {
	mu      sync.Mutex
	speaker Speaker
	state   State
	current *Utterance
	sink    notify.Sink
	logger  *slog.Logger
}

// NewController creates an idle controller. sink may be nil.
func NewController(speaker Speaker, sink notify.Sink, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		speaker: speaker,
		state:   StateIdle,
		sink:    notify.SinkOrNop(sink),
		logger:  logger,
	}
}

// State returns the current playback state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Play speaks text. When paused it resumes the current utterance instead;
// otherwise any current utterance is stopped first.
func (c *Controller) Play(ctx context.Context, text string, rate float64, voice string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		c.sink.Report("Please enter some text to read aloud", notify.SeverityWarning)
		return ErrEmptyText
	}
	if utf8.RuneCountInString(text) > MaxTextLength {
		c.sink.Report("Text too long for speech synthesis", notify.SeverityWarning)
		return ErrTextTooLong
	}
	if rate <= 0 {
		rate = 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StatePaused && c.current != nil {
		if err := c.speaker.Resume(); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
		c.state = StateSpeaking
		c.sink.Report("Resumed speaking", notify.SeverityInfo)
		return nil
	}

	if err := c.stopLocked(); err != nil {
		c.logger.Warn("failed to stop current utterance", "error", err)
	}

	u := Utterance{Text: text, Rate: rate, Voice: voice}
	if err := c.speaker.Start(ctx, u); err != nil {
		c.state = StateIdle
		c.current = nil
		c.sink.Report("Speech synthesis failed", notify.SeverityError)
		return fmt.Errorf("start speech: %w", err)
	}

	c.current = &u
	c.state = StateSpeaking
	c.logger.Debug("speech started", "chars", utf8.RuneCountInString(text), "rate", rate, "voice", voice)
	c.sink.Report("Started speaking", notify.SeverityInfo)
	return nil
}

// Pause pauses a running utterance. It does nothing unless speaking.
func (c *Controller) Pause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateSpeaking {
		return nil
	}
	if err := c.speaker.Pause(); err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	c.state = StatePaused
	c.sink.Report("Speech paused", notify.SeverityInfo)
	return nil
}

// Stop cancels the current utterance. It does nothing when idle.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stopLocked()
}

func (c *Controller) stopLocked() error {
	if c.state == StateIdle {
		return nil
	}
	err := c.speaker.Stop()
	c.state = StateIdle
	c.current = nil
	return err
}

// Finished is called by the owner of the speaker when the utterance ends,
// with the backend error if it failed. It is ignored after Stop.
func (c *Controller) Finished(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return
	}
	c.state = StateIdle
	c.current = nil

	if err != nil {
		c.logger.Error("speech error", "error", err)
		c.sink.Report("Speech synthesis error", notify.SeverityError)
		return
	}
	c.sink.Report("Finished speaking", notify.SeveritySuccess)
}
