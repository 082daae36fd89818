package narration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// DefaultWordsPerMinute is espeak-ng's normal speed
const DefaultWordsPerMinute = 175

// ESpeak speaks through the espeak-ng command. It plays one utterance at a
// time and cannot pause.
type ESpeak struct {
	binary string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewESpeak locates binary (default "espeak-ng") on the PATH
func NewESpeak(binary string) (*ESpeak, error) {
	if binary == "" {
		binary = "espeak-ng"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("speech backend not available: %w", err)
	}
	return &ESpeak{binary: path}, nil
}

// Args returns the command line arguments used for u
func (e *ESpeak) Args(u Utterance) []string {
	rate := u.Rate
	if rate <= 0 {
		rate = 1
	}
	args := []string{"-s", strconv.Itoa(int(rate * DefaultWordsPerMinute))}
	if u.Voice != "" {
		args = append(args, "-v", u.Voice)
	}
	return append(args, "--stdin")
}

func (e *ESpeak) Start(ctx context.Context, u Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd != nil {
		return errors.New("espeak: already speaking")
	}
	cmd := exec.CommandContext(ctx, e.binary, e.Args(u)...)
	cmd.Stdin = strings.NewReader(u.Text)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("espeak: %w", err)
	}
	e.cmd = cmd
	return nil
}

// Wait blocks until the current utterance ends
func (e *ESpeak) Wait() error {
	e.mu.Lock()
	cmd := e.cmd
	e.mu.Unlock()
	if cmd == nil {
		return nil
	}

	err := cmd.Wait()

	e.mu.Lock()
	if e.cmd == cmd {
		e.cmd = nil
	}
	e.mu.Unlock()
	return err
}

func (e *ESpeak) Pause() error  { return fmt.Errorf("espeak pause: %w", errors.ErrUnsupported) }
func (e *ESpeak) Resume() error { return fmt.Errorf("espeak resume: %w", errors.ErrUnsupported) }

// Stop kills the current utterance and reaps the process. It must not run
// concurrently with Wait.
func (e *ESpeak) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	cmd := e.cmd
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	e.cmd = nil
	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("espeak stop: %w", err)
	}
	_ = cmd.Wait()
	return nil
}
