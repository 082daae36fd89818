package narration

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zombar/easyread/internal/notify"
)

type fakeSpeaker struct {
	calls     []string
	started   []Utterance
	startErr  error
	pauseErr  error
	resumeErr error
}

func (f *fakeSpeaker) Start(_ context.Context, u Utterance) error {
	f.calls = append(f.calls, "start")
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, u)
	return nil
}

func (f *fakeSpeaker) Pause() error {
	f.calls = append(f.calls, "pause")
	return f.pauseErr
}

func (f *fakeSpeaker) Resume() error {
	f.calls = append(f.calls, "resume")
	return f.resumeErr
}

func (f *fakeSpeaker) Stop() error {
	f.calls = append(f.calls, "stop")
	return nil
}

func newTestController() (*Controller, *fakeSpeaker, *notify.Recorder) {
	speaker := &fakeSpeaker{}
	rec := &notify.Recorder{}
	return NewController(speaker, rec, nil), speaker, rec
}

func lastNotice(t *testing.T, rec *notify.Recorder) notify.Notice {
	t.Helper()
	notices := rec.Notices()
	require.NotEmpty(t, notices)
	return notices[len(notices)-1]
}

func TestPlayRejections(t *testing.T) {
	c, speaker, rec := newTestController()

	assert.ErrorIs(t, c.Play(context.Background(), "  ", 1, ""), ErrEmptyText)
	assert.ErrorIs(t, c.Play(context.Background(), strings.Repeat("x", MaxTextLength+1), 1, ""), ErrTextTooLong)

	assert.Empty(t, speaker.calls)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, notify.SeverityWarning, lastNotice(t, rec).Severity)
}

func TestPlayPauseResumeStop(t *testing.T) {
	c, speaker, rec := newTestController()
	ctx := context.Background()

	require.NoError(t, c.Play(ctx, " Hello there ", 0, "en-gb"))
	assert.Equal(t, StateSpeaking, c.State())
	assert.Equal(t, []Utterance{{Text: "Hello there", Rate: 1, Voice: "en-gb"}}, speaker.started)
	assert.Equal(t, "Started speaking", lastNotice(t, rec).Message)

	require.NoError(t, c.Pause())
	assert.Equal(t, StatePaused, c.State())

	// Play while paused resumes rather than restarting
	require.NoError(t, c.Play(ctx, "Something else", 1.5, ""))
	assert.Equal(t, StateSpeaking, c.State())
	assert.Len(t, speaker.started, 1)
	assert.Equal(t, "Resumed speaking", lastNotice(t, rec).Message)

	require.NoError(t, c.Stop())
	assert.Equal(t, StateIdle, c.State())

	assert.Equal(t, []string{"start", "pause", "resume", "stop"}, speaker.calls)
}

func TestPlayWhileSpeakingRestarts(t *testing.T) {
	c, speaker, _ := newTestController()
	ctx := context.Background()

	require.NoError(t, c.Play(ctx, "First", 1, ""))
	require.NoError(t, c.Play(ctx, "Second", 2, ""))

	assert.Equal(t, []string{"start", "stop", "start"}, speaker.calls)
	require.Len(t, speaker.started, 2)
	assert.Equal(t, "Second", speaker.started[1].Text)
	assert.Equal(t, StateSpeaking, c.State())
}

func TestPauseAndStopWhenIdleDoNothing(t *testing.T) {
	c, speaker, rec := newTestController()

	assert.NoError(t, c.Pause())
	assert.NoError(t, c.Stop())
	assert.Empty(t, speaker.calls)
	assert.Empty(t, rec.Notices())
}

func TestPauseUnsupported(t *testing.T) {
	c, speaker, _ := newTestController()
	speaker.pauseErr = errors.ErrUnsupported

	require.NoError(t, c.Play(context.Background(), "Hello", 1, ""))
	err := c.Pause()

	assert.ErrorIs(t, err, errors.ErrUnsupported)
	assert.Equal(t, StateSpeaking, c.State(), "state is unchanged when the backend cannot pause")
}

func TestPlayStartFailure(t *testing.T) {
	c, speaker, rec := newTestController()
	speaker.startErr = errors.New("no audio device")

	err := c.Play(context.Background(), "Hello", 1, "")

	assert.ErrorContains(t, err, "no audio device")
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, notify.Notice{Message: "Speech synthesis failed", Severity: notify.SeverityError}, lastNotice(t, rec))
}

func TestFinished(t *testing.T) {
	c, _, rec := newTestController()

	require.NoError(t, c.Play(context.Background(), "Hello", 1, ""))
	c.Finished(nil)
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, notify.Notice{Message: "Finished speaking", Severity: notify.SeveritySuccess}, lastNotice(t, rec))

	require.NoError(t, c.Play(context.Background(), "Hello", 1, ""))
	c.Finished(errors.New("device lost"))
	assert.Equal(t, StateIdle, c.State())
	assert.Equal(t, notify.SeverityError, lastNotice(t, rec).Severity)

	// A finish after Stop is ignored
	count := len(rec.Notices())
	c.Finished(nil)
	assert.Len(t, rec.Notices(), count)
}

func TestESpeakArgs(t *testing.T) {
	e := &ESpeak{binary: "espeak-ng"}

	assert.Equal(t, []string{"-s", "175", "--stdin"}, e.Args(Utterance{Text: "x"}))
	assert.Equal(t, []string{"-s", "262", "-v", "fr", "--stdin"}, e.Args(Utterance{Text: "x", Rate: 1.5, Voice: "fr"}))
	assert.ErrorIs(t, e.Pause(), errors.ErrUnsupported)
	assert.ErrorIs(t, e.Resume(), errors.ErrUnsupported)
}

func TestNewESpeakMissingBinary(t *testing.T) {
	_, err := NewESpeak("definitely-not-an-espeak-binary")
	assert.Error(t, err)
}

func TestESpeakRunsBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script backend")
	}
	dir := t.TempDir()
	script := filepath.Join(dir, "fake-espeak")
	out := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(script, []byte("#!/bin/sh\necho \"$@\" > "+out+".args\ncat > "+out+".stdin\n"), 0o755))

	e, err := NewESpeak(script)
	require.NoError(t, err)

	require.NoError(t, e.Start(context.Background(), Utterance{Text: "Read me", Rate: 2}))
	require.NoError(t, e.Wait())

	args, err := os.ReadFile(out + ".args")
	require.NoError(t, err)
	assert.Equal(t, "-s 350 --stdin\n", string(args))

	stdin, err := os.ReadFile(out + ".stdin")
	require.NoError(t, err)
	assert.Equal(t, "Read me", string(stdin))

	assert.NoError(t, e.Stop(), "stop after the utterance ended is a no-op")
}
