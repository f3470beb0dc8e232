// Package audio plays the short cues that mark countdown numbers, step
// boundaries and the end of a run.
package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
)

// Cue names a sound played during a run.
type Cue string

const (
	CueCountdown   Cue = "countdown"
	CueStart       Cue = "start"
	CuePreWarning  Cue = "pre-warning"
	CueStepAdvance Cue = "step-advance"
	CueCompletion  Cue = "completion"
)

// Cues lists every cue in playback order.
var Cues = []Cue{CueCountdown, CueStart, CuePreWarning, CueStepAdvance, CueCompletion}

// ErrUnknownMode is returned by NewPlayer for an unrecognised mode.
var ErrUnknownMode = errors.New("unknown audio mode")

// Player plays a single cue. Play may block until the sound has finished.
type Player interface {
	Play(ctx context.Context, cue Cue) error
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(context.Context, Cue) error { return nil }

// Bell rings the terminal bell. Completion rings twice.
type Bell struct {
	mu sync.Mutex
	W  io.Writer
}

func (b *Bell) Play(_ context.Context, cue Cue) error {
	seq := "\a"
	if cue == CueCompletion {
		seq = "\a\a"
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.W, seq)
	return err
}

// Command runs an external player such as paplay or afplay with the sound
// file configured for the cue appended to Argv. Cues without a file are
// silently skipped.
type Command struct {
	Argv  []string
	Files map[Cue]string
}

func (c *Command) Play(ctx context.Context, cue Cue) error {
	file, ok := c.Files[cue]
	if !ok || file == "" {
		return nil
	}
	if len(c.Argv) == 0 {
		return errors.New("audio command is empty")
	}
	args := append(append([]string{}, c.Argv[1:]...), file)
	cmd := exec.CommandContext(ctx, c.Argv[0], args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s %s: %w: %s", c.Argv[0], cue, err, msg)
		}
		return fmt.Errorf("%s %s: %w", c.Argv[0], cue, err)
	}
	return nil
}

// Mode selects a Player implementation.
type Mode string

const (
	ModeBell    Mode = "bell"
	ModeCommand Mode = "command"
	ModeOff     Mode = "off"
)

// NewPlayer builds the Player for mode. An empty mode means bell.
func NewPlayer(mode Mode, w io.Writer, argv []string, files map[string]string) (Player, error) {
	switch mode {
	case "", ModeBell:
		return &Bell{W: w}, nil
	case ModeOff:
		return Nop{}, nil
	case ModeCommand:
		if len(argv) == 0 {
			return nil, errors.New("audio mode command needs audio.command")
		}
		byCue := make(map[Cue]string, len(files))
		for name, path := range files {
			byCue[Cue(name)] = path
		}
		return &Command{Argv: argv, Files: byCue}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}
