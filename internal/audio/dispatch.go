package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds a single cue.
const DefaultTimeout = 5 * time.Second

// Dispatcher plays cues in the background so callers never wait on audio.
// Failures and panics are logged and otherwise ignored.
type Dispatcher struct {
	player  Player
	timeout time.Duration
	log     *slog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher wraps player. A timeout of zero uses DefaultTimeout; a nil
// logger discards.
func NewDispatcher(player Player, timeout time.Duration, log *slog.Logger) *Dispatcher {
	if player == nil {
		player = Nop{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Dispatcher{player: player, timeout: timeout, log: log}
}

// Dispatch starts playing cue and returns immediately.
func (d *Dispatcher) Dispatch(cue Cue) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.play(cue); err != nil {
			d.log.Warn("cue playback failed", "cue", string(cue), "error", err)
		}
	}()
}

func (d *Dispatcher) play(cue Cue) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	return d.player.Play(ctx, cue)
}

// Wait blocks until every dispatched cue has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
