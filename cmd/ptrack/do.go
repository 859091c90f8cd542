package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/ptrack/internal/app"
	"github.com/verte-zerg/ptrack/internal/dates"
	"github.com/verte-zerg/ptrack/internal/timer"
)

// tickInterval is one timer second.
var tickInterval = time.Second

func (c *cli) newDoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "do EXERCISE",
		Short: "Run one set of an exercise without the TUI",
		Long: "Starts or resumes today's set of EXERCISE (id or name) and runs the rep timers\n" +
			"back to back until the set completes. Ctrl-C stops the countdown and leaves the\n" +
			"set open for later.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer s.Close()
			return runSet(cmd.Context(), s.app, args[0], cmd.OutOrStdout())
		},
	}
}

// runSet drives one set to completion. The timer goroutine only touches
// the app while a countdown runs; this goroutine only touches it after a
// rep has been recorded and the timer has gone idle.
func runSet(ctx context.Context, a *app.App, ref string, out io.Writer) error {
	ex, ok := a.ResolveExercise(ref)
	if !ok {
		return fmt.Errorf("unknown exercise %q", ref)
	}
	p, _ := a.Progress(ex.ID)
	switch p.Action {
	case app.ActionDone:
		_, err := fmt.Fprintf(out, "%s: all %d sets completed today\n", ex.Name, ex.Sets)
		return err
	case app.ActionStart, app.ActionNextSet:
		if _, ok := a.StartSession(ex.ID); !ok {
			return fmt.Errorf("failed to start a set of %s", ex.Name)
		}
		p, _ = a.Progress(ex.ID)
	}
	if _, err := fmt.Fprintf(out, "%s: set %d/%d, %d reps of %s\n",
		ex.Name, p.CompletedSets+1, ex.Sets, ex.Reps, dates.FormatDuration(ex.Duration)); err != nil {
		return err
	}

	repFinished := make(chan struct{}, 1)
	a.Timer().AddListener(func(prev, next timer.State) {
		if prev != timer.StateExpired || next != timer.StateIdle {
			return
		}
		select {
		case repFinished <- struct{}{}:
		default:
		}
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		timer.Drive(ctx, a.Timer(), tickInterval)
	}()
	defer wg.Wait()
	defer stop()

	if !a.ToggleRepTimer(ex.ID) {
		return fmt.Errorf("no open set for %s", ex.Name)
	}

	display := time.NewTicker(tickInterval)
	defer display.Stop()
	rep := p.CompletedReps() + 1
	for {
		select {
		case <-ctx.Done():
			a.Timer().Pause()
			_, err := fmt.Fprintf(out, "\nStopped at rep %d/%d; the set stays open.\n", rep, ex.Reps)
			return err
		case <-repFinished:
			p, _ = a.Progress(ex.ID)
			if !p.HasOpen {
				_, err := fmt.Fprintf(out, "\rSet complete! %d/%d sets today\n", p.CompletedSets, ex.Sets)
				return err
			}
			if _, err := fmt.Fprintf(out, "\rRep %d/%d done          \n", p.CompletedReps(), ex.Reps); err != nil {
				return err
			}
			rep = p.CompletedReps() + 1
			if !a.ToggleRepTimer(ex.ID) {
				return fmt.Errorf("set of %s closed unexpectedly", ex.Name)
			}
		case <-display.C:
			snap := a.Timer().Snapshot()
			if !snap.IsRunning() {
				continue
			}
			if _, err := fmt.Fprintf(out, "\rRep %d/%d  %s", rep, ex.Reps, dates.FormatDuration(snap.Remaining)); err != nil {
				return err
			}
		}
	}
}
