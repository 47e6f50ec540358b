// Package board runs the interactive transit board: stop selection, the
// refresh cycle, and the text views it prints.
package board

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"transitboard/internal/metrics"
	"transitboard/internal/store"
)

// Sentinel ends the session when entered at a stop prompt.
const Sentinel = -1

const (
	promptSelect    = "\nEnter the bus stop number (-1 to exit): "
	promptNotFound  = "Bus stop not found. Enter again: "
	promptNotNumber = "Not a stop number. Enter again: "
)

// ErrTooManyAttempts is returned when the configured re-prompt bound is hit.
var ErrTooManyAttempts = errors.New("too many invalid stop selections")

// Graph is the store surface the board needs.
type Graph interface {
	Source
	IsValidStop(id int) bool
}

// Stepper advances the simulation by one tick.
type Stepper interface {
	Step() int
}

type Options struct {
	CountdownSteps    int
	CountdownStep     time.Duration
	ClearScreen       bool
	MaxCycles         int
	MaxPromptAttempts int
}

type Board struct {
	graph     Graph
	stepper   Stepper
	presenter *Presenter
	prompter  *Prompter
	out       io.Writer
	opts      Options
	metrics   *metrics.Metrics
	logger    *slog.Logger

	sessionID string
}

func New(g Graph, stepper Stepper, in io.Reader, out io.Writer, opts Options, m *metrics.Metrics, logger *slog.Logger) *Board {
	sessionID := uuid.New().String()
	return &Board{
		graph:     g,
		stepper:   stepper,
		presenter: NewPresenter(g, m),
		prompter:  NewPrompter(in),
		out:       out,
		opts:      opts,
		metrics:   m,
		logger:    logger.With("component", "board", "session_id", sessionID),
		sessionID: sessionID,
	}
}

func (b *Board) SessionID() string {
	return b.sessionID
}

// Run prompts for a stop and refreshes its board until the sentinel is
// entered, input ends, ctx is cancelled or MaxCycles is reached.
func (b *Board) Run(ctx context.Context) error {
	defer b.prompter.Close()

	stopID, ok, err := b.selectStop(ctx)
	if err != nil {
		if errors.Is(err, ErrInputClosed) || ctx.Err() != nil {
			b.logger.Info("board stopped before a stop was selected", "reason", err)
			return nil
		}
		return err
	}
	if !ok {
		b.logger.Info("exit requested")
		return nil
	}

	return b.runCycles(ctx, stopID)
}

// RunStop skips the prompt and refreshes the given stop.
func (b *Board) RunStop(ctx context.Context, stopID int) error {
	defer b.prompter.Close()

	if !b.graph.IsValidStop(stopID) {
		return fmt.Errorf("stop %d: %w", stopID, store.ErrUnknownStop)
	}
	return b.runCycles(ctx, stopID)
}

// Once renders the stop board and the connection listing without ticking.
func (b *Board) Once(w io.Writer, stopID int) error {
	if !b.graph.IsValidStop(stopID) {
		return fmt.Errorf("stop %d: %w", stopID, store.ErrUnknownStop)
	}
	if err := b.presenter.RenderStopBoard(w, stopID); err != nil {
		return err
	}
	return b.presenter.RenderConnections(w)
}

// selectStop returns ok=false when the sentinel was entered.
func (b *Board) selectStop(ctx context.Context) (int, bool, error) {
	fmt.Fprint(b.out, promptSelect)

	attempts := 0
	for {
		id, err := b.prompter.ReadInt(ctx)
		switch {
		case err == nil && id == Sentinel:
			return 0, false, nil
		case err == nil && b.graph.IsValidStop(id):
			b.logger.Info("stop selected", "stop_id", id)
			return id, true, nil
		case errors.Is(err, ErrNotInteger):
			b.reject("not_integer", err)
			fmt.Fprint(b.out, promptNotNumber)
		case err != nil:
			return 0, false, err
		default:
			b.reject("unknown_stop", fmt.Errorf("stop %d: %w", id, store.ErrUnknownStop))
			fmt.Fprint(b.out, promptNotFound)
		}

		attempts++
		if b.opts.MaxPromptAttempts > 0 && attempts >= b.opts.MaxPromptAttempts {
			return 0, false, fmt.Errorf("%w (%d)", ErrTooManyAttempts, attempts)
		}
	}
}

func (b *Board) reject(reason string, err error) {
	if b.metrics != nil {
		b.metrics.RejectedInput.WithLabelValues(reason).Inc()
	}
	b.logger.Warn("rejected stop selection", "reason", reason, "error", err)
}

// runCycles ticks, renders and waits until stopped. The wait is skipped
// after the final cycle so the last board stays on screen.
func (b *Board) runCycles(ctx context.Context, stopID int) error {
	countdown := Countdown{
		Steps: b.opts.CountdownSteps,
		Step:  b.opts.CountdownStep,
		Out:   b.out,
	}

	cycles := 0
	defer func() {
		b.logger.Info("board stopped", "stop_id", stopID, "cycles", cycles)
	}()

	for ctx.Err() == nil {
		b.stepper.Step()
		if err := b.presenter.RenderStopBoard(b.out, stopID); err != nil {
			return fmt.Errorf("render board: %w", err)
		}
		if err := b.presenter.RenderConnections(b.out); err != nil {
			return fmt.Errorf("render connections: %w", err)
		}
		cycles++

		if b.opts.MaxCycles > 0 && cycles >= b.opts.MaxCycles {
			return nil
		}

		b.logger.Debug("waiting for next refresh", "cycle", cycles, "steps", countdown.Steps)
		if countdown.Run(ctx) != nil {
			// interrupted
			return nil
		}

		if b.opts.ClearScreen {
			if err := ClearScreen(b.out); err != nil {
				return fmt.Errorf("clear screen: %w", err)
			}
		}
	}
	return nil
}
