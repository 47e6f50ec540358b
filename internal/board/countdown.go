package board

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

var spinner = []rune{'|', '/', '-', '\\'}

// clearSequence moves the cursor home and erases the display.
const clearSequence = "\033[H\033[2J"

// Countdown shows the remaining wait before the next refresh with a
// rotating spinner, one update per step.
type Countdown struct {
	Steps int
	Step  time.Duration
	Out   io.Writer
}

// Run blocks for Steps*Step. It returns ctx.Err() if cancelled early; the
// status line is erased either way.
func (c Countdown) Run(ctx context.Context) error {
	if c.Steps <= 0 {
		return nil
	}

	ticker := time.NewTicker(c.Step)
	defer ticker.Stop()

	width := 0
	defer func() {
		fmt.Fprint(c.Out, "\r"+strings.Repeat(" ", width)+"\r")
	}()

	for i := 0; i < c.Steps; i++ {
		remaining := time.Duration(c.Steps-1-i) * c.Step
		line := fmt.Sprintf("Refreshing in %d seconds... %c", int(remaining.Seconds()), spinner[i%len(spinner)])
		width = max(width, len([]rune(line)))
		fmt.Fprint(c.Out, "\r"+line)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// ClearScreen erases the visible output area.
func ClearScreen(w io.Writer) error {
	_, err := io.WriteString(w, clearSequence)
	return err
}
