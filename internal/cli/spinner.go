package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// spinnerFrames cycle while a model or cloud call is in flight.
var spinnerFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const spinnerInterval = 80 * time.Millisecond

// Spinner animates a throbber on stderr until stopped or until the
// surrounding context ends. Rendering goes through the shared style
// palette so spinner output matches the rest of the CLI.
type Spinner struct {
	message string
	out     io.Writer
	parent  context.Context
	inner   context.Context
	cancel  context.CancelFunc
	halted  chan struct{}
	stop    sync.Once
}

func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext ties the spinner's lifetime to ctx, so an
// interrupted command clears its own line.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	if ctx == nil {
		ctx = context.Background()
	}
	inner, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		out:     os.Stderr,
		parent:  ctx,
		inner:   inner,
		cancel:  cancel,
		halted:  make(chan struct{}),
	}
}

// Start launches the animation goroutine.
func (s *Spinner) Start() {
	label := StyleDim.Render(s.message)
	go func() {
		defer close(s.halted)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()

		for frame := 0; ; frame++ {
			select {
			case <-s.inner.Done():
				s.clearLine()
				return
			case <-ticker.C:
				glyph := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)])
				fmt.Fprintf(s.out, "\r%s %s", glyph, label)
			}
		}
	}()
}

// Stop ends the animation and blocks until the line is cleared. Safe to
// call more than once.
func (s *Spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		<-s.halted
	})
}

// StopWithSuccess stops the spinner and prints a success line in its
// place.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line in its place.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the surrounding context ended, as opposed
// to an ordinary Stop. Callers use it to tell a user interrupt apart
// from a completed call.
func (s *Spinner) Cancelled() bool {
	return s.parent.Err() != nil
}

func (s *Spinner) clearLine() {
	width := len([]rune(s.message)) + 4
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", width))
}
