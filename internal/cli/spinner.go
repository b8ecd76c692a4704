package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a single status line while a sweep runs. With a total it
// also shows how many designs have finished.
type Spinner struct {
	w     io.Writer
	label string
	total int
	done  atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	exited chan struct{}
	once   sync.Once
	mu     sync.Mutex // guards writes to w
	width  int        // longest line drawn, for clearing
}

// newSpinner creates a spinner on w. It stops drawing when ctx is done.
// A total of 0 hides the counter.
func newSpinner(ctx context.Context, w io.Writer, label string, total int) *Spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &Spinner{w: w, label: label, total: total, ctx: ctx, cancel: cancel, exited: make(chan struct{})}
}

// Start draws frames until Stop is called or the context ends.
func (s *Spinner) Start() {
	go func() {
		defer close(s.exited)
		tick := time.NewTicker(80 * time.Millisecond)
		defer tick.Stop()
		for frame := 0; ; frame++ {
			select {
			case <-s.ctx.Done():
				return
			case <-tick.C:
				s.draw(spinnerFrames[frame%len(spinnerFrames)])
			}
		}
	}()
}

// Advance records that n more designs have finished.
func (s *Spinner) Advance(n int) { s.done.Add(int64(n)) }

// Set records the number of finished designs.
func (s *Spinner) Set(n int) { s.done.Store(int64(n)) }

func (s *Spinner) line() string {
	if s.total == 0 {
		return s.label
	}
	return fmt.Sprintf("%s %d/%d", s.label, s.done.Load(), s.total)
}

func (s *Spinner) draw(frame string) {
	line := s.line()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = max(s.width, len(line)+2)
	fmt.Fprintf(s.w, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
}

// Stop ends the animation and clears the line. Later calls do nothing.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.exited
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// StopWithSuccess stops and prints a success line.
func (s *Spinner) StopWithSuccess(msg string) {
	s.Stop()
	fmt.Fprintln(s.w, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// StopWithError stops and prints an error line.
func (s *Spinner) StopWithError(msg string) {
	s.Stop()
	fmt.Fprintln(s.w, styleIconError.Render(iconError)+" "+msg)
}

// Cancelled reports whether the spinner has stopped or its context ended.
func (s *Spinner) Cancelled() bool { return s.ctx.Err() != nil }
