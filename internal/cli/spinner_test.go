package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerCounter(t *testing.T) {
	var buf syncBuffer
	s := newSpinner(context.Background(), &buf, "Enumerating", 14)
	s.Set(3)
	s.Advance(2)
	s.Start()
	time.Sleep(150 * time.Millisecond)
	s.Stop()

	if !strings.Contains(buf.String(), "Enumerating 5/14") {
		t.Errorf("spinner output = %q, want the 5/14 counter", buf.String())
	}
	if !s.Cancelled() {
		t.Error("Cancelled() = false after Stop()")
	}
}

func TestSpinnerNoTotal(t *testing.T) {
	s := newSpinner(context.Background(), &syncBuffer{}, "Working", 0)
	if got := s.line(); got != "Working" {
		t.Errorf("line() = %q, want %q", got, "Working")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinner(ctx, &syncBuffer{}, "Working", 0)
	s.Start()
	cancel()
	if !s.Cancelled() {
		t.Error("Cancelled() = false after the parent context ended")
	}
	s.Stop()
	s.Stop()
}

func TestSpinnerStopMessages(t *testing.T) {
	tests := []struct {
		name string
		stop func(*Spinner)
		want string
	}{
		{"success", func(s *Spinner) { s.StopWithSuccess("Done") }, iconSuccess + " Done"},
		{"error", func(s *Spinner) { s.StopWithError("Failed") }, iconError + " Failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf syncBuffer
			s := newSpinner(context.Background(), &buf, "Working", 2)
			s.Start()
			tt.stop(s)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output = %q, want it to contain %q", buf.String(), tt.want)
			}
		})
	}
}
