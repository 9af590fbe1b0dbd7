package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a status line on stderr while a script replays. Once
// Step is called the line carries a [done/total] step counter.
type Spinner struct {
	message string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}

	mu    sync.Mutex
	step  int
	total int
	width int // widest line written so far, in runes
}

// newSpinner creates a new spinner with the given message.
func newSpinner(message string) *Spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that will stop when the context is cancelled.
func newSpinnerWithContext(ctx context.Context, message string) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		message: message,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Step records replay progress. It is safe to call from any goroutine.
func (s *Spinner) Step(done, total int) {
	s.mu.Lock()
	s.step, s.total = done, total
	s.mu.Unlock()
}

// text returns the plain status text.
func (s *Spinner) text() string {
	if s.total == 0 {
		return s.message
	}
	return fmt.Sprintf("%s [%d/%d]", s.message, s.step, s.total)
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.draw(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

func (s *Spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text := s.text()
	s.width = max(s.width, utf8.RuneCountInString(text)+2)
	fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(text))
}

// Stop stops the spinner and clears the line. Calling it twice is safe.
func (s *Spinner) Stop() {
	s.cancel()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped
	s.clearLine()
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", s.width))
}

// Cancelled reports whether the spinner's context has ended.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
