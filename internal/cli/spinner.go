package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/matzehuels/mctbnc/pkg/observability"
)

// Spinner provides a progress indicator with context cancellation support.
// It doubles as search hooks: every committed move updates the status line,
// and events are forwarded to the globally registered hooks.
type Spinner struct {
	message string
	status  string
	width   int
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}
	frames  []string
	mu      sync.Mutex
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
		frames:  []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	}
}

// Start begins the spinner animation.
func (s *Spinner) Start() {
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		i := 0
		for {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				frame := s.frames[i%len(s.frames)]
				s.mu.Lock()
				line := s.line()
				if len(line) > s.width {
					s.width = len(line)
				}
				fmt.Fprintf(os.Stderr, "\r%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
				s.mu.Unlock()
				i++
			}
		}
	}()
}

// line must be called with mu held.
func (s *Spinner) line() string {
	if s.status == "" {
		return s.message
	}
	return s.message + " " + s.status
}

// SetStatus replaces the text shown after the message.
func (s *Spinner) SetStatus(status string) {
	s.mu.Lock()
	s.status = status
	s.mu.Unlock()
}

// Stop stops the spinner and clears the line.
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
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", max(s.width, len(s.message))+4))
}

// StopWithSuccess stops the spinner and shows a success message.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and shows an error message.
func (s *Spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled returns true if the spinner was stopped due to context cancellation.
func (s *Spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}

// OnSearchStart implements observability.SearchHooks.
func (s *Spinner) OnSearchStart(ctx context.Context, algorithm string, nodes int) {
	s.SetStatus(fmt.Sprintf("(%s, %d nodes)", strings.ToLower(algorithm), nodes))
	observability.Search().OnSearchStart(ctx, algorithm, nodes)
}

// OnIteration implements observability.SearchHooks.
func (s *Spinner) OnIteration(ctx context.Context, algorithm string, iteration int, score float64) {
	s.SetStatus(fmt.Sprintf("(%s, iteration %d, score %.4f)", strings.ToLower(algorithm), iteration, score))
	observability.Search().OnIteration(ctx, algorithm, iteration, score)
}

// OnSearchComplete implements observability.SearchHooks.
func (s *Spinner) OnSearchComplete(ctx context.Context, algorithm string, iterations int, score float64, d time.Duration) {
	s.SetStatus("")
	observability.Search().OnSearchComplete(ctx, algorithm, iterations, score, d)
}

var _ observability.SearchHooks = (*Spinner)(nil)
