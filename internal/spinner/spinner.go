// Package spinner draws a one-line activity indicator for steps that print nothing else.
package spinner

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-runewidth"
)

var frames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const tick = 80 * time.Millisecond

// Spinner redraws "<frame> <message> (<elapsed>)" on a single line until stopped.
type Spinner struct {
	w       io.Writer
	message string
	started time.Time

	once    sync.Once
	done    chan struct{}
	cleared chan struct{}
	width   int
}

// Start displays an animated spinner with the given message on w.
// Call the returned function to stop the spinner and clear the line.
func Start(w io.Writer, message string) (stop func()) {
	s := &Spinner{
		w:       w,
		message: message,
		started: time.Now(),
		done:    make(chan struct{}),
		cleared: make(chan struct{}),
	}
	go s.loop()
	return s.Stop
}

func (s *Spinner) loop() {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.done:
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width)) //nolint:errcheck
			close(s.cleared)
			return
		case <-ticker.C:
			line := fmt.Sprintf("%c %s (%s)", frames[i%len(frames)], s.message, time.Since(s.started).Truncate(time.Second))
			// folder names from the corpus may hold wide runes
			s.width = max(s.width, runewidth.StringWidth(line))
			fmt.Fprintf(s.w, "\r%s", line) //nolint:errcheck
		}
	}
}

// Stop clears the line and waits for the redraw goroutine. Safe to call twice.
func (s *Spinner) Stop() {
	s.once.Do(func() { close(s.done) })
	<-s.cleared
}
