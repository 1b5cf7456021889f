package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

const (
	progressUpdateInterval = 250 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// CountdownPrinter shows the remaining time of a bounded operation on a single
// terminal line.
//
// A CountdownPrinter is single-use: Start at most once, then Stop.
type CountdownPrinter struct {
	out      io.Writer
	prefix   string
	duration time.Duration

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewCountdownPrinter creates a printer writing to out. Nothing is printed when
// out is not a terminal or duration is not positive.
func NewCountdownPrinter(out io.Writer, prefix string, duration time.Duration) *CountdownPrinter {
	return &CountdownPrinter{
		out:      out,
		prefix:   prefix,
		duration: duration,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *CountdownPrinter) enabled() bool {
	return p.duration > 0 && isTerminal(p.out)
}

// Start begins the countdown in a background goroutine.
func (p *CountdownPrinter) Start() {
	p.startOnce.Do(func() {
		if !p.enabled() {
			close(p.done)
			return
		}

		started := time.Now()
		ticker := time.NewTicker(progressUpdateInterval)
		p.print(p.duration)

		go func() {
			defer close(p.done)
			defer ticker.Stop()
			for {
				select {
				case <-p.stop:
					return
				case <-ticker.C:
					p.print(p.duration - time.Since(started))
				}
			}
		}()
	})
}

func (p *CountdownPrinter) print(remaining time.Duration) {
	seconds := 0
	if remaining > 0 {
		// Round to the nearest second
		seconds = int(remaining.Seconds() + 0.5)
	}
	fmt.Fprintf(p.out, "%s%s (%ds left)", clearLineSequence, p.prefix, seconds)
}

// Stop ends the countdown and clears the line. Safe to call more than once.
func (p *CountdownPrinter) Stop() {
	p.startOnce.Do(func() { close(p.done) })
	p.stopOnce.Do(func() {
		close(p.stop)
		<-p.done
		if p.enabled() {
			fmt.Fprint(p.out, clearLineSequence)
		}
	})
}
