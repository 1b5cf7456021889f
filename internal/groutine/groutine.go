// Package groutine starts named goroutines. Names are attached as pprof labels so the
// scan loop and the notification dispatcher are easy to tell apart in profiles and dumps.
package groutine

import (
	"context"
	"runtime/pprof"
)

// LabelKey is the pprof label carrying the goroutine name.
const LabelKey = "goroutine_name"

// Go runs fn on a new goroutine labelled name. The context passed to fn derives
// from parent (context.Background() when nil) and carries the label.
//
//	groutine.Go(ctx, "podmon-scan", func(ctx context.Context) {
//	    // work
//	})
func Go(parent context.Context, name string, fn func(ctx context.Context)) {
	if parent == nil {
		parent = context.Background()
	}
	go pprof.Do(parent, pprof.Labels(LabelKey, name), fn)
}

// GoDone is like Go but returns a channel that is closed once fn returns.
func GoDone(parent context.Context, name string, fn func(ctx context.Context)) <-chan struct{} {
	done := make(chan struct{})
	Go(parent, name, func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	})
	return done
}

// Name returns the goroutine name carried by ctx, or "" outside Go.
func Name(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := pprof.Label(ctx, LabelKey)
	return name
}
