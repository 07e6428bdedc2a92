package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher keeps the pricing cache warm in the background
type Refresher struct {
	resolver *Resolver
	interval time.Duration
	stopChan  chan struct{}
	done      chan struct{}
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewRefresher creates a refresher. An interval of 0 disables it.
func NewRefresher(resolver *Resolver, interval time.Duration) *Refresher {
	return &Refresher{
		resolver: resolver,
		interval: interval,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start fetches once and then on every tick. Calls after the first, or
// after Stop, do nothing.
func (rf *Refresher) Start() {
	rf.startOnce.Do(func() {
		if rf.interval <= 0 {
			close(rf.done)
			slog.Info("Pricing refresher disabled")
			return
		}
		go rf.refreshLoop()
		slog.Info("Pricing refresher started", "interval", rf.interval)
	})
}

// Stop ends the loop and waits for an in-flight refresh to finish
func (rf *Refresher) Stop() {
	rf.stopOnce.Do(func() {
		close(rf.stopChan)
		// never started: claim the start so the loop cannot begin later
		rf.startOnce.Do(func() { close(rf.done) })
		<-rf.done
		slog.Info("Pricing refresher stopped")
	})
}

func (rf *Refresher) refreshLoop() {
	defer close(rf.done)

	ticker := time.NewTicker(rf.interval)
	defer ticker.Stop()

	rf.refresh()
	for {
		select {
		case <-ticker.C:
			rf.refresh()
		case <-rf.stopChan:
			return
		}
	}
}

func (rf *Refresher) refresh() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-rf.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// failures are already logged by the resolver
	rf.resolver.Refresh(ctx)
}
