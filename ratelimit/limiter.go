// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter wraps a token bucket rate limiter and reports usage back to the
// Manager so the shared budget can be rebalanced across collections.
type Limiter struct {
	mgr     *Manager
	key     string
	rate    int64
	burst   int64
	limiter *rate.Limiter
	usage   int // number of concurrent users that have marked the limiter as in-use
	mu      sync.Mutex
}

// SetInUse increments or decrements the active usage counter and notifies
// the Manager when the limiter transitions between idle and active states.
// A collection pipeline calls SetInUse(true) when it starts writing batches
// and SetInUse(false) once its last batch has landed.
func (l *Limiter) SetInUse(use bool) {
	if l.mgr == nil {
		panic("limiter not initialized with manager")
	}
	l.mu.Lock()
	if use {
		l.usage++
	} else {
		l.usage--
	}
	activate := false
	notify := false
	if l.usage <= 0 {
		notify = true
	} else if l.usage == 1 {
		notify = true
		activate = true
	}
	l.mu.Unlock()
	if notify {
		l.mgr.updateInUse(l, activate)
	}
}

// WaitN acquires n tokens (documents, typically a batch size) from the
// underlying rate limiter, blocking until they are available or ctx is
// canceled. An n larger than the limiter's burst is acquired in
// burst-sized steps.
func (l *Limiter) WaitN(ctx context.Context, n int) error {
	if l.mgr == nil {
		panic("limiter not initialized with manager")
	}
	for n > 0 {
		step := n
		if step > int(l.burst) {
			step = int(l.burst)
		}
		if err := l.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
