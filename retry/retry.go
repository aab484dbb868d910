// Copyright © 2025 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package retry runs a fallible operation with bounded attempts and
// exponential backoff. Its Result/requeue shape is taken from
// reconciler.Result in the stack this project grew out of, stripped down
// from a live, dedup-enqueueing reconciliation loop to the single
// synchronous retry a batch write needs: there is no changing key space
// here, just one bulk write that either lands or doesn't.
package retry

import (
	"context"
	"time"
)

// Result lets an attempt ask for a specific delay before the next try,
// instead of the default exponential backoff. A nil Result (or one with
// RequeueAfter == 0) uses the default schedule.
type Result struct {
	RequeueAfter time.Duration
}

// Func is one attempt. Returning a non-nil error triggers a retry (subject
// to attempts remaining); a nil error ends the loop successfully.
type Func func(ctx context.Context) (*Result, error)

// Do runs fn until it succeeds, the context is canceled, or maxAttempts is
// exhausted, whichever comes first. Between attempts it waits either the
// delay fn requested via Result.RequeueAfter, or baseDelay doubled for each
// prior attempt. maxAttempts <= 0 is treated as 1 (no retry).
func Do(ctx context.Context, fn Func, maxAttempts int, baseDelay time.Duration) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	var lastErr error
	delay := baseDelay
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		res, err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == maxAttempts-1 {
			break
		}

		wait := delay
		if res != nil && res.RequeueAfter > 0 {
			wait = res.RequeueAfter
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}

	return lastErr
}
