// Package ratelimit provides token bucket rate limiting with dynamic
// capacity rebalancing across a fixed set of participants.
//
// # Overview
//
// A Manager holds one aggregate documents/sec budget and a set of named
// Limiters, one per collection pipeline running concurrently in a
// replication job. When a pipeline is actively writing batches it marks
// its Limiter in-use; the Manager then redistributes the shared budget
// proportionally across every currently-active Limiter, so a collection
// that finishes (or hasn't started) never holds capacity idle while
// others are still copying.
//
// # Rate Limiting Strategy
//
// Tokens are acquired BEFORE a batch write (WaitN blocks until n documents'
// worth of budget is available), not after. This keeps the write side from
// bursting past the configured ceiling even when a collection's documents
// arrive from the source faster than the target can absorb them.
//
// # Example Usage
//
//	mgr := ratelimit.NewManager(5000) // 5000 docs/sec aggregate
//	lim, _ := mgr.NewLimiter("app.orders", 2000, 500)
//
//	lim.SetInUse(true)
//	defer lim.SetInUse(false)
//	if err := lim.WaitN(ctx, len(batch)); err != nil {
//		return err
//	}
package ratelimit
