// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package mask defines the contract a document shape implements to scrub
// sensitive fields in place before a masked collection is written to the
// target deployment.
package mask

// Maskable is implemented by any document shape that participates in a
// Mask-strategy processor. Mask mutates the receiver in place, replacing
// sensitive fields with synthetic values. It must be pure with respect to
// external state beyond a thread-local source of randomness, must not
// perform I/O, and is invoked at most once per document, never
// concurrently on the same document.
//
// A no-op implementation is valid and is the intended shape for fast
// passthrough of large typed collections that have nothing to scrub.
type Maskable interface {
	Mask()
}

// NoOp is a Maskable that leaves its document untouched. Embed it, or use
// it directly as a type parameter's zero-cost Mask, for collections that
// are typed for decode speed but carry no sensitive fields.
type NoOp struct{}

func (NoOp) Mask() {}
