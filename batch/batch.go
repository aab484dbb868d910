// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package batch defines the bounded unit of work that moves through a
// collection's pipeline stages: a capacity-limited, ordered group of
// decoded documents of one shape.
package batch

// DocumentBatch is an ordered sequence of decoded documents of shape T,
// moving together from the reader stage through the transformer to the
// writer. Capacity is fixed at creation to the batch sizer's decision, so
// memory use per in-flight batch is bounded regardless of how it was
// populated.
type DocumentBatch[T any] struct {
	Docs []T

	// Err, if non-nil, marks the batch as failed before it reached the
	// writer (e.g. a decode error escalated past the per-document
	// threshold). A failed batch is never written: per spec.md's
	// invariant, a batch is written to the target if and only if every
	// document in it completed transformation without error.
	Err error

	// EndOfStream marks the terminal, possibly-empty batch the reader
	// sends once its cursor is exhausted.
	EndOfStream bool
}

// New allocates an empty batch with room for up to capacity documents.
func New[T any](capacity int) *DocumentBatch[T] {
	return &DocumentBatch[T]{
		Docs: make([]T, 0, capacity),
	}
}

// Len reports how many documents are currently in the batch.
func (b *DocumentBatch[T]) Len() int {
	return len(b.Docs)
}

// Full reports whether the batch has reached its allocated capacity.
func (b *DocumentBatch[T]) Full() bool {
	return len(b.Docs) == cap(b.Docs)
}

// Add appends doc to the batch.
func (b *DocumentBatch[T]) Add(doc T) {
	b.Docs = append(b.Docs, doc)
}
