// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package processor binds a collection name to a document shape and its
// per-collection config, per spec.md §4.2. An Entry is the type-erased
// handle a plan.Plan stores so that the manager can iterate a
// heterogeneous set of collections (each with its own document shape)
// without reflection on the hot path: the type parameter is resolved once,
// at plan-build time, into a closure over pipeline.RunTyped or
// pipeline.RunOpaque.
package processor

import (
	"context"

	"github.com/go-core-stack/tuxedo/config"
	"github.com/go-core-stack/tuxedo/pipeline"
)

// Entry is one collection's replication job: a name, its config, and the
// strategy it runs under. Run executes the full reader/transform/writer
// pipeline for the collection against rt.
type Entry interface {
	Name() string
	Config() *config.ProcessorConfig
	Strategy() config.Strategy
	Run(ctx context.Context, rt *pipeline.Runtime) error
}

type typedEntry[T any, PT pipeline.PtrMaskable[T]] struct {
	name     string
	cfg      *config.ProcessorConfig
	strategy config.Strategy
}

// NewTyped binds collection name to document shape T (with mask methods
// on *T) and strategy. cfg may be nil, in which case an empty
// ProcessorConfig is used (plan defaults should be merged in by the
// caller, typically plan.Builder).
func NewTyped[T any, PT pipeline.PtrMaskable[T]](name string, cfg *config.ProcessorConfig, strategy config.Strategy) Entry {
	if cfg == nil {
		cfg = &config.ProcessorConfig{}
	}
	return &typedEntry[T, PT]{name: name, cfg: cfg, strategy: strategy}
}

func (e *typedEntry[T, PT]) Name() string                     { return e.name }
func (e *typedEntry[T, PT]) Config() *config.ProcessorConfig   { return e.cfg }
func (e *typedEntry[T, PT]) Strategy() config.Strategy         { return e.strategy }
func (e *typedEntry[T, PT]) Run(ctx context.Context, rt *pipeline.Runtime) error {
	return pipeline.RunTyped[T, PT](ctx, rt, e.name, e.cfg, e.strategy)
}

// opaqueEntry is the generic, shape-less passthrough path: always
// Passthrough strategy, since an untyped bson.Raw document has nothing
// for Mask to mutate meaningfully.
type opaqueEntry struct {
	name string
	cfg  *config.ProcessorConfig
}

// NewOpaque binds collection name to the generic bson.Raw passthrough
// path, for collections where defining a typed shape isn't worth it. This
// is the Go rendition of spec.md §6's add_replicator(name).
func NewOpaque(name string, cfg *config.ProcessorConfig) Entry {
	if cfg == nil {
		cfg = &config.ProcessorConfig{}
	}
	return &opaqueEntry{name: name, cfg: cfg}
}

func (e *opaqueEntry) Name() string                   { return e.name }
func (e *opaqueEntry) Config() *config.ProcessorConfig { return e.cfg }
func (e *opaqueEntry) Strategy() config.Strategy       { return config.Passthrough }
func (e *opaqueEntry) Run(ctx context.Context, rt *pipeline.Runtime) error {
	return pipeline.RunOpaque(ctx, rt, e.name, e.cfg)
}
