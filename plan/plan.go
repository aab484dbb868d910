// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package plan is the immutable job description a manager.Manager runs,
// per spec.md §9's design note: "The plan is a pure value; the manager
// that runs it is separate. This separation enables deterministic tests
// that assemble a plan and inspect it without touching MongoDB." Nothing
// in this package dials a database.
package plan

import (
	"runtime"

	"github.com/go-core-stack/tuxedo/config"
	"github.com/go-core-stack/tuxedo/errors"
	"github.com/go-core-stack/tuxedo/pipeline"
	"github.com/go-core-stack/tuxedo/processor"
)

// Plan is the assembled, read-only replication job description, per
// spec.md §3's ReplicationPlan entity.
type Plan struct {
	SourceURI, TargetURI string
	SourceDB, TargetDB   string

	Strategy  config.Strategy
	CopyViews bool

	// MaxParallelCollections bounds the number of collections the
	// manager runs concurrently; always positive after Build.
	MaxParallelCollections int

	// AggregateWriteRate is the shared documents/sec budget handed to
	// ratelimit.Manager, or 0 for unlimited.
	AggregateWriteRate int64

	// Entries is the ordered set of processor bindings. Order here is
	// the order processors were added, not a scheduling guarantee: the
	// manager has no cross-collection ordering (spec.md §3).
	Entries []processor.Entry
}

// Builder assembles a Plan fluently, per spec.md §6's
// ReplicationManagerBuilder surface. A Builder from NewBuilder starts out
// with Strategy == config.Mask and no processors; the zero value is not
// usable, since adding a processor to it panics on its nil name set.
type Builder struct {
	plan         Plan
	defaultBatch config.ProcessorConfig
	namesSeen    map[string]bool
	buildErr     error
}

// NewBuilder starts a Builder.
func NewBuilder() *Builder {
	return &Builder{
		plan:      Plan{Strategy: config.Mask},
		namesSeen: make(map[string]bool),
	}
}

func (b *Builder) SourceURI(uri string) *Builder { b.plan.SourceURI = uri; return b }
func (b *Builder) TargetURI(uri string) *Builder { b.plan.TargetURI = uri; return b }
func (b *Builder) SourceDB(name string) *Builder { b.plan.SourceDB = name; return b }
func (b *Builder) TargetDB(name string) *Builder { b.plan.TargetDB = name; return b }

// BatchSize sets the plan-wide default fixed batch size, inherited by any
// processor added without its own config.
func (b *Builder) BatchSize(n int) *Builder { b.defaultBatch.BatchSize = n; return b }

func (b *Builder) Strategy(s config.Strategy) *Builder { b.plan.Strategy = s; return b }
func (b *Builder) CopyViewsEnabled(v bool) *Builder     { b.plan.CopyViews = v; return b }

// WithAdaptiveBatchSizing enables sampling-driven sizing as the plan-wide
// default.
func (b *Builder) WithAdaptiveBatchSizing() *Builder {
	b.defaultBatch.AdaptiveBatchSize = true
	return b
}

// WithTargetBatchBytes overrides the plan-wide default byte budget used by
// adaptive sizing.
func (b *Builder) WithTargetBatchBytes(n int64) *Builder {
	v := n
	b.defaultBatch.TargetBatchBytes = &v
	return b
}

func (b *Builder) MaxParallelCollections(n int) *Builder {
	b.plan.MaxParallelCollections = n
	return b
}

// WithAggregateWriteRate bounds the shared documents/sec write budget
// across every collection pipeline running concurrently in the job.
func (b *Builder) WithAggregateWriteRate(docsPerSec int64) *Builder {
	b.plan.AggregateWriteRate = docsPerSec
	return b
}

func (b *Builder) addEntry(e processor.Entry) *Builder {
	if b.namesSeen[e.Name()] {
		b.buildErr = errors.Wrapf(errors.AlreadyExists, "duplicate processor for collection %q", e.Name())
		return b
	}
	b.namesSeen[e.Name()] = true
	b.plan.Entries = append(b.plan.Entries, e)
	return b
}

// AddProcessorEntry registers an already-constructed processor.Entry, the
// escape hatch for callers that built one directly via the processor
// package.
func (b *Builder) AddProcessorEntry(e processor.Entry) *Builder {
	return b.addEntry(e)
}

// AddReplicator registers an untyped, generic passthrough collection —
// the Go rendition of spec.md §6's add_replicator(name). cfg may be nil to
// inherit the plan defaults.
func (b *Builder) AddReplicator(name string, cfg *config.ProcessorConfig) *Builder {
	if cfg == nil {
		cfg = b.defaultBatch.Clone()
	}
	return b.addEntry(processor.NewOpaque(name, cfg))
}

// AddProcessor registers a collection bound to typed shape T (mask
// methods on PT, normally *T), using the plan's default config. This is
// the Go rendition of spec.md §6's add_processor<T>(name); it is a
// free function rather than a Builder method because Go methods cannot
// themselves carry type parameters.
func AddProcessor[T any, PT pipeline.PtrMaskable[T]](b *Builder, name string) *Builder {
	return b.addEntry(processor.NewTyped[T, PT](name, b.defaultBatch.Clone(), b.plan.Strategy))
}

// AddProcessorWithConfig registers a collection bound to typed shape T
// with an explicit, per-collection config override. This is the Go
// rendition of spec.md §6's add_processor_with_config<T>(name, cfg).
func AddProcessorWithConfig[T any, PT pipeline.PtrMaskable[T]](b *Builder, name string, cfg *config.ProcessorConfig) *Builder {
	return b.addEntry(processor.NewTyped[T, PT](name, cfg, b.plan.Strategy))
}

// Build validates and returns the assembled, immutable Plan.
func (b *Builder) Build() (*Plan, error) {
	if b.buildErr != nil {
		return nil, b.buildErr
	}
	if b.plan.SourceURI == "" || b.plan.TargetURI == "" {
		return nil, errors.Wrap(errors.InvalidArgument, "source and target URIs are required")
	}
	if b.plan.SourceDB == "" || b.plan.TargetDB == "" {
		return nil, errors.Wrap(errors.InvalidArgument, "source and target database names are required")
	}
	if len(b.plan.Entries) == 0 {
		return nil, errors.Wrap(errors.InvalidArgument, "plan has no processors")
	}

	p := b.plan
	if p.MaxParallelCollections <= 0 {
		p.MaxParallelCollections = runtime.NumCPU()
	}
	p.Entries = append([]processor.Entry(nil), b.plan.Entries...)
	return &p, nil
}
