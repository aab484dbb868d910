// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package config holds the per-collection tuning a processor carries
// through the phase controller and pipeline: batch dimensions, the
// source-side query shape, and whether the target collection is dropped
// before copy.
package config

import (
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/go-core-stack/tuxedo/errors"
	"github.com/go-core-stack/tuxedo/utils"
)

// Strategy selects whether a processor invokes mask.Maskable.Mask on each
// document (Mask) or copies documents verbatim (Passthrough).
type Strategy int

const (
	Mask Strategy = iota
	Passthrough
)

func (s Strategy) String() string {
	if s == Passthrough {
		return "passthrough"
	}
	return "mask"
}

// ProcessorConfig is the per-collection tuning recognized by a processor,
// per spec.md §4.2. A processor added without an explicit config inherits
// the plan's defaults; see plan.Builder.
type ProcessorConfig struct {
	// BatchSize is the fixed docs/batch. Ignored when AdaptiveBatchSize
	// is set.
	BatchSize int

	// AdaptiveBatchSize enables sampling-driven sizing via the sizer
	// package instead of BatchSize.
	AdaptiveBatchSize bool

	// TargetBatchBytes overrides the size bucket's default byte budget.
	// Nil means "use the bucket default".
	TargetBatchBytes *int64

	// Query is the source-side filter. Nil means "all documents".
	Query bson.D

	// Projection and Sort are passed through to the source cursor.
	Projection bson.D
	Sort       bson.D

	// DropTarget controls whether the target collection is dropped
	// before copy. Nil defaults to true.
	DropTarget *bool
}

// DropTargetOrDefault reports whether the target collection should be
// dropped before copy, defaulting to true when unset.
func (c *ProcessorConfig) DropTargetOrDefault() bool {
	if c == nil || c.DropTarget == nil {
		return true
	}
	return utils.PBool(c.DropTarget)
}

// TargetBatchBytesOrZero returns the configured byte budget override, or
// 0 when unset (meaning the sizer should pick a bucket default).
func (c *ProcessorConfig) TargetBatchBytesOrZero() int64 {
	if c == nil {
		return 0
	}
	return utils.PInt64(c.TargetBatchBytes)
}

// Clone returns a shallow copy suitable as a starting point for a
// per-processor override of plan-wide defaults.
func (c *ProcessorConfig) Clone() *ProcessorConfig {
	if c == nil {
		return &ProcessorConfig{}
	}
	cp := *c
	return &cp
}

// Builder assembles a ProcessorConfig fluently, per spec.md §6's
// ProcessorConfigBuilder surface.
type Builder struct {
	cfg ProcessorConfig
}

// NewBuilder starts a ProcessorConfig builder seeded from defaults, or
// from seed when seed is non-nil (typically the plan's defaults).
func NewBuilder(seed *ProcessorConfig) *Builder {
	b := &Builder{}
	if seed != nil {
		b.cfg = *seed
	}
	return b
}

func (b *Builder) BatchSize(n int) *Builder {
	b.cfg.BatchSize = n
	return b
}

func (b *Builder) AdaptiveBatchSize(v bool) *Builder {
	b.cfg.AdaptiveBatchSize = v
	return b
}

func (b *Builder) TargetBatchBytes(n int64) *Builder {
	b.cfg.TargetBatchBytes = utils.Int64P(n)
	return b
}

func (b *Builder) Query(filter bson.D) *Builder {
	b.cfg.Query = filter
	return b
}

func (b *Builder) Projection(proj bson.D) *Builder {
	b.cfg.Projection = proj
	return b
}

func (b *Builder) Sort(sort bson.D) *Builder {
	b.cfg.Sort = sort
	return b
}

func (b *Builder) DropTarget(v bool) *Builder {
	b.cfg.DropTarget = utils.BoolP(v)
	return b
}

// Build validates and returns the assembled ProcessorConfig.
func (b *Builder) Build() (*ProcessorConfig, error) {
	if b.cfg.BatchSize < 0 {
		return nil, errors.Wrap(errors.InvalidArgument, "batch size must not be negative")
	}
	cfg := b.cfg
	return &cfg, nil
}
