// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package pipeline implements the per-collection reader/transformer/writer
// chain of spec.md §4.4: a typed cursor feeds capacity-bounded channels, a
// worker pool applies mask.Maskable.Mask across each batch off the async
// path, and an unordered bulk writer drains the result to the target.
//
// Two concrete entry points exist rather than one generic-dispatch path,
// per spec.md §9's design note to keep the hot path monomorphic: RunTyped
// decodes into a user document shape and optionally masks it; RunOpaque
// copies bson.Raw documents verbatim for collections not worth typing.
package pipeline

import (
	"context"
	"log"
	"runtime"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"

	"github.com/go-core-stack/tuxedo/batch"
	"github.com/go-core-stack/tuxedo/config"
	"github.com/go-core-stack/tuxedo/db"
	"github.com/go-core-stack/tuxedo/errors"
	"github.com/go-core-stack/tuxedo/mask"
	"github.com/go-core-stack/tuxedo/progress"
	"github.com/go-core-stack/tuxedo/ratelimit"
	"github.com/go-core-stack/tuxedo/retry"
	"github.com/go-core-stack/tuxedo/sizer"
)

const (
	// defaultMaxDecodeErrors is the per-collection decode-error count
	// that escalates a run of per-document errors to collection-fatal,
	// per spec.md §7.
	defaultMaxDecodeErrors = 100

	// maxWriteAttempts and writeBackoffBase bound the retry of a bulk
	// write that failed wholly (network, auth), per spec.md §7.
	maxWriteAttempts = 3
	writeBackoffBase = 200 * time.Millisecond

	// channelCapacity is fixed at 2 per spec.md §4.4: one batch in
	// flight, one queued, bounding memory to roughly 2x batch size per
	// stage while still overlapping I/O and CPU work.
	channelCapacity = 2
)

// PtrMaskable constrains a type parameter pair (T, PT) so that PT is
// always *T and PT implements mask.Maskable. Mask mutates its receiver in
// place (spec.md §4.1), which requires a pointer method; document shapes
// are therefore stored as values of T in a batch and addressed through PT
// only at the point Mask is invoked, exactly mirroring how the compiler
// already lets you call a pointer-receiver method on an addressable slice
// element.
type PtrMaskable[T any] interface {
	*T
	mask.Maskable
}

// Runtime bundles everything one collection's pipeline run needs that
// isn't specific to the collection itself: the connected source/target
// handles (shared and internally pooled, per spec.md §3's ownership
// model), an optional write-rate limiter, and the progress sink.
type Runtime struct {
	Source db.Database
	Target db.Database

	// Limiter throttles the writer stage's bulk insert calls. Nil means
	// unlimited.
	Limiter *ratelimit.Limiter

	// Sink receives ProgressEvents. A nil Sink is replaced with
	// progress.NopSink at the start of a run.
	Sink progress.Sink

	// RunID correlates every event emitted across a multi-collection
	// replication job.
	RunID string

	// SampleMode controls how the batch sizer samples the source
	// collection when adaptive sizing is enabled.
	SampleMode sizer.SampleMode

	// MaxDecodeErrors overrides defaultMaxDecodeErrors when positive.
	MaxDecodeErrors int
}

func (rt *Runtime) sink() progress.Sink {
	if rt.Sink == nil {
		return progress.NopSink{}
	}
	return rt.Sink
}

func (rt *Runtime) maxDecodeErrors() int {
	if rt.MaxDecodeErrors > 0 {
		return rt.MaxDecodeErrors
	}
	return defaultMaxDecodeErrors
}

func (rt *Runtime) emit(collection string, phase progress.Phase, processed, total, bytes int64, err error) {
	rt.sink().Emit(progress.Event{
		RunID:      rt.RunID,
		Collection: collection,
		Phase:      phase,
		Processed:  processed,
		Total:      total,
		Bytes:      bytes,
		Err:        err,
	})
}

// RunTyped copies one collection through a typed decode/mask/write
// pipeline. T is the document shape; PT (almost always *T) must implement
// Maskable. When strategy is config.Passthrough, Mask is never invoked and
// T may use mask.NoOp embedded to satisfy the constraint at zero cost.
func RunTyped[T any, PT PtrMaskable[T]](ctx context.Context, rt *Runtime, name string, cfg *config.ProcessorConfig, strategy config.Strategy) error {
	srcCol := rt.Source.Collection(name)
	dstCol := rt.Target.Collection(name)

	decision, err := prepare(ctx, rt, srcCol, dstCol, name, cfg)
	if err != nil {
		return err
	}

	readCh := make(chan *batch.DocumentBatch[T], channelCapacity)
	writeCh := make(chan *batch.DocumentBatch[T], channelCapacity)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readStage(gctx, rt, srcCol, name, cfg, decision, readCh)
	})
	g.Go(func() error {
		return transformStage[T, PT](gctx, rt, name, strategy, readCh, writeCh)
	})
	g.Go(func() error {
		return writeStage(gctx, rt, dstCol, name, writeCh, nil)
	})

	if err := g.Wait(); err != nil {
		rt.emit(name, progress.PhaseFailed, 0, 0, 0, err)
		return err
	}
	rt.emit(name, progress.PhaseDone, 0, 0, 0, nil)
	return nil
}

// RunOpaque copies one collection verbatim as bson.Raw documents, with no
// decode and no mask step: the generic passthrough path of spec.md §4.4
// for collections where defining a shape isn't worth it.
func RunOpaque(ctx context.Context, rt *Runtime, name string, cfg *config.ProcessorConfig) error {
	srcCol := rt.Source.Collection(name)
	dstCol := rt.Target.Collection(name)

	decision, err := prepare(ctx, rt, srcCol, dstCol, name, cfg)
	if err != nil {
		return err
	}

	readCh := make(chan *batch.DocumentBatch[bson.Raw], channelCapacity)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return readStage(gctx, rt, srcCol, name, cfg, decision, readCh)
	})
	g.Go(func() error {
		return writeStage(gctx, rt, dstCol, name, readCh, func(d bson.Raw) int { return len(d) })
	})

	if err := g.Wait(); err != nil {
		rt.emit(name, progress.PhaseFailed, 0, 0, 0, err)
		return err
	}
	rt.emit(name, progress.PhaseDone, 0, 0, 0, nil)
	return nil
}

// prepare runs the phases that bracket a pipeline's data copy but sit
// inside the pipeline's own responsibility (as opposed to index capture
// and restore, owned by the phase controller): target reset and batch
// sizing.
func prepare(ctx context.Context, rt *Runtime, srcCol, dstCol db.Collection, name string, cfg *config.ProcessorConfig) (*sizer.Decision, error) {
	if cfg.DropTargetOrDefault() {
		rt.emit(name, progress.PhaseTargetReset, 0, 0, 0, nil)
		if err := dstCol.Drop(ctx); err != nil {
			return nil, errors.Cause(errors.Fatal, "dropping target "+name, err)
		}
	}

	rt.emit(name, progress.PhaseSampling, 0, 0, 0, nil)
	decision, err := sizer.Decide(ctx, srcCol, cfg.AdaptiveBatchSize, cfg.BatchSize, cfg.TargetBatchBytesOrZero(), rt.SampleMode)
	if err != nil {
		return nil, errors.Cause(errors.Fatal, "sizing "+name, err)
	}
	rt.emit(name, progress.PhaseSizing, 0, int64(decision.DocsPerBatch), 0, nil)
	return decision, nil
}

// readStage streams documents of shape T from col into capacity-bounded
// batches, decoding each one and skipping (not failing) a document that
// doesn't conform, per spec.md §3's invariant that a decode error is
// per-document, not a batch-level crash.
func readStage[T any](ctx context.Context, rt *Runtime, col db.Collection, name string, cfg *config.ProcessorConfig, decision *sizer.Decision, out chan<- *batch.DocumentBatch[T]) error {
	defer close(out)

	findOpts := options.Find().SetBatchSize(int32(decision.DocsPerBatch))
	if cfg.Projection != nil {
		findOpts.SetProjection(cfg.Projection)
	}
	if cfg.Sort != nil {
		findOpts.SetSort(cfg.Sort)
	}
	filter := interface{}(cfg.Query)
	if cfg.Query == nil {
		filter = bson.D{}
	}

	cur, err := col.Find(ctx, filter, findOpts)
	if err != nil {
		return errors.Cause(errors.Fatal, "opening cursor on "+name, err)
	}
	defer cur.Close(ctx)

	// best-effort total for the progress sink; a count failure never
	// aborts the copy, it just leaves Total unset on this event
	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		log.Printf("pipeline: %s: failed to count documents for progress reporting: %v", name, err)
		total = 0
	}
	rt.emit(name, progress.PhaseReading, 0, total, 0, nil)

	b := batch.New[T](decision.DocsPerBatch)
	decodeErrs := 0
	maxErrs := rt.maxDecodeErrors()

	flush := func() error {
		if b.Len() == 0 {
			return nil
		}
		select {
		case out <- b:
		case <-ctx.Done():
			return ctx.Err()
		}
		b = batch.New[T](decision.DocsPerBatch)
		return nil
	}

	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			decodeErrs++
			log.Printf("pipeline: %s: failed to decode document %v: %v", name, lookupID(cur.Current()), err)
			if decodeErrs > maxErrs {
				return errors.Wrapf(errors.Fatal, "%s: decode error rate exceeded threshold (%d)", name, maxErrs)
			}
			continue
		}
		b.Add(doc)
		if b.Full() {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := cur.Err(); err != nil {
		return errors.Cause(errors.Fatal, "cursor iteration on "+name, err)
	}
	if err := flush(); err != nil {
		return err
	}

	select {
	case out <- &batch.DocumentBatch[T]{EndOfStream: true}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// lookupID extracts the _id field from a raw document for log correlation
// when its typed decode failed.
func lookupID(raw bson.Raw) interface{} {
	if len(raw) == 0 {
		return nil
	}
	val := raw.Lookup("_id")
	return val
}

// transformStage applies Mask across a batch in parallel when strategy is
// config.Mask, off the async path via a bounded worker pool, per spec.md
// §4.4 and §5's cross-scheduler handoff. Passthrough is a pure hand-off.
func transformStage[T any, PT PtrMaskable[T]](ctx context.Context, rt *Runtime, name string, strategy config.Strategy, in <-chan *batch.DocumentBatch[T], out chan<- *batch.DocumentBatch[T]) error {
	defer close(out)
	for {
		select {
		case b, ok := <-in:
			if !ok {
				return nil
			}
			if b.EndOfStream {
				select {
				case out <- b:
				case <-ctx.Done():
					return ctx.Err()
				}
				return nil
			}

			rt.emit(name, progress.PhaseTransforming, int64(b.Len()), int64(b.Len()), 0, nil)

			if strategy == config.Mask {
				maskBatch[T, PT](name, b)
			}

			select {
			case out <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// maskBatch runs Mask across every document in b using a worker pool of
// size min(ncpu, batch_len), per spec.md §4.4. A panic inside Mask is
// recovered and the offending document is dropped from the batch rather
// than failing the whole batch, per spec.md §7.
func maskBatch[T any, PT PtrMaskable[T]](name string, b *batch.DocumentBatch[T]) {
	n := b.Len()
	if n == 0 {
		return
	}
	workers := runtime.NumCPU()
	if workers > n {
		workers = n
	}

	skipped := make([]bool, n)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := range b.Docs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("pipeline: %s: mask panic on document index %d, skipping: %v", name, i, r)
					skipped[i] = true
				}
			}()
			PT(&b.Docs[i]).Mask()
		}(i)
	}
	wg.Wait()

	compactSkipped(b, skipped)
}

func compactSkipped[T any](b *batch.DocumentBatch[T], skipped []bool) {
	hasSkipped := false
	for _, s := range skipped {
		if s {
			hasSkipped = true
			break
		}
	}
	if !hasSkipped {
		return
	}
	kept := b.Docs[:0]
	for i, doc := range b.Docs {
		if !skipped[i] {
			kept = append(kept, doc)
		}
	}
	b.Docs = kept
}

// writeStage drains batches to col via unordered bulk insert, retrying a
// wholly-failed bulk op with exponential backoff before escalating to
// collection-fatal, per spec.md §7. sizeOf is optional and, when set, is
// used to report bytes written for the progress sink.
func writeStage[T any](ctx context.Context, rt *Runtime, col db.Collection, name string, in <-chan *batch.DocumentBatch[T], sizeOf func(T) int) error {
	if rt.Limiter != nil {
		rt.Limiter.SetInUse(true)
		defer rt.Limiter.SetInUse(false)
	}
	for {
		select {
		case b, ok := <-in:
			if !ok {
				return nil
			}
			if b.EndOfStream {
				rt.emit(name, progress.PhaseDraining, 0, 0, 0, nil)
				return nil
			}
			if b.Err != nil {
				return b.Err
			}
			if b.Len() == 0 {
				continue
			}
			if err := writeBatch(ctx, rt, col, name, b, sizeOf); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func writeBatch[T any](ctx context.Context, rt *Runtime, col db.Collection, name string, b *batch.DocumentBatch[T], sizeOf func(T) int) error {
	rt.emit(name, progress.PhaseWriting, int64(b.Len()), int64(b.Len()), 0, nil)

	if rt.Limiter != nil {
		if err := rt.Limiter.WaitN(ctx, b.Len()); err != nil {
			return err
		}
	}

	docs := make([]interface{}, b.Len())
	var bytesWritten int64
	for i, d := range b.Docs {
		docs[i] = d
		if sizeOf != nil {
			bytesWritten += int64(sizeOf(d))
		}
	}

	err := retry.Do(ctx, func(ctx context.Context) (*retry.Result, error) {
		outcome, err := col.BulkInsert(ctx, docs)
		if err != nil {
			// a whole-batch failure (network, auth): retry.Do will
			// back off and try again, per spec.md §7
			return nil, err
		}
		for _, we := range outcome.Errors {
			log.Printf("pipeline: %s: write error on document %d: %v", name, we.Index, we.Err)
		}
		return nil, nil
	}, maxWriteAttempts, writeBackoffBase)
	if err != nil {
		return errors.Cause(errors.Fatal, "bulk insert on "+name+" failed after retries", err)
	}

	if bytesWritten > 0 {
		rt.emit(name, progress.PhaseWriting, 0, 0, bytesWritten, nil)
	}
	return nil
}
