// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package phase sequences the parts of a single collection's replication
// that sit outside the pipeline's own data copy: index capture before and
// index restore after, per spec.md §4.5. The pipeline (run via a
// processor.Entry) owns the target reset, sizing, and the actual document
// copy; Controller brackets that with the index lifecycle.
package phase

import (
	"context"
	"log"

	"github.com/go-core-stack/tuxedo/db"
	"github.com/go-core-stack/tuxedo/pipeline"
	"github.com/go-core-stack/tuxedo/processor"
	"github.com/go-core-stack/tuxedo/progress"
)

// Result is one collection's outcome: Err is the fatal error (if any) from
// the data copy itself; IndexErrors collects individual index-creation
// failures, which are reported but never abort the collection, per
// spec.md §4.5: "Creation failures on individual indexes are collected and
// reported but do not abort the collection's phase."
type Result struct {
	Collection  string
	Err         error
	IndexErrors []error
}

// Controller runs the full per-collection phase sequence: index capture,
// data copy (delegated to entry.Run), index restore.
type Controller struct {
	Source db.Database
	Target db.Database
	Sink   progress.Sink
	RunID  string
}

func (c *Controller) emit(name string, ph progress.Phase, err error) {
	sink := c.Sink
	if sink == nil {
		sink = progress.NopSink{}
	}
	sink.Emit(progress.Event{RunID: c.RunID, Collection: name, Phase: ph, Err: err})
}

// Run executes entry's full phase sequence against rt, which must already
// carry c's Source/Target/Sink/RunID (pipeline.Runtime is the shared
// execution context; Controller only adds the index bracket around it).
func (c *Controller) Run(ctx context.Context, entry processor.Entry, rt *pipeline.Runtime) *Result {
	name := entry.Name()
	res := &Result{Collection: name}

	c.emit(name, progress.PhaseIndexCapture, nil)
	srcCol := c.Source.Collection(name)
	indexes, err := srcCol.ListIndexes(ctx)
	if err != nil {
		log.Printf("phase: %s: failed to capture indexes, proceeding without them: %v", name, err)
		indexes = nil
	}

	if err := entry.Run(ctx, rt); err != nil {
		res.Err = err
		return res
	}

	c.emit(name, progress.PhaseIndexRestore, nil)
	dstCol := c.Target.Collection(name)
	for _, spec := range indexes {
		if err := dstCol.CreateIndex(ctx, spec); err != nil {
			log.Printf("phase: %s: failed to restore index %s: %v", name, spec.Name, err)
			res.IndexErrors = append(res.IndexErrors, err)
		}
	}

	c.emit(name, progress.PhaseDone, nil)
	return res
}
