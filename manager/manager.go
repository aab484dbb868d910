// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package manager runs a plan.Plan end to end: it connects to the source
// and target deployments, health-checks both before any collection
// starts, fans out the plan's processors with bounded concurrency via the
// phase controller, and — once every collection has finished — replicates
// views, per spec.md §4.6 and §7.
package manager

import (
	"context"
	stderrors "errors"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/go-core-stack/tuxedo/config"
	"github.com/go-core-stack/tuxedo/db"
	"github.com/go-core-stack/tuxedo/errors"
	"github.com/go-core-stack/tuxedo/phase"
	"github.com/go-core-stack/tuxedo/pipeline"
	"github.com/go-core-stack/tuxedo/plan"
	"github.com/go-core-stack/tuxedo/progress"
	"github.com/go-core-stack/tuxedo/ratelimit"
	"github.com/go-core-stack/tuxedo/view"
)

// defaultWriteBurst is the burst size of each collection's
// ratelimit.Limiter when the plan enables an aggregate write-rate budget;
// a batch larger than this acquires its tokens in burst-sized steps.
const defaultWriteBurst = 500

// Credentials overrides the environment-variable fallback for one
// deployment's auth, per spec.md §6.
type Credentials = config.Credentials

// Options configures a Manager run beyond what the Plan itself carries.
type Options struct {
	Sink              progress.Sink
	SourceCredentials *Credentials
	TargetCredentials *Credentials
}

// CollectionOutcome is one collection's result within a Result.
type CollectionOutcome struct {
	Collection  string
	Err         error
	IndexErrors []error
}

// Result aggregates a whole run's outcome, per spec.md §4.6.
type Result struct {
	RunID       string
	Collections []CollectionOutcome
	ViewErrors  []error
}

// Success reports whether every collection completed without a fatal
// error. View replication failures never affect Success, since spec.md §7
// treats a view create error as logged and non-fatal.
func (r *Result) Success() bool {
	for _, c := range r.Collections {
		if c.Err != nil {
			return false
		}
	}
	return true
}

func (r *Result) firstErr() error {
	for _, c := range r.Collections {
		if c.Err != nil {
			return errors.Cause(errors.Fatal, "collection "+c.Collection+" failed", c.Err)
		}
	}
	return nil
}

// Manager runs one assembled Plan.
type Manager struct {
	plan *plan.Plan
	opts Options
}

// New binds a Plan to the options controlling how it is run.
func New(p *plan.Plan, opts Options) *Manager {
	return &Manager{plan: p, opts: opts}
}

func credentialsOrEnv(override *Credentials, envFn func() (string, string)) (string, string) {
	if override != nil {
		return override.Username, override.Password
	}
	return envFn()
}

// Run connects to both deployments, health-checks them, copies every
// collection in the plan with bounded concurrency, and — when enabled —
// replicates views last. A connection or health-check failure aborts the
// whole run before any collection starts; a per-collection failure does
// not stop the others (spec.md §7).
func (m *Manager) Run(ctx context.Context) (*Result, error) {
	p := m.plan
	runID := uuid.NewString()
	result := &Result{RunID: runID}

	sourceUser, sourcePass := credentialsOrEnv(m.opts.SourceCredentials, func() (string, string) {
		c := config.EnvSourceCredentials()
		return c.Username, c.Password
	})
	targetUser, targetPass := credentialsOrEnv(m.opts.TargetCredentials, func() (string, string) {
		c := config.EnvTargetCredentials()
		return c.Username, c.Password
	})

	sourceClient, err := db.NewMongoClient(ctx, &db.MongoConfig{URI: p.SourceURI, Username: sourceUser, Password: sourcePass})
	if err != nil {
		return result, errors.Cause(errors.Unavailable, "connecting to source", err)
	}
	defer sourceClient.Disconnect(context.Background())

	targetClient, err := db.NewMongoClient(ctx, &db.MongoConfig{URI: p.TargetURI, Username: targetUser, Password: targetPass})
	if err != nil {
		return result, errors.Cause(errors.Unavailable, "connecting to target", err)
	}
	defer targetClient.Disconnect(context.Background())

	if err := sourceClient.HealthCheck(ctx); err != nil {
		return result, errors.Cause(errors.Unavailable, "source health check", err)
	}
	if err := targetClient.HealthCheck(ctx); err != nil {
		return result, errors.Cause(errors.Unavailable, "target health check", err)
	}

	sourceDB := sourceClient.Database(p.SourceDB)
	targetDB := targetClient.Database(p.TargetDB)

	var rateMgr *ratelimit.Manager
	if p.AggregateWriteRate > 0 {
		rateMgr = ratelimit.NewManager(p.AggregateWriteRate)
	}

	ctrl := &phase.Controller{Source: sourceDB, Target: targetDB, Sink: m.opts.Sink, RunID: runID}

	outcomes := make([]CollectionOutcome, len(p.Entries))
	sem := make(chan struct{}, p.MaxParallelCollections)
	g, gctx := errgroup.WithContext(ctx)

	for i, entry := range p.Entries {
		i, entry := i, entry
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			rt := &pipeline.Runtime{
				Source: sourceDB,
				Target: targetDB,
				Sink:   m.opts.Sink,
				RunID:  runID,
			}
			if rateMgr != nil {
				lim, err := rateMgr.NewLimiter(p.TargetDB+"."+entry.Name(), p.AggregateWriteRate, defaultWriteBurst)
				if err != nil {
					log.Printf("manager: %s: failed to register write limiter, running unbounded: %v", entry.Name(), err)
				} else {
					rt.Limiter = lim
				}
			}

			res := ctrl.Run(gctx, entry, rt)
			outcomes[i] = CollectionOutcome{Collection: res.Collection, Err: res.Err, IndexErrors: res.IndexErrors}
			// a single collection's failure never aborts the others,
			// per spec.md §7
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if stderrors.Is(err, context.Canceled) {
			// the caller canceled the run; per spec.md §7 this is not an
			// error, so surface it as a non-fatal, partial result
			result.Collections = outcomes
			return result, errors.Wrap(errors.Canceled, "replication job canceled")
		}
		return result, errors.Cause(errors.Unavailable, "replication job aborted before completion", err)
	}
	result.Collections = outcomes

	if p.CopyViews && result.Success() {
		if sink := m.opts.Sink; sink != nil {
			sink.Emit(progress.Event{RunID: runID, Phase: progress.PhaseViewReplication})
		}
		specs, err := sourceDB.ListViews(ctx)
		if err != nil {
			log.Printf("manager: listing source views failed: %v", err)
			result.ViewErrors = append(result.ViewErrors, err)
		} else {
			planCollections := make(map[string]bool, len(p.Entries))
			for _, e := range p.Entries {
				planCollections[e.Name()] = true
			}
			result.ViewErrors = view.Replicate(ctx, targetDB, specs, planCollections)
		}
	}

	if !result.Success() {
		return result, result.firstErr()
	}
	return result, nil
}
