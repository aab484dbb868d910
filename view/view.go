// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package view replicates MongoDB view definitions after every
// collection's data and indexes have landed, per spec.md §4.6 step 5 and
// §3's invariant that views restore strictly last.
package view

import (
	"context"
	"fmt"
	"log"

	"github.com/go-core-stack/tuxedo/db"
)

// colorState tracks a depth-first search's visitation state for Sort's
// cycle detection.
type colorState int

const (
	white colorState = iota
	gray
	black
)

// Sort topologically orders specs by their underlying-collection
// reference, so a view defined over another view (MongoDB allows
// view-on-view) is replayed after its dependency. A cycle among views is
// reported by omitting every view on the cycle, and every view that
// depends on one, from ordered and returning them in cycles instead, per spec.md §9's open question: "break cycles
// by reporting an error rather than looping."
func Sort(specs []db.ViewSpec) (ordered []db.ViewSpec, cycles []db.ViewSpec) {
	byName := make(map[string]db.ViewSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}

	color := make(map[string]colorState, len(specs))
	onCycle := make(map[string]bool)

	var visit func(name string) bool // returns true if name sits on a cycle
	visit = func(name string) bool {
		spec, isView := byName[name]
		if !isView {
			// references an ordinary collection: no ordering
			// dependency on another view
			return false
		}
		switch color[name] {
		case black:
			return onCycle[name]
		case gray:
			onCycle[name] = true
			return true
		}
		color[name] = gray
		cyclic := visit(spec.On)
		if cyclic {
			onCycle[name] = true
		}
		color[name] = black
		if !onCycle[name] {
			ordered = append(ordered, spec)
		}
		return onCycle[name]
	}

	for _, s := range specs {
		if color[s.Name] == white {
			visit(s.Name)
		}
	}

	for _, s := range specs {
		if onCycle[s.Name] {
			cycles = append(cycles, s)
		}
	}
	return ordered, cycles
}

// Replicate creates every source view on target in dependency order.
// Views on a cycle are skipped and reported as errors rather than looped,
// and a view whose underlying reference isn't a known view and isn't in
// planCollections is copied anyway with a logged warning, per spec.md
// §4.6: "the policy is copy all source views."
func Replicate(ctx context.Context, target db.Database, specs []db.ViewSpec, planCollections map[string]bool) []error {
	isView := make(map[string]bool, len(specs))
	for _, s := range specs {
		isView[s.Name] = true
	}

	ordered, cycles := Sort(specs)

	var errs []error
	for _, s := range cycles {
		log.Printf("view: %s participates in a view-reference cycle, skipping", s.Name)
		errs = append(errs, fmt.Errorf("view %s: cyclic reference to %s, skipped", s.Name, s.On))
	}

	for _, s := range ordered {
		if !isView[s.On] && !planCollections[s.On] {
			log.Printf("view: %s references collection %s which is not part of the replication plan", s.Name, s.On)
		}
		if err := target.CreateView(ctx, s); err != nil {
			log.Printf("view: create %s failed: %v", s.Name, err)
			errs = append(errs, err)
		}
	}
	return errs
}
