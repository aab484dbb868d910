// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package view

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-core-stack/tuxedo/db"
)

func Test_SortOrdersViewOnViewAfterDependency(t *testing.T) {
	specs := []db.ViewSpec{
		{Name: "active_users", On: "users_view"},
		{Name: "users_view", On: "users"},
	}

	ordered, cycles := Sort(specs)
	require.Empty(t, cycles)
	require.Len(t, ordered, 2)
	assert.Equal(t, "users_view", ordered[0].Name)
	assert.Equal(t, "active_users", ordered[1].Name)
}

func Test_SortBreaksCycles(t *testing.T) {
	specs := []db.ViewSpec{
		{Name: "a", On: "b"},
		{Name: "b", On: "a"},
		{Name: "independent", On: "users"},
	}

	ordered, cycles := Sort(specs)
	require.Len(t, cycles, 2)
	require.Len(t, ordered, 1)
	assert.Equal(t, "independent", ordered[0].Name)
}

type fakeViewDB struct {
	created []db.ViewSpec
	failFor map[string]bool
}

func (f *fakeViewDB) Name() string                                    { return "fake" }
func (f *fakeViewDB) Collection(name string) db.Collection            { return nil }
func (f *fakeViewDB) ListCollectionNames(context.Context) ([]string, error) { return nil, nil }
func (f *fakeViewDB) ListViews(context.Context) ([]db.ViewSpec, error) { return nil, nil }
func (f *fakeViewDB) CreateView(ctx context.Context, spec db.ViewSpec) error {
	if f.failFor[spec.Name] {
		return assert.AnError
	}
	f.created = append(f.created, spec)
	return nil
}

func Test_ReplicateSkipsCyclesAndCreatesRest(t *testing.T) {
	specs := []db.ViewSpec{
		{Name: "a", On: "b"},
		{Name: "b", On: "a"},
		{Name: "active_users", On: "users"},
	}
	target := &fakeViewDB{}

	errs := Replicate(context.Background(), target, specs, map[string]bool{"users": true})
	require.Len(t, errs, 2) // the two cyclic views
	require.Len(t, target.created, 1)
	assert.Equal(t, "active_users", target.created[0].Name)
}

func Test_ReplicateWarnsButStillCopiesUnknownUnderlyingCollection(t *testing.T) {
	specs := []db.ViewSpec{{Name: "orphan_view", On: "not_in_plan"}}
	target := &fakeViewDB{}

	errs := Replicate(context.Background(), target, specs, map[string]bool{})
	assert.Empty(t, errs)
	require.Len(t, target.created, 1)
}

func Test_ReplicateCollectsCreateErrors(t *testing.T) {
	specs := []db.ViewSpec{{Name: "broken", On: "users"}}
	target := &fakeViewDB{failFor: map[string]bool{"broken": true}}

	errs := Replicate(context.Background(), target, specs, map[string]bool{"users": true})
	require.Len(t, errs, 1)
}
