// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package phase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-core-stack/tuxedo/config"
	"github.com/go-core-stack/tuxedo/db"
	"github.com/go-core-stack/tuxedo/pipeline"
	"github.com/go-core-stack/tuxedo/progress"
)

type fakeCollection struct {
	name          string
	indexes       []db.IndexSpec
	listErr       error
	created       []db.IndexSpec
	createErrFor  map[string]bool
}

func (c *fakeCollection) Name() string { return c.name }
func (c *fakeCollection) Find(context.Context, interface{}, ...options.Lister[options.FindOptions]) (db.Cursor, error) {
	return nil, nil
}
func (c *fakeCollection) Sample(context.Context, int) (db.Cursor, error)         { return nil, nil }
func (c *fakeCollection) CountDocuments(context.Context, interface{}) (int64, error) { return 0, nil }
func (c *fakeCollection) BulkInsert(context.Context, []interface{}) (*db.BulkOutcome, error) {
	return &db.BulkOutcome{}, nil
}
func (c *fakeCollection) Drop(context.Context) error { return nil }
func (c *fakeCollection) ListIndexes(context.Context) ([]db.IndexSpec, error) {
	return c.indexes, c.listErr
}
func (c *fakeCollection) CreateIndex(ctx context.Context, spec db.IndexSpec) error {
	if c.createErrFor[spec.Name] {
		return assert.AnError
	}
	c.created = append(c.created, spec)
	return nil
}

type fakeDatabase struct {
	cols map[string]*fakeCollection
}

func newFakeDatabase() *fakeDatabase { return &fakeDatabase{cols: make(map[string]*fakeCollection)} }

func (d *fakeDatabase) Name() string { return "fake" }
func (d *fakeDatabase) Collection(name string) db.Collection {
	c, ok := d.cols[name]
	if !ok {
		c = &fakeCollection{name: name}
		d.cols[name] = c
	}
	return c
}
func (d *fakeDatabase) ListCollectionNames(context.Context) ([]string, error) { return nil, nil }
func (d *fakeDatabase) ListViews(context.Context) ([]db.ViewSpec, error)      { return nil, nil }
func (d *fakeDatabase) CreateView(context.Context, db.ViewSpec) error         { return nil }

type fakeEntry struct {
	name string
	err  error
	ran  bool
}

func (e *fakeEntry) Name() string                    { return e.name }
func (e *fakeEntry) Config() *config.ProcessorConfig  { return &config.ProcessorConfig{} }
func (e *fakeEntry) Strategy() config.Strategy        { return config.Passthrough }
func (e *fakeEntry) Run(ctx context.Context, rt *pipeline.Runtime) error {
	e.ran = true
	return e.err
}

func Test_RunCapturesIndexesCopiesDataAndRestoresIndexes(t *testing.T) {
	srcDB := newFakeDatabase()
	tgtDB := newFakeDatabase()
	srcDB.Collection("users").(*fakeCollection).indexes = []db.IndexSpec{
		{Name: "by_email", Keys: nil, Unique: true},
	}

	c := &Controller{Source: srcDB, Target: tgtDB, Sink: progress.NopSink{}, RunID: "r1"}
	entry := &fakeEntry{name: "users"}

	res := c.Run(context.Background(), entry, &pipeline.Runtime{Source: srcDB, Target: tgtDB})

	require.NoError(t, res.Err)
	assert.True(t, entry.ran)
	assert.Empty(t, res.IndexErrors)
	require.Len(t, tgtDB.Collection("users").(*fakeCollection).created, 1)
	assert.Equal(t, "by_email", tgtDB.Collection("users").(*fakeCollection).created[0].Name)
}

func Test_RunSkipsIndexRestoreOnDataCopyFailure(t *testing.T) {
	srcDB := newFakeDatabase()
	tgtDB := newFakeDatabase()
	srcDB.Collection("users").(*fakeCollection).indexes = []db.IndexSpec{{Name: "by_email"}}

	c := &Controller{Source: srcDB, Target: tgtDB}
	entry := &fakeEntry{name: "users", err: assert.AnError}

	res := c.Run(context.Background(), entry, &pipeline.Runtime{Source: srcDB, Target: tgtDB})

	require.Error(t, res.Err)
	assert.Empty(t, tgtDB.Collection("users").(*fakeCollection).created)
}

func Test_RunCollectsButDoesNotAbortOnIndexCreateError(t *testing.T) {
	srcDB := newFakeDatabase()
	tgtDB := newFakeDatabase()
	srcDB.Collection("users").(*fakeCollection).indexes = []db.IndexSpec{
		{Name: "good"},
		{Name: "bad"},
	}
	tgtDB.Collection("users").(*fakeCollection).createErrFor = map[string]bool{"bad": true}

	c := &Controller{Source: srcDB, Target: tgtDB}
	entry := &fakeEntry{name: "users"}

	res := c.Run(context.Background(), entry, &pipeline.Runtime{Source: srcDB, Target: tgtDB})

	require.NoError(t, res.Err)
	require.Len(t, res.IndexErrors, 1)
	require.Len(t, tgtDB.Collection("users").(*fakeCollection).created, 1)
}

func Test_RunProceedsWithoutIndexesWhenCaptureFails(t *testing.T) {
	srcDB := newFakeDatabase()
	tgtDB := newFakeDatabase()
	srcDB.Collection("users").(*fakeCollection).listErr = assert.AnError

	c := &Controller{Source: srcDB, Target: tgtDB}
	entry := &fakeEntry{name: "users"}

	res := c.Run(context.Background(), entry, &pipeline.Runtime{Source: srcDB, Target: tgtDB})

	require.NoError(t, res.Err)
	assert.Empty(t, res.IndexErrors)
}
