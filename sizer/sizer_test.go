// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package sizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-core-stack/tuxedo/db"
	"github.com/go-core-stack/tuxedo/errors"
)

// fakeCursor replays a fixed slice of already-marshaled documents.
type fakeCursor struct {
	docs []bson.Raw
	pos  int
}

func (c *fakeCursor) Next(ctx context.Context) bool {
	if c.pos >= len(c.docs) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Decode(val interface{}) error { return bson.Unmarshal(c.docs[c.pos-1], val) }
func (c *fakeCursor) Current() bson.Raw            { return c.docs[c.pos-1] }
func (c *fakeCursor) Err() error                   { return nil }
func (c *fakeCursor) Close(context.Context) error  { return nil }

// fakeCollection stands in for the real driver, rejecting a nil filter the
// way go.mongodb.org/mongo-driver/v2's Collection.Find does when it tries
// to marshal one (bson.ErrNilDocument), so a regression back to passing
// nil straight through is caught without a live server.
type fakeCollection struct {
	docs []bson.D
}

func (c *fakeCollection) toRaws() []bson.Raw {
	raws := make([]bson.Raw, 0, len(c.docs))
	for _, d := range c.docs {
		raw, err := bson.Marshal(d)
		if err != nil {
			panic(err)
		}
		raws = append(raws, raw)
	}
	return raws
}

func (c *fakeCollection) Name() string { return "users" }

func (c *fakeCollection) Find(ctx context.Context, filter interface{}, opts ...options.Lister[options.FindOptions]) (db.Cursor, error) {
	if filter == nil {
		return nil, errors.Wrap(errors.InvalidArgument, "nil document")
	}
	return &fakeCursor{docs: c.toRaws()}, nil
}

func (c *fakeCollection) Sample(ctx context.Context, n int) (db.Cursor, error) {
	return &fakeCursor{docs: c.toRaws()}, nil
}

func (c *fakeCollection) CountDocuments(ctx context.Context, filter interface{}) (int64, error) {
	return int64(len(c.docs)), nil
}

func (c *fakeCollection) BulkInsert(ctx context.Context, docs []interface{}) (*db.BulkOutcome, error) {
	return &db.BulkOutcome{InsertedCount: int64(len(docs))}, nil
}

func (c *fakeCollection) Drop(ctx context.Context) error                          { return nil }
func (c *fakeCollection) ListIndexes(ctx context.Context) ([]db.IndexSpec, error)  { return nil, nil }
func (c *fakeCollection) CreateIndex(ctx context.Context, spec db.IndexSpec) error { return nil }

func seedDocs(n int) []bson.D {
	docs := make([]bson.D, 0, n)
	for i := 0; i < n; i++ {
		docs = append(docs, bson.D{{Key: "_id", Value: i}, {Key: "name", Value: "user"}})
	}
	return docs
}

func Test_TargetBytesForBuckets(t *testing.T) {
	tests := []struct {
		name      string
		meanBytes int64
		want      int64
	}{
		{"tiny", 200, 12 * mib},
		{"just under 1KiB", kib - 1, 12 * mib},
		{"few KiB", 4 * kib, 8 * mib},
		{"tens of KiB", 50 * kib, 4 * mib},
		{"hundreds of KiB", 200 * kib, 2 * mib},
		{"huge", 600 * kib, 1 * mib},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, targetBytesFor(tt.meanBytes))
		})
	}
}

func Test_DocsPerBatchClampBounds(t *testing.T) {
	// mirrors spec.md S3: 200 byte docs, 12MiB bucket -> clamp to 10000
	target := targetBytesFor(200)
	docs := int(target / 200)
	if docs > maxDocsPerBatch {
		docs = maxDocsPerBatch
	}
	assert.Equal(t, maxDocsPerBatch, docs)

	// mirrors spec.md S4: 600KiB docs, 1MiB bucket -> clamp to 100
	target = targetBytesFor(600 * kib)
	docs = int(target / (600 * kib))
	if docs < minDocsPerBatch {
		docs = minDocsPerBatch
	}
	assert.Equal(t, minDocsPerBatch, docs)
}

func Test_DecideNonAdaptiveReturnsFixedSize(t *testing.T) {
	dec, err := Decide(nil, nil, false, 500, 0, Random)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(500, dec.DocsPerBatch)
}

func Test_DecideNonAdaptiveDefaultsWhenUnset(t *testing.T) {
	dec, err := Decide(nil, nil, false, 0, 0, Random)
	assert := assert.New(t)
	assert.NoError(err)
	assert.Equal(minDocsPerBatch, dec.DocsPerBatch)
}

func Test_DecideAdaptiveFirstNSamplesSuccessfully(t *testing.T) {
	col := &fakeCollection{docs: seedDocs(10)}
	dec, err := Decide(context.Background(), col, true, 0, 0, FirstN)
	require.NoError(t, err)
	assert.Greater(t, dec.DocsPerBatch, 0)
	assert.Greater(t, dec.MeanDocBytes, int64(0))
}

func Test_DecideAdaptiveRandomSamplesSuccessfully(t *testing.T) {
	col := &fakeCollection{docs: seedDocs(10)}
	dec, err := Decide(context.Background(), col, true, 0, 0, Random)
	require.NoError(t, err)
	assert.Greater(t, dec.DocsPerBatch, 0)
	assert.Greater(t, dec.MeanDocBytes, int64(0))
}

func Test_DecideAdaptiveEmptyCollectionFallsBackToFixedSize(t *testing.T) {
	col := &fakeCollection{}
	dec, err := Decide(context.Background(), col, true, 250, 0, FirstN)
	require.NoError(t, err)
	assert.Equal(t, 250, dec.DocsPerBatch)
}
