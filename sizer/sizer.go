// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

// Package sizer picks documents-per-batch for a collection by sampling it
// once before data copy begins, trading a small upfront read for batches
// that fit a predictable byte budget regardless of how large the
// collection's documents happen to be.
package sizer

import (
	"context"
	"log"

	"github.com/dustin/go-humanize"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/go-core-stack/tuxedo/db"
	"github.com/go-core-stack/tuxedo/errors"
)

// SampleSize is the number of documents sampled to estimate mean document
// size, per spec.md §4.3.
const SampleSize = 100

const (
	minDocsPerBatch = 100
	maxDocsPerBatch = 10000
)

// bucket maps a mean document size to a target batch byte budget.
type bucket struct {
	maxMeanBytes int64 // exclusive upper bound; 0 means "no upper bound"
	targetBytes  int64
}

const (
	kib int64 = 1 << 10
	mib int64 = 1 << 20
)

var buckets = []bucket{
	{maxMeanBytes: 1 * kib, targetBytes: 12 * mib},
	{maxMeanBytes: 10 * kib, targetBytes: 8 * mib},
	{maxMeanBytes: 100 * kib, targetBytes: 4 * mib},
	{maxMeanBytes: 500 * kib, targetBytes: 2 * mib},
	{maxMeanBytes: 0, targetBytes: 1 * mib},
}

// targetBytesFor returns the default target batch byte budget for a mean
// document size of meanBytes, per the spec.md §4.3 bucket table.
func targetBytesFor(meanBytes int64) int64 {
	for _, b := range buckets {
		if b.maxMeanBytes == 0 || meanBytes < b.maxMeanBytes {
			return b.targetBytes
		}
	}
	return buckets[len(buckets)-1].targetBytes
}

// SampleMode selects how the source collection is sampled.
type SampleMode int

const (
	// Random draws a uniform random sample via $sample. This is the
	// default: sampling insertion order biases size estimates toward
	// however the collection happened to be populated.
	Random SampleMode = iota

	// FirstN reads the first N documents in natural order. Cheaper than
	// Random (no aggregation stage), at the cost of that same bias.
	FirstN
)

// Decision is the chosen batch dimensions for one collection, computed
// once before its data copy phase begins.
type Decision struct {
	DocsPerBatch int
	TargetBytes  int64
	MeanDocBytes int64
}

// Decide samples col and returns the batch dimensions to use for its copy.
// If fixedBatchSize is set (> 0) and adaptive is false, it is returned
// unchanged without touching the collection. If the sample comes back
// empty (empty collection, or sampling otherwise yields nothing),
// fixedBatchSize is used as a fallback, defaulting to minDocsPerBatch if
// that too is unset.
func Decide(ctx context.Context, col db.Collection, adaptive bool, fixedBatchSize int, targetBytesOverride int64, mode SampleMode) (*Decision, error) {
	if !adaptive {
		size := fixedBatchSize
		if size <= 0 {
			size = minDocsPerBatch
		}
		return &Decision{DocsPerBatch: size}, nil
	}

	meanBytes, sampled, err := sampleMeanSize(ctx, col, mode)
	if err != nil {
		return nil, errors.Cause(errors.Unavailable, "sampling failed for "+col.Name(), err)
	}

	if sampled == 0 || meanBytes == 0 {
		size := fixedBatchSize
		if size <= 0 {
			size = minDocsPerBatch
		}
		log.Printf("sizer: %s sample returned no documents, falling back to fixed batch size %d", col.Name(), size)
		return &Decision{DocsPerBatch: size}, nil
	}

	targetBytes := targetBytesOverride
	if targetBytes <= 0 {
		targetBytes = targetBytesFor(meanBytes)
	}

	docsPerBatch := int(targetBytes / meanBytes)
	if docsPerBatch < minDocsPerBatch {
		docsPerBatch = minDocsPerBatch
	}
	if docsPerBatch > maxDocsPerBatch {
		docsPerBatch = maxDocsPerBatch
	}

	log.Printf("sizer: %s mean doc size %s, target batch %s, docs/batch %d",
		col.Name(), humanize.Bytes(uint64(meanBytes)), humanize.Bytes(uint64(targetBytes)), docsPerBatch)

	return &Decision{
		DocsPerBatch: docsPerBatch,
		TargetBytes:  targetBytes,
		MeanDocBytes: meanBytes,
	}, nil
}

func sampleMeanSize(ctx context.Context, col db.Collection, mode SampleMode) (meanBytes int64, sampled int, err error) {
	var cur db.Cursor
	switch mode {
	case FirstN:
		cur, err = col.Find(ctx, bson.D{}, options.Find().SetLimit(SampleSize))
	default:
		cur, err = col.Sample(ctx, SampleSize)
	}
	if err != nil {
		return 0, 0, err
	}
	defer cur.Close(ctx)

	var total int64
	count := 0
	for count < SampleSize && cur.Next(ctx) {
		total += int64(len(cur.Current()))
		count++
	}
	if err := cur.Err(); err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	return total / int64(count), count, nil
}
