// Copyright © 2025-2026 Prabhjot Singh Sethi, All Rights reserved
// Author: Prabhjot Singh Sethi <prabhjot.sethi@gmail.com>

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func Test_DropTargetDefaultsTrue(t *testing.T) {
	var cfg ProcessorConfig
	assert.True(t, cfg.DropTargetOrDefault())
}

func Test_DropTargetExplicitFalse(t *testing.T) {
	cfg, err := NewBuilder(nil).DropTarget(false).Build()
	require.NoError(t, err)
	assert.False(t, cfg.DropTargetOrDefault())
}

func Test_BuilderAssemblesConfig(t *testing.T) {
	cfg, err := NewBuilder(nil).
		BatchSize(250).
		AdaptiveBatchSize(true).
		TargetBatchBytes(4 << 20).
		Query(bson.D{{Key: "active", Value: true}}).
		Sort(bson.D{{Key: "_id", Value: 1}}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.True(t, cfg.AdaptiveBatchSize)
	assert.EqualValues(t, 4<<20, cfg.TargetBatchBytesOrZero())
	assert.Equal(t, bson.D{{Key: "active", Value: true}}, cfg.Query)
}

func Test_BuilderSeedCopiesDefaults(t *testing.T) {
	seed := &ProcessorConfig{BatchSize: 1000, AdaptiveBatchSize: true}
	cfg, err := NewBuilder(seed).DropTarget(false).Build()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.True(t, cfg.AdaptiveBatchSize)
	assert.False(t, cfg.DropTargetOrDefault())
	// mutating the seed after Build must not reach into the built config
	seed.BatchSize = 1
	assert.Equal(t, 1000, cfg.BatchSize)
}

func Test_BuilderRejectsNegativeBatchSize(t *testing.T) {
	_, err := NewBuilder(nil).BatchSize(-1).Build()
	require.Error(t, err)
}

func Test_CloneIsIndependent(t *testing.T) {
	cfg := &ProcessorConfig{BatchSize: 10}
	clone := cfg.Clone()
	clone.BatchSize = 20
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, 20, clone.BatchSize)
}

func Test_StrategyString(t *testing.T) {
	assert.Equal(t, "mask", Mask.String())
	assert.Equal(t, "passthrough", Passthrough.String())
}
