// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepData() ([][]float64, []float64) {
	var x [][]float64
	var y []float64
	for i := 0; i < 20; i++ {
		x = append(x, []float64{float64(i), 1})
		if i < 10 {
			y = append(y, 1)
		} else {
			y = append(y, 5)
		}
	}
	return x, y
}

func TestTreeFitsStep(t *testing.T) {
	t.Parallel()

	x, y := stepData()
	all := make([]int, len(x))
	for i := range all {
		all[i] = i
	}
	tree := growTree(x, y, all, treeParams{maxDepth: 3})

	assert.InDelta(t, 1.0, tree.Predict([]float64{2, 1}), 1e-12)
	assert.InDelta(t, 5.0, tree.Predict([]float64{15, 1}), 1e-12)
	assert.Equal(t, 0, tree.Nodes[0].Feature, "constant column is never split on")
	assert.InDelta(t, 9.5, tree.Nodes[0].Threshold, 1e-12)
	assert.Len(t, tree.Nodes, 3, "pure children are not split further")
}

func TestTreeDepthZeroIsMean(t *testing.T) {
	t.Parallel()

	x, y := stepData()
	tree := growTree(x, y, []int{0, 19}, treeParams{maxDepth: 0})
	require.Len(t, tree.Nodes, 1)
	assert.InDelta(t, 3.0, tree.Predict([]float64{0, 0}), 1e-12)
}

func TestForestDeterministicAcrossWorkers(t *testing.T) {
	t.Parallel()

	x, y := stepData()
	ctx := context.Background()

	one, err := FitForest(ctx, x, y, ForestConfig{Trees: 12, MaxDepth: 4, Workers: 1}, 99)
	require.NoError(t, err)
	many, err := FitForest(ctx, x, y, ForestConfig{Trees: 12, MaxDepth: 4, Workers: 5}, 99)
	require.NoError(t, err)

	assert.Equal(t, one, many)
	assert.InDelta(t, 1.0, one.Predict([]float64{0, 1}), 1.0)
	assert.InDelta(t, 5.0, one.Predict([]float64{19, 1}), 1.0)
}

func TestForestCancelled(t *testing.T) {
	t.Parallel()

	x, y := stepData()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := FitForest(ctx, x, y, ForestConfig{Trees: 4, MaxDepth: 2}, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBoosterSeparable(t *testing.T) {
	t.Parallel()

	var x [][]float64
	var labels []string
	for i := 0; i < 30; i++ {
		x = append(x, []float64{float64(i)})
		switch {
		case i < 10:
			labels = append(labels, TrendDown)
		case i < 20:
			labels = append(labels, TrendStable)
		default:
			labels = append(labels, TrendUp)
		}
	}

	b, err := FitBooster(context.Background(), x, labels, BoostingConfig{Stages: 30, MaxDepth: 3, LearningRate: 0.3})
	require.NoError(t, err)
	assert.Equal(t, []string{TrendDown, TrendStable, TrendUp}, b.Classes)

	for _, tc := range []struct {
		x    float64
		want string
	}{{2, TrendDown}, {15, TrendStable}, {27, TrendUp}} {
		label, conf, dist := b.Predict([]float64{tc.x})
		assert.Equal(t, tc.want, label)
		assert.Greater(t, conf, 0.5)

		var sum float64
		for _, p := range dist {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
	}
}

func TestBoosterSingleClass(t *testing.T) {
	t.Parallel()

	b, err := FitBooster(context.Background(), [][]float64{{1}, {2}}, []string{TrendStable, TrendStable}, BoostingConfig{})
	require.NoError(t, err)

	label, conf, dist := b.Predict([]float64{3})
	assert.Equal(t, TrendStable, label)
	assert.InDelta(t, 1.0, conf, 1e-12)
	assert.Len(t, dist, 1)
	assert.Empty(t, b.Stages)
}

func TestTrainEmptyDataset(t *testing.T) {
	t.Parallel()

	m, err := Train(context.Background(), Dataset{}, DefaultConfig(), 1, zerolog.Nop())
	require.NoError(t, err)
	assert.False(t, m.Fitted())
	assert.Zero(t, m.Rows)
}
