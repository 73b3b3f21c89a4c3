// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
)

// BoostingConfig controls the trend classifier.
type BoostingConfig struct {
	// Stages is the number of boosting rounds.
	Stages int

	// MaxDepth bounds each per-class tree.
	MaxDepth int

	// LearningRate shrinks each stage's contribution.
	LearningRate float64
}

// Booster is a multinomial gradient boosted tree classifier.
type Booster struct {
	// Classes are the labels seen in training, sorted.
	Classes []string

	// Prior is the initial log-odds per class.
	Prior []float64

	LearningRate float64

	// Stages[m][k] is the tree for class k at round m.
	Stages [][]Tree
}

// FitBooster trains on standardized rows and string labels.
func FitBooster(ctx context.Context, x [][]float64, labels []string, cfg BoostingConfig) (*Booster, error) {
	if len(x) == 0 || len(x) != len(labels) {
		return nil, errors.New("fit booster: empty or mismatched training set")
	}
	if cfg.Stages <= 0 {
		cfg.Stages = 100
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = 0.1
	}

	classes := slices.Clone(labels)
	slices.Sort(classes)
	classes = slices.Compact(classes)
	k := len(classes)

	target := make([]int, len(labels))
	counts := make([]float64, k)
	for i, l := range labels {
		target[i], _ = slices.BinarySearch(classes, l)
		counts[target[i]]++
	}

	b := &Booster{Classes: classes, Prior: make([]float64, k), LearningRate: cfg.LearningRate}
	for c := range counts {
		b.Prior[c] = math.Log(counts[c] / float64(len(labels)))
	}
	if k == 1 {
		return b, nil
	}

	n := len(x)
	raw := make([][]float64, n)
	for i := range raw {
		raw[i] = slices.Clone(b.Prior)
	}

	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	params := treeParams{maxDepth: cfg.MaxDepth}
	residual := make([]float64, n)
	prob := make([][]float64, n)

	for m := 0; m < cfg.Stages; m++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fit booster stage %d: %w", m, err)
		}
		for i := range raw {
			prob[i] = softmax(raw[i])
		}

		stage := make([]Tree, k)
		for c := 0; c < k; c++ {
			for i := range residual {
				yi := 0.0
				if target[i] == c {
					yi = 1
				}
				residual[i] = yi - prob[i][c]
			}

			tree := growTree(x, residual, all, params)
			newtonLeaves(&tree, x, residual, k)
			for i := range raw {
				raw[i][c] += b.LearningRate * tree.Predict(x[i])
			}
			stage[c] = tree
		}
		b.Stages = append(b.Stages, stage)
	}
	return b, nil
}

// newtonLeaves replaces each leaf's mean residual with a one-step Newton
// estimate for the multinomial deviance.
func newtonLeaves(t *Tree, x [][]float64, residual []float64, k int) {
	num := make(map[int]float64)
	den := make(map[int]float64)
	for i := range x {
		leaf := t.leaf(x[i])
		r := residual[i]
		num[leaf] += r
		den[leaf] += math.Abs(r) * (1 - math.Abs(r))
	}
	scale := float64(k-1) / float64(k)
	for leaf := range num {
		v := 0.0
		if den[leaf] > 1e-150 {
			v = scale * num[leaf] / den[leaf]
		}
		t.Nodes[leaf].Value = v
	}
}

// PredictProba returns class probabilities aligned with Classes.
func (b *Booster) PredictProba(x []float64) []float64 {
	raw := slices.Clone(b.Prior)
	for _, stage := range b.Stages {
		for c := range stage {
			raw[c] += b.LearningRate * stage[c].Predict(x)
		}
	}
	return softmax(raw)
}

// Predict returns the most probable class, its probability, and the full
// distribution keyed by label.
func (b *Booster) Predict(x []float64) (string, float64, map[string]float64) {
	proba := b.PredictProba(x)
	dist := make(map[string]float64, len(proba))
	best := 0
	for c, p := range proba {
		dist[b.Classes[c]] = p
		if p > proba[best] {
			best = c
		}
	}
	return b.Classes[best], proba[best], dist
}

func softmax(raw []float64) []float64 {
	out := make([]float64, len(raw))
	peak := slices.Max(raw)
	var sum float64
	for i, v := range raw {
		out[i] = math.Exp(v - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
