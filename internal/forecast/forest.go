// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
)

// ForestConfig controls the price regression forest.
type ForestConfig struct {
	// Trees is the number of bootstrap trees.
	Trees int

	// MaxDepth bounds each tree.
	MaxDepth int

	// MinSamplesSplit is the smallest node that may be split.
	MinSamplesSplit int

	// Workers is the number of goroutines fitting trees.
	Workers int
}

// Forest is a bagged ensemble of regression trees.
type Forest struct {
	Trees []Tree
}

// FitForest trains cfg.Trees trees on bootstrap resamples of (x, y). Tree t
// draws from its own generator seeded by (seed, t), so the result does not
// depend on worker scheduling.
func FitForest(ctx context.Context, x [][]float64, y []float64, cfg ForestConfig, seed uint64) (*Forest, error) {
	if len(x) == 0 || len(x) != len(y) {
		return nil, errors.New("fit forest: empty or mismatched training set")
	}
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	params := treeParams{maxDepth: cfg.MaxDepth, minSamplesSplit: cfg.MinSamplesSplit}

	forest := &Forest{Trees: make([]Tree, cfg.Trees)}
	chunkSize := (cfg.Trees + cfg.Workers - 1) / cfg.Workers

	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, cfg.Trees)
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			samples := make([]int, len(x))
			for t := start; t < end; t++ {
				if ctx.Err() != nil {
					return
				}
				rng := rand.New(rand.NewPCG(seed, uint64(t)+1)) //nolint:gosec // model sampling, not security
				for i := range samples {
					samples[i] = rng.IntN(len(x))
				}
				forest.Trees[t] = growTree(x, y, samples, params)
			}
		}(start, end)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return forest, nil
}

// Predict averages the trees.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.Trees) == 0 {
		return 0
	}
	var sum float64
	for i := range f.Trees {
		sum += f.Trees[i].Predict(x)
	}
	return sum / float64(len(f.Trees))
}
