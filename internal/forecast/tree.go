// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"cmp"
	"math"
	"slices"
)

// leafFeature marks a Node as a leaf.
const leafFeature = -1

// Node is one split or leaf of a regression tree. Nodes are stored flat so
// a Tree encodes with gob as-is.
type Node struct {
	Feature   int
	Threshold float64
	Left      int
	Right     int
	Value     float64
}

// Tree is a CART regression tree. Rows with x[Feature] <= Threshold go left.
type Tree struct {
	Nodes []Node
}

// Predict returns the leaf value for x.
func (t *Tree) Predict(x []float64) float64 {
	return t.Nodes[t.leaf(x)].Value
}

func (t *Tree) leaf(x []float64) int {
	i := 0
	for t.Nodes[i].Feature != leafFeature {
		n := t.Nodes[i]
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return i
}

type treeParams struct {
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
}

type treeBuilder struct {
	x      [][]float64
	y      []float64
	params treeParams
	nodes  []Node
}

// growTree fits a variance-reduction tree on the given sample indices.
// Indices may repeat (bootstrap draws).
func growTree(x [][]float64, y []float64, samples []int, p treeParams) Tree {
	if p.minSamplesSplit < 2 {
		p.minSamplesSplit = 2
	}
	if p.minSamplesLeaf < 1 {
		p.minSamplesLeaf = 1
	}
	b := &treeBuilder{x: x, y: y, params: p}
	b.build(samples, 0)
	return Tree{Nodes: b.nodes}
}

func (b *treeBuilder) build(samples []int, depth int) int {
	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{Feature: leafFeature, Value: b.mean(samples)})

	if depth >= b.params.maxDepth || len(samples) < b.params.minSamplesSplit {
		return idx
	}
	feature, threshold, ok := b.bestSplit(samples)
	if !ok {
		return idx
	}

	var left, right []int
	for _, s := range samples {
		if b.x[s][feature] <= threshold {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[idx] = Node{Feature: feature, Threshold: threshold, Left: l, Right: r}
	return idx
}

func (b *treeBuilder) mean(samples []int) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += b.y[s]
	}
	return sum / float64(len(samples))
}

// bestSplit maximizes sumL^2/nL + sumR^2/nR, which is equivalent to
// minimizing the summed squared error of the two children.
func (b *treeBuilder) bestSplit(samples []int) (feature int, threshold float64, ok bool) {
	n := len(samples)
	var total float64
	for _, s := range samples {
		total += b.y[s]
	}
	base := total * total / float64(n)
	best := base + 1e-12*math.Max(1, math.Abs(base))

	sorted := slices.Clone(samples)
	minLeaf := b.params.minSamplesLeaf

	for f := range b.x[samples[0]] {
		slices.SortFunc(sorted, func(i, j int) int { return cmp.Compare(b.x[i][f], b.x[j][f]) })

		var leftSum float64
		for i := 0; i < n-1; i++ {
			leftSum += b.y[sorted[i]]
			lo, hi := b.x[sorted[i]][f], b.x[sorted[i+1]][f]
			if lo == hi {
				continue
			}
			nl := i + 1
			if nl < minLeaf || n-nl < minLeaf {
				continue
			}
			rightSum := total - leftSum
			gain := leftSum*leftSum/float64(nl) + rightSum*rightSum/float64(n-nl)
			if gain > best {
				best, feature, ok = gain, f, true
				threshold = lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
			}
		}
	}
	return feature, threshold, ok
}
