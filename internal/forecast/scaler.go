// Lumeris - Game Recommendation and DeFi Forecasting Engine
// Copyright 2026 Alexandr Fenrir (AlexandrFenrir)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/AlexandrFenrir/lumeris

package forecast

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"
)

// minStd is the floor below which a column is treated as constant.
const minStd = 1e-10

// Scaler standardizes columns to zero mean and unit variance using
// statistics fit once on the training rows.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// FitScaler computes per-column population mean and standard deviation.
// Constant columns get a std of 1 so they pass through centered.
func FitScaler(x [][]float64) (*Scaler, error) {
	if len(x) == 0 {
		return nil, errors.New("fit scaler: no rows")
	}
	cols := len(x[0])
	s := &Scaler{Means: make([]float64, cols), Stds: make([]float64, cols)}
	col := make([]float64, len(x))

	for j := 0; j < cols; j++ {
		for i, row := range x {
			if len(row) != cols {
				return nil, fmt.Errorf("fit scaler: row %d has %d columns, want %d", i, len(row), cols)
			}
			col[i] = row[j]
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std < minStd {
			std = 1
		}
		s.Means[j], s.Stds[j] = mean, std
	}
	return s, nil
}

// Transform returns a standardized copy of row.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Means[j]) / s.Stds[j]
	}
	return out
}

// TransformAll standardizes every row.
func (s *Scaler) TransformAll(x [][]float64) [][]float64 {
	out := make([][]float64, len(x))
	for i, row := range x {
		out[i] = s.Transform(row)
	}
	return out
}

// Dim is the number of columns the scaler was fit on.
func (s *Scaler) Dim() int { return len(s.Means) }
