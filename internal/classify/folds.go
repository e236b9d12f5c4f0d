// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package classify

import (
	"fmt"

	"github.com/tomtom215/featstab/internal/models"
)

// StratifiedFolds splits sample indices into k test folds that preserve
// class proportions. Samples of each class are dealt to the folds in order,
// continuing where the previous class stopped, so fold sizes differ by at
// most one. sparse lists the classes with fewer members than folds.
func StratifiedFolds(y []int, numClasses, k int) (folds [][]int, sparse []int, err error) {
	if k < 2 {
		return nil, nil, fmt.Errorf("%w: %d folds, need at least 2", models.ErrInvalidArgument, k)
	}
	if len(y) < k {
		return nil, nil, fmt.Errorf("%w: %d samples cannot be split into %d folds", models.ErrInvalidArgument, len(y), k)
	}

	byClass := make([][]int, numClasses)
	for i, label := range y {
		byClass[label] = append(byClass[label], i)
	}

	folds = make([][]int, k)
	next := 0
	for c, members := range byClass {
		if len(members) > 0 && len(members) < k {
			sparse = append(sparse, c)
		}
		for _, i := range members {
			folds[next] = append(folds[next], i)
			next = (next + 1) % k
		}
	}
	return folds, sparse, nil
}

// split gathers the training rows of every fold except test.
func split(X [][]float64, y []int, folds [][]int, test int) (trainX [][]float64, trainY []int, testX [][]float64, testY []int) {
	for f, members := range folds {
		for _, i := range members {
			if f == test {
				testX = append(testX, X[i])
				testY = append(testY, y[i])
			} else {
				trainX = append(trainX, X[i])
				trainY = append(trainY, y[i])
			}
		}
	}
	return trainX, trainY, testX, testY
}
