// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package stability

import (
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/featstab/internal/models"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func TestSetMeasures(t *testing.T) {
	tests := []struct {
		name     string
		sets     [][]int
		n        int
		jaccard  float64
		hamming  float64
		dice     float64
		kuncheva float64
	}{
		{
			name:    "identical",
			sets:    [][]int{{0, 1, 2}, {2, 1, 0}, {0, 1, 2}},
			n:       10,
			jaccard: 1, hamming: 0, dice: 1, kuncheva: 1,
		},
		{
			name:    "disjoint",
			sets:    [][]int{{0, 1}, {2, 3}},
			n:       4,
			jaccard: 0, hamming: 1, dice: 0, kuncheva: -1,
		},
		{
			name:    "half overlap",
			sets:    [][]int{{0, 1}, {0, 2}},
			n:       4,
			jaccard: 1.0 / 3, hamming: 0.5, dice: 0.5, kuncheva: 0,
		},
		{
			name:    "single execution",
			sets:    [][]int{{4}},
			n:       5,
			jaccard: 1, hamming: 0, dice: 1, kuncheva: 1,
		},
		{
			name:    "two empty sets",
			sets:    [][]int{{}, {}},
			n:       5,
			jaccard: 1, hamming: 0, dice: 1, kuncheva: 1,
		},
		{
			name:    "every feature selected",
			sets:    [][]int{{0, 1}, {1, 0}},
			n:       2,
			jaccard: 1, hamming: 0, dice: 1, kuncheva: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForSets(tt.sets, tt.n)
			want := models.MetricValues{
				models.MetricJaccard:  tt.jaccard,
				models.MetricHamming:  tt.hamming,
				models.MetricDice:     tt.dice,
				models.MetricKuncheva: tt.kuncheva,
			}
			if len(got) != len(want) {
				t.Fatalf("ForSets() = %v, want exactly %v", got, want)
			}
			for m, w := range want {
				if !near(got[m], w) {
					t.Errorf("%s = %v, want %v", m, got[m], w)
				}
			}
		})
	}
}

func TestKuncheva_Bounded(t *testing.T) {
	sets := [][]int{{0, 1, 2, 3, 4}, {5, 6, 7, 8, 9}, {0, 5, 1, 6, 2}}
	for n := 10; n <= 40; n += 10 {
		got := Kuncheva(sets, n)
		if got < -1 || got > 1 {
			t.Errorf("Kuncheva(n=%d) = %v, want within [-1, 1]", n, got)
		}
	}
}

func TestForRanks(t *testing.T) {
	identical := ForRanks([][]int{{3, 1}, {3, 1}}, 5)
	if !near(identical[models.MetricCanberra], 0) || !near(identical[models.MetricSpearman], 1) {
		t.Errorf("identical ranks canberra/spearman = %v/%v, want 0/1",
			identical[models.MetricCanberra], identical[models.MetricSpearman])
	}
	if _, ok := identical[models.MetricPearson]; ok {
		t.Error("ForRanks() should not compute pearson")
	}

	reversed := ForRanks([][]int{{0, 1, 2}, {2, 1, 0}}, 3)
	if !near(reversed[models.MetricSpearman], -1) {
		t.Errorf("reversed spearman = %v, want -1", reversed[models.MetricSpearman])
	}
	// positions [1,2,3] vs [3,2,1]: 2/4 + 0 + 2/4
	if !near(reversed[models.MetricCanberra], 1) {
		t.Errorf("reversed canberra = %v, want 1", reversed[models.MetricCanberra])
	}
}

func TestPositionVector(t *testing.T) {
	got := PositionVector([]int{3, 0}, 5)
	want := []float64{2, 3, 3, 1, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PositionVector() = %v, want %v", got, want)
	}
}

func TestPearson(t *testing.T) {
	tests := []struct {
		name    string
		vectors [][]float64
		want    float64
	}{
		{"perfect", [][]float64{{1, 2, 3}, {2, 4, 6}}, 1},
		{"inverse", [][]float64{{1, 2, 3}, {3, 2, 1}}, -1},
		{"constant equal", [][]float64{{1, 1}, {1, 1}}, 1},
		{"constant different", [][]float64{{1, 1}, {2, 2}}, 0},
		{"single", [][]float64{{0.3, 0.1}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pearson(tt.vectors); !near(got, tt.want) {
				t.Errorf("Pearson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanberra(t *testing.T) {
	got := Canberra([][]float64{{1, 0, 2}, {3, 0, 2}})
	// |1-3|/4 + 0 (0/0) + 0
	if !near(got, 0.5) {
		t.Errorf("Canberra() = %v, want 0.5", got)
	}
	if got := Canberra([][]float64{{1, 2}}); got != 0 {
		t.Errorf("Canberra(single) = %v, want 0", got)
	}
}

func TestAverageRanks(t *testing.T) {
	got := averageRanks([]float64{3, 1, 3, 2})
	want := []float64{3.5, 1, 3.5, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("averageRanks() = %v, want %v", got, want)
	}
}

func TestRankFromWeights(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    []int
	}{
		// Both vectors share the top-2 set {0, 2}.
		{"distinct", []float64{0.9, 0.1, 0.8, 0.2, 0.05}, []int{0, 2, 3, 1, 4}},
		{"shifted", []float64{0.85, 0.15, 0.75, 0.25, 0.1}, []int{0, 2, 3, 1, 4}},
		{"ties by index", []float64{0.5, 0.9, 0.5, 0.1, 0.5}, []int{1, 0, 2, 4, 3}},
		{"negative", []float64{-1, 0, -0.5}, []int{1, 2, 0}},
		{"empty", []float64{}, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RankFromWeights(tt.weights); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RankFromWeights() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeepTopK(t *testing.T) {
	w := []float64{0.5, 0.9, 0.5, 0.1}

	got := KeepTopK(w, 2)
	if want := []float64{0.5, 0.9, 0, 0}; !reflect.DeepEqual(got, want) {
		t.Errorf("KeepTopK(2) = %v, want %v", got, want)
	}
	if got := KeepTopK(w, 10); !reflect.DeepEqual(got, w) {
		t.Errorf("KeepTopK(10) = %v, want %v", got, w)
	}
	if got := KeepTopK(w, 0); !reflect.DeepEqual(got, []float64{0, 0, 0, 0}) {
		t.Errorf("KeepTopK(0) = %v, want zeros", got)
	}
	if w[2] != 0.5 {
		t.Error("KeepTopK() modified its input")
	}
}

func TestCutoffs(t *testing.T) {
	tests := []struct {
		name        string
		evaluateAt  []int
		numSelected int
		numFeatures int
		all         bool
		want        []int
	}{
		{"above selection dropped", []int{5, 10}, 8, 8, false, []int{5}},
		{"all features appended", []int{5, 10}, 8, 8, true, []int{5, 8}},
		{"already present", []int{5, 8}, 8, 8, true, []int{5, 8}},
		{"partial selection not appended", []int{5, 10}, 8, 20, true, []int{5}},
		{"inclusive bound", []int{5, 10, 20}, 10, 30, false, []int{5, 10}},
		{"none apply", []int{50}, 8, 30, false, []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cutoffs(tt.evaluateAt, tt.numSelected, tt.numFeatures, tt.all)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Cutoffs() = %v, want %v", got, tt.want)
			}
		})
	}
}
