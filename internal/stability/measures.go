// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package stability

import (
	"math"
	"sort"

	"github.com/tomtom215/featstab/internal/models"
)

// Pairwise measures are averaged over every unordered pair of executions.
// With fewer than two executions there are no pairs and each measure returns
// its identity value: 1 for similarities and correlations, 0 for distances.

// Jaccard returns the mean pairwise |A ∩ B| / |A ∪ B| of sets. Two empty
// sets are identical.
func Jaccard(sets [][]int) float64 {
	bits := membership(sets)
	return meanPairs(len(sets), 1, func(i, j int) float64 {
		inter, union := overlap(bits[i], bits[j])
		if union == 0 {
			return 1
		}
		return float64(inter) / float64(union)
	})
}

// Dice returns the mean pairwise 2|A ∩ B| / (|A| + |B|) of sets.
func Dice(sets [][]int) float64 {
	bits := membership(sets)
	return meanPairs(len(sets), 1, func(i, j int) float64 {
		inter, _ := overlap(bits[i], bits[j])
		size := len(bits[i]) + len(bits[j])
		if size == 0 {
			return 1
		}
		return 2 * float64(inter) / float64(size)
	})
}

// Hamming returns the mean pairwise Hamming distance between the length-n
// membership vectors of sets, divided by n.
func Hamming(sets [][]int, n int) float64 {
	if n <= 0 {
		return 0
	}
	bits := membership(sets)
	return meanPairs(len(sets), 0, func(i, j int) float64 {
		inter, union := overlap(bits[i], bits[j])
		return float64(union-inter) / float64(n)
	})
}

// Kuncheva returns the mean pairwise Kuncheva consistency index
// (r·n − k²) / (k·(n − k)), where r is the overlap of a pair and k the
// selection size. Pairs of unequal size use their mean size. When k is 0 or
// k ≥ n the index is undefined and the pair scores 1. Values are clamped to
// [-1, 1].
func Kuncheva(sets [][]int, n int) float64 {
	bits := membership(sets)
	fn := float64(n)
	return meanPairs(len(sets), 1, func(i, j int) float64 {
		inter, _ := overlap(bits[i], bits[j])
		k := float64(len(bits[i])+len(bits[j])) / 2
		if k == 0 || k >= fn {
			return 1
		}
		index := (float64(inter)*fn - k*k) / (k * (fn - k))
		return math.Max(-1, math.Min(1, index))
	})
}

// Canberra returns the mean pairwise Canberra distance
// Σ |a_i − b_i| / (|a_i| + |b_i|) between vectors. Terms where both
// components are zero contribute nothing.
func Canberra(vectors [][]float64) float64 {
	return meanPairs(len(vectors), 0, func(i, j int) float64 {
		a, b := vectors[i], vectors[j]
		var sum float64
		for p := 0; p < len(a) && p < len(b); p++ {
			den := math.Abs(a[p]) + math.Abs(b[p])
			if den == 0 {
				continue
			}
			sum += math.Abs(a[p]-b[p]) / den
		}
		return sum
	})
}

// Spearman returns the mean pairwise Spearman rank correlation between
// vectors: the Pearson correlation of their average-rank transforms.
func Spearman(vectors [][]float64) float64 {
	ranked := make([][]float64, len(vectors))
	for i, v := range vectors {
		ranked[i] = averageRanks(v)
	}
	return Pearson(ranked)
}

// Pearson returns the mean pairwise Pearson correlation between vectors. A
// pair with zero variance correlates 1 when the vectors are equal and 0
// otherwise.
func Pearson(vectors [][]float64) float64 {
	return meanPairs(len(vectors), 1, func(i, j int) float64 {
		return correlation(vectors[i], vectors[j])
	})
}

// ForSets computes the set measures for subset selections out of n features.
func ForSets(sets [][]int, n int) models.MetricValues {
	return models.MetricValues{
		models.MetricJaccard:  Jaccard(sets),
		models.MetricHamming:  Hamming(sets, n),
		models.MetricDice:     Dice(sets),
		models.MetricKuncheva: Kuncheva(sets, n),
	}
}

// ForRanks computes the set and rank measures for ranks already truncated
// to their first k entries. Canberra and Spearman compare the length-n
// position vectors of the truncated ranks.
func ForRanks(ranks [][]int, n int) models.MetricValues {
	values := ForSets(ranks, n)

	positions := make([][]float64, len(ranks))
	for i, r := range ranks {
		positions[i] = PositionVector(r, n)
	}
	values[models.MetricCanberra] = Canberra(positions)
	values[models.MetricSpearman] = Spearman(positions)
	return values
}

// ForWeights computes the weight-vector measures.
func ForWeights(weights [][]float64) models.MetricValues {
	return models.MetricValues{
		models.MetricCanberra: Canberra(weights),
		models.MetricPearson:  Pearson(weights),
	}
}

// PositionVector maps a truncated rank to a length-n vector holding the
// 1-based position of every ranked feature and len(rank)+1 for the others.
// Indices outside [0, n) are ignored.
func PositionVector(rank []int, n int) []float64 {
	v := make([]float64, n)
	unranked := float64(len(rank) + 1)
	for i := range v {
		v[i] = unranked
	}
	for pos, feature := range rank {
		if feature >= 0 && feature < n {
			v[feature] = float64(pos + 1)
		}
	}
	return v
}

// RankFromWeights orders feature indices by descending weight. Equal
// weights keep ascending index order.
func RankFromWeights(weights []float64) []int {
	rank := make([]int, len(weights))
	for i := range rank {
		rank[i] = i
	}
	sort.SliceStable(rank, func(a, b int) bool {
		return weights[rank[a]] > weights[rank[b]]
	})
	return rank
}

// KeepTopK returns a copy of weights in which every weight outside the
// top-k of RankFromWeights is zero.
func KeepTopK(weights []float64, k int) []float64 {
	return keepRanked(weights, RankFromWeights(weights), k)
}

func keepRanked(weights []float64, rank []int, k int) []float64 {
	out := make([]float64, len(weights))
	if k > len(rank) {
		k = len(rank)
	}
	for _, feature := range rank[:max(k, 0)] {
		out[feature] = weights[feature]
	}
	return out
}

// membership converts each selection to a set, dropping repeated indices.
func membership(sets [][]int) []map[int]struct{} {
	bits := make([]map[int]struct{}, len(sets))
	for i, s := range sets {
		m := make(map[int]struct{}, len(s))
		for _, f := range s {
			m[f] = struct{}{}
		}
		bits[i] = m
	}
	return bits
}

func overlap(a, b map[int]struct{}) (inter, union int) {
	for f := range a {
		if _, ok := b[f]; ok {
			inter++
		}
	}
	return inter, len(a) + len(b) - inter
}

func meanPairs(m int, identity float64, fn func(i, j int) float64) float64 {
	if m < 2 {
		return identity
	}
	var sum float64
	pairs := 0
	for i := 0; i < m; i++ {
		for j := i + 1; j < m; j++ {
			sum += fn(i, j)
			pairs++
		}
	}
	return sum / float64(pairs)
}

func correlation(a, b []float64) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 1
	}
	var meanA, meanB float64
	for i := 0; i < n; i++ {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= float64(n)
	meanB /= float64(n)

	var cov, varA, varB float64
	for i := 0; i < n; i++ {
		da, db := a[i]-meanA, b[i]-meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		if equal(a[:n], b[:n]) {
			return 1
		}
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func equal(a, b []float64) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// averageRanks assigns 1-based ranks in ascending value order; tied values
// share the mean of the positions they span.
func averageRanks(v []float64) []float64 {
	order := make([]int, len(v))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return v[order[a]] < v[order[b]] })

	ranks := make([]float64, len(v))
	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && v[order[end]] == v[order[start]] {
			end++
		}
		// Positions start+1..end averaged
		avg := float64(start+1+end) / 2
		for _, idx := range order[start:end] {
			ranks[idx] = avg
		}
		start = end
	}
	return ranks
}
