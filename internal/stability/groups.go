// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package stability

import (
	"fmt"
	"slices"
	"sort"

	"github.com/tomtom215/featstab/internal/models"
)

// group is one result group, specialized by its encoding.
type group interface {
	key() models.GroupKey
	resultType() models.ResultType
	executions() int
	evaluate(evaluateAt []int, allFeatures bool) []models.StabilityRecord
}

type groupBase struct {
	k           models.GroupKey
	numFeatures int
	m           int
}

func (g *groupBase) key() models.GroupKey { return g.k }
func (g *groupBase) executions() int      { return g.m }

func (g *groupBase) row(selected int, values models.MetricValues) models.StabilityRecord {
	return models.StabilityRecord{
		Name:       g.k.Name,
		Dataset:    g.k.Dataset,
		Feats:      g.numFeatures,
		Selected:   selected,
		Executions: g.m,
		Metrics:    values,
	}
}

// subsetGroup compares the whole recorded subsets at the declared size.
type subsetGroup struct {
	groupBase
	sets [][]int
}

func (g *subsetGroup) resultType() models.ResultType { return models.ResultSubset }

func (g *subsetGroup) evaluate(_ []int, _ bool) []models.StabilityRecord {
	return []models.StabilityRecord{g.row(g.k.NumSelected, ForSets(g.sets, g.numFeatures))}
}

// rankGroup compares ranks truncated at each cutoff.
type rankGroup struct {
	groupBase
	ranks [][]int
}

func (g *rankGroup) resultType() models.ResultType { return models.ResultRank }

func (g *rankGroup) evaluate(evaluateAt []int, allFeatures bool) []models.StabilityRecord {
	cutoffs := Cutoffs(evaluateAt, g.k.NumSelected, g.numFeatures, allFeatures)
	rows := make([]models.StabilityRecord, 0, len(cutoffs))
	for _, k := range cutoffs {
		rows = append(rows, g.row(k, ForRanks(truncate(g.ranks, k), g.numFeatures)))
	}
	return rows
}

// weightsGroup carries the ranks derived from its weights once, at
// construction.
type weightsGroup struct {
	rankGroup
	weights [][]float64
}

func (g *weightsGroup) resultType() models.ResultType { return models.ResultWeights }

func (g *weightsGroup) evaluate(evaluateAt []int, allFeatures bool) []models.StabilityRecord {
	cutoffs := Cutoffs(evaluateAt, g.k.NumSelected, g.numFeatures, allFeatures)
	rows := make([]models.StabilityRecord, 0, len(cutoffs))
	for _, k := range cutoffs {
		values := ForRanks(truncate(g.ranks, k), g.numFeatures)
		// Weight-based canberra replaces the rank-based one
		values.Merge(ForWeights(g.weightsAt(k)))
		rows = append(rows, g.row(k, values))
	}
	return rows
}

// weightsAt zeroes all but the top-k weights of each execution, or returns
// the full vectors when k covers every feature.
func (g *weightsGroup) weightsAt(k int) [][]float64 {
	if k == g.numFeatures {
		return g.weights
	}
	out := make([][]float64, len(g.weights))
	for i, w := range g.weights {
		out[i] = keepRanked(w, g.ranks[i], k)
	}
	return out
}

// newGroup builds the variant for records sharing key. All records must
// share a result type and feature count.
func newGroup(key models.GroupKey, records []models.Record) (group, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: group %s has no records", models.ErrEmptyResult, key)
	}

	first := &records[0]
	for i := range records[1:] {
		rec := &records[i+1]
		if rec.ResultType != first.ResultType {
			return nil, fmt.Errorf("%w: group %s mixes result types %s and %s",
				models.ErrInvalidArgument, key, first.ResultType, rec.ResultType)
		}
		if rec.NumFeatures != first.NumFeatures {
			return nil, fmt.Errorf("%w: group %s mixes feature counts %d and %d",
				models.ErrInvalidArgument, key, first.NumFeatures, rec.NumFeatures)
		}
	}

	base := groupBase{k: key, numFeatures: first.NumFeatures, m: len(records)}
	indices := func() [][]int {
		out := make([][]int, len(records))
		for i := range records {
			out[i] = records[i].Indices
		}
		return out
	}

	switch first.ResultType {
	case models.ResultSubset:
		return &subsetGroup{groupBase: base, sets: indices()}, nil
	case models.ResultRank:
		return &rankGroup{groupBase: base, ranks: indices()}, nil
	case models.ResultWeights:
		g := &weightsGroup{rankGroup: rankGroup{groupBase: base}}
		g.weights = make([][]float64, len(records))
		g.ranks = make([][]int, len(records))
		for i := range records {
			g.weights[i] = records[i].Weights
			g.ranks[i] = RankFromWeights(records[i].Weights)
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: group %s has result_type %q", models.ErrInvalidArgument, key, first.ResultType)
	}
}

// Cutoffs returns the elements of evaluateAt not above numSelected, in
// their given order. With allFeatures, numSelected itself is appended when
// it equals numFeatures and is not already present.
func Cutoffs(evaluateAt []int, numSelected, numFeatures int, allFeatures bool) []int {
	cutoffs := make([]int, 0, len(evaluateAt)+1)
	for _, k := range evaluateAt {
		if k <= numSelected {
			cutoffs = append(cutoffs, k)
		}
	}
	if allFeatures && numSelected == numFeatures && !slices.Contains(cutoffs, numSelected) {
		cutoffs = append(cutoffs, numSelected)
	}
	return cutoffs
}

// truncate keeps the first k entries of every rank.
func truncate(ranks [][]int, k int) [][]int {
	out := make([][]int, len(ranks))
	for i, r := range ranks {
		out[i] = r[:min(k, len(r))]
	}
	return out
}

// partition splits records into groups in sorted key order.
func partition(records []models.Record) ([]group, error) {
	byKey := make(map[models.GroupKey][]models.Record)
	for i := range records {
		key := records[i].Key()
		byKey[key] = append(byKey[key], records[i])
	}

	keys := make([]models.GroupKey, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	groups := make([]group, 0, len(keys))
	for _, key := range keys {
		g, err := newGroup(key, byKey[key])
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}
