// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package workpool

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestMap_Order(t *testing.T) {
	items := []int{5, 4, 3, 2, 1, 0}
	square := func(_ context.Context, v int) (int, error) {
		// Later items finish first
		time.Sleep(time.Duration(v) * time.Millisecond)
		return v * v, nil
	}

	for _, workers := range []int{0, 1, 2, 8} {
		got, err := Map(context.Background(), workers, items, square)
		if err != nil {
			t.Fatalf("Map(workers=%d) error: %v", workers, err)
		}
		want := []int{25, 16, 9, 4, 1, 0}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("Map(workers=%d) = %v, want %v", workers, got, want)
		}
	}
}

func TestMap_Limit(t *testing.T) {
	var running, peak atomic.Int32
	items := make([]int, 20)

	_, err := Map(context.Background(), 3, items, func(_ context.Context, _ int) (struct{}, error) {
		n := running.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		running.Add(-1)
		return struct{}{}, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if p := peak.Load(); p > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", p)
	}
}

func TestMap_Error(t *testing.T) {
	errBoom := errors.New("boom")
	items := []int{0, 1, 2, 3}

	for _, workers := range []int{1, 4} {
		got, err := Map(context.Background(), workers, items, func(_ context.Context, v int) (int, error) {
			if v == 2 {
				return 0, errBoom
			}
			return v, nil
		})
		if !errors.Is(err, errBoom) {
			t.Errorf("Map(workers=%d) error = %v, want boom", workers, err)
		}
		if got != nil {
			t.Errorf("Map(workers=%d) partial results = %v, want nil", workers, got)
		}
	}
}

func TestMap_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	_, err := Map(ctx, 1, []int{1, 2}, func(_ context.Context, v int) (int, error) {
		calls.Add(1)
		return v, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Map() error = %v, want context.Canceled", err)
	}
	if calls.Load() != 0 {
		t.Errorf("fn called %d times after cancellation", calls.Load())
	}
}

func TestMap_Empty(t *testing.T) {
	got, err := Map(context.Background(), 4, []string(nil), func(_ context.Context, s string) (int, error) {
		return len(s), nil
	})
	if err != nil || len(got) != 0 {
		t.Errorf("Map(empty) = %v, %v", got, err)
	}
}
