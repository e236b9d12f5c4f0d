// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/thejerf/suture/v4"
)

// JobService runs fn once under supervision.
type JobService struct {
	name string
	fn   func(ctx context.Context) error

	once sync.Once
	done chan error
}

// NewJobService creates a job named name.
func NewJobService(name string, fn func(ctx context.Context) error) *JobService {
	return &JobService{
		name: name,
		fn:   fn,
		done: make(chan error, 1),
	}
}

// Serve implements suture.Service. It always returns suture.ErrDoNotRestart
// so the supervisor removes the job once it has finished; a panic inside fn
// is reported as the job error.
func (j *JobService) Serve(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", j.name, r)
		}
		j.finish(err)
		err = suture.ErrDoNotRestart
	}()

	err = j.fn(ctx)
	return err
}

func (j *JobService) finish(err error) {
	j.once.Do(func() {
		j.done <- err
		close(j.done)
	})
}

// Done receives the job result once, then is closed.
func (j *JobService) Done() <-chan error {
	return j.done
}

// String implements fmt.Stringer.
func (j *JobService) String() string {
	return j.name
}
