// Featstab - Feature Selection Evaluation and Stability Analysis
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/featstab

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/thejerf/suture/v4"
)

func TestJobService(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		fn      func(ctx context.Context) error
		wantErr string
	}{
		{"success", func(context.Context) error { return nil }, ""},
		{"failure", func(context.Context) error { return boom }, "boom"},
		{"panic", func(context.Context) error { panic("bad input") }, "evaluation panicked: bad input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := NewJobService("evaluation", tt.fn)

			if err := job.Serve(context.Background()); !errors.Is(err, suture.ErrDoNotRestart) {
				t.Errorf("Serve() error = %v, want ErrDoNotRestart", err)
			}

			err := <-job.Done()
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Done() = %v, want nil", err)
			case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
				t.Errorf("Done() = %v, want error containing %q", err, tt.wantErr)
			}

			// Done is closed after the single result.
			if _, ok := <-job.Done(); ok {
				t.Error("Done() delivered a second value")
			}
		})
	}
}

func TestJobService_String(t *testing.T) {
	if got := NewJobService("evaluation", nil).String(); got != "evaluation" {
		t.Errorf("String() = %q, want evaluation", got)
	}
}
