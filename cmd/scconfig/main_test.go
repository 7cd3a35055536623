package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jamesainslie/scconfig/pkg/scconfig/engine"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"pending changes", fmt.Errorf("%w: 2 of 5 entries", engine.ErrActionRequired), 2},
		{"failed entries", fmt.Errorf("%w: 1 of 5 entries", engine.ErrFailed), 1},
		{"other error", errors.New("boom"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	env := []string{"HOME=/root", "SCCONFIG_ROLE=CM", "PATH=/bin", "SCCONFIG_APPLY=true"}
	got := envOverrides(env)
	if len(got) != 2 || got[0] != "SCCONFIG_APPLY=true" || got[1] != "SCCONFIG_ROLE=CM" {
		t.Errorf("envOverrides() = %v", got)
	}
}
