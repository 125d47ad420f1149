package scheduler

import (
	"testing"

	"github.com/cybernetics669/nadlan-website/internal/config"
)

func TestParseDailyRunTime(t *testing.T) {
	s := NewScheduler(nil, &config.SweepConfig{})

	tests := []struct {
		input string
		want  string
	}{
		{"03:00", "0 3 * * *"},
		{"04:30", "30 4 * * *"},
		{"23:59", "59 23 * * *"},
		{"0:05", "5 0 * * *"},
		{"invalid", "0 3 * * *"},
		{"", "0 3 * * *"},
	}
	for _, tt := range tests {
		if got := s.parseDailyRunTime(tt.input); got != tt.want {
			t.Errorf("parseDailyRunTime(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStartDisabled(t *testing.T) {
	s := NewScheduler(nil, &config.SweepConfig{Enabled: false})
	if err := s.Start(); err != nil {
		t.Fatalf("disabled scheduler must start cleanly: %v", err)
	}
	if s.isRunning {
		t.Error("disabled scheduler must not run")
	}
	s.Stop()
}
