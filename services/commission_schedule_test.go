package services_test

import (
	"testing"

	"github.com/RKapadia01/shopezy_backend/services"
)

func TestDefaultScheduleRates(t *testing.T) {
	s := services.DefaultCommissionSchedule()

	tests := []struct {
		level int
		want  float64
	}{
		{1, 0.10},
		{2, 0.08},
		{3, 0.06},
		{4, 0.05},
		{5, 0.04},
		{6, 0.03},
		{10, 0.03},
		{11, 0.01},
		{30, 0.01},
		{31, 0.005},
		{60, 0.005},
		{61, 0.002},
		{100, 0.002},
		{101, 0},
		{0, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		if got := s.Rate(tt.level); got != tt.want {
			t.Errorf("Rate(%d) = %v, want %v", tt.level, got, tt.want)
		}
	}
}

func TestDefaultScheduleCoversExactlyHundredLevels(t *testing.T) {
	s := services.DefaultCommissionSchedule()
	if len(s) != 100 {
		t.Fatalf("schedule has %d levels, want 100", len(s))
	}
	for level := 1; level <= 100; level++ {
		if s.Rate(level) <= 0 {
			t.Errorf("level %d has no positive rate", level)
		}
	}
}

func TestDefaultCommissionConfig(t *testing.T) {
	cfg := services.DefaultCommissionConfig()
	if cfg.CompanyMarginShare != 0.50 {
		t.Errorf("CompanyMarginShare = %v, want 0.50", cfg.CompanyMarginShare)
	}
	if cfg.MinPayout != 0.10 {
		t.Errorf("MinPayout = %v, want 0.10", cfg.MinPayout)
	}
	if cfg.BalanceThreshold != 10000 {
		t.Errorf("BalanceThreshold = %v, want 10000", cfg.BalanceThreshold)
	}
	if cfg.Schedule == nil {
		t.Error("Schedule is nil")
	}
}
