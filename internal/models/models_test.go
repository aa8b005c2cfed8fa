package models

import "testing"

func TestNormalizePlanType(t *testing.T) {
	cases := []struct {
		raw       string
		isPremium bool
		want      PlanType
	}{
		{"", false, PlanFree},
		{"", true, PlanPremium},
		{"free", true, PlanFree},
		{"standard", false, PlanStandard},
		{" Premium ", false, PlanPremium},
		{"gold", true, PlanFree},
	}
	for _, tc := range cases {
		if got := NormalizePlanType(tc.raw, tc.isPremium); got != tc.want {
			t.Fatalf("NormalizePlanType(%q, %v) = %q, want %q", tc.raw, tc.isPremium, got, tc.want)
		}
	}
}
