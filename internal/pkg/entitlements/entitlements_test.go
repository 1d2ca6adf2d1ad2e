package entitlements

import "testing"

var gatedFeatures = []Feature{
	FeatureReminders,
	FeatureExport,
	FeatureWorkspaces,
	FeatureTeams,
	FeatureUnlimitedTasks,
	FeatureMultipleProjects,
}

func TestCanUseFeaturePremium(t *testing.T) {
	for _, f := range gatedFeatures {
		if !CanUseFeature(PlanPremium, f) {
			t.Fatalf("expected premium to grant %q", f)
		}
	}
	if !CanUseFeature(PlanPremium, Feature("some_future_feature")) {
		t.Fatalf("expected premium to grant unknown features")
	}
}

func TestCanUseFeatureFree(t *testing.T) {
	for _, f := range gatedFeatures {
		if CanUseFeature(PlanFree, f) {
			t.Fatalf("expected free to deny %q", f)
		}
	}
	// Unrecognized features are allowed by default (fail-open policy).
	for _, f := range []Feature{"subtasks", "dark_mode", "some_future_feature"} {
		if !CanUseFeature(PlanFree, f) {
			t.Fatalf("expected free to allow ungated feature %q", f)
		}
	}
}

func TestCheckLimitPremiumUnlimited(t *testing.T) {
	for _, count := range []int64{0, 19, 20, 10000, 1 << 40} {
		for _, resource := range []Resource{ResourceTasks, ResourceProjects} {
			if res := CheckLimit(PlanPremium, resource, count); !res.OK {
				t.Fatalf("CheckLimit(premium, %s, %d) denied: %s", resource, count, res.Reason)
			}
		}
	}
}

func TestCheckLimitFreeTasks(t *testing.T) {
	for _, count := range []int64{0, 1, 10, 19} {
		if res := CheckLimit(PlanFree, ResourceTasks, count); !res.OK {
			t.Fatalf("expected %d tasks to be under the free cap", count)
		}
	}
	for _, count := range []int64{20, 21, 100, 10000} {
		res := CheckLimit(PlanFree, ResourceTasks, count)
		if res.OK {
			t.Fatalf("expected %d tasks to exceed the free cap", count)
		}
		if res.Reason == "" {
			t.Fatalf("expected a human-readable denial reason")
		}
	}
}

func TestCheckLimitFreeProjects(t *testing.T) {
	if res := CheckLimit(PlanFree, ResourceProjects, 0); !res.OK {
		t.Fatalf("expected first project to be allowed on free plan")
	}
	for _, count := range []int64{1, 2, 50} {
		res := CheckLimit(PlanFree, ResourceProjects, count)
		if res.OK {
			t.Fatalf("expected %d projects to exceed the free cap", count)
		}
		if res.Reason == "" {
			t.Fatalf("expected a human-readable denial reason")
		}
	}
}

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want Plan
	}{
		{in: "free", want: PlanFree},
		{in: "premium", want: PlanPremium},
		{in: "PREMIUM", want: PlanPremium},
		{in: " premium ", want: PlanPremium},
		{in: "", want: PlanFree},
		{in: "enterprise", want: PlanFree},
	}

	for _, tt := range tests {
		if got := NormalizePlan(tt.in); got != tt.want {
			t.Fatalf("NormalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
