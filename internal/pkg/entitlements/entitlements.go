package entitlements

import "strings"

type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

type Feature string

const (
	FeatureReminders        Feature = "reminders"
	FeatureExport           Feature = "export"
	FeatureWorkspaces       Feature = "workspaces"
	FeatureTeams            Feature = "teams"
	FeatureUnlimitedTasks   Feature = "unlimited_tasks"
	FeatureMultipleProjects Feature = "multiple_projects"
)

type Resource string

const (
	ResourceTasks    Resource = "tasks"
	ResourceProjects Resource = "projects"
)

// Free tier caps. The comparison in CheckLimit is against the count before
// the new item is inserted, so exactly FreeTaskLimit tasks are permitted.
const (
	FreeTaskLimit    = 20
	FreeProjectLimit = 1
)

// LimitResult is the outcome of a usage cap check. Reason is set on denial
// and is suitable for showing to the user.
type LimitResult struct {
	OK     bool
	Reason string
}

// NormalizePlan maps arbitrary stored plan strings to a known Plan.
// Anything unrecognized degrades to free.
func NormalizePlan(plan string) Plan {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case string(PlanPremium):
		return PlanPremium
	default:
		return PlanFree
	}
}

// CanUseFeature decides whether a plan grants a feature. Premium grants
// everything. Free denies the fixed gated set and allows everything else.
//
// NOTE: unrecognized features are allowed by default (fail-open). New gated
// features must be added to the switch below or free users get them silently.
func CanUseFeature(plan Plan, feature Feature) bool {
	if plan == PlanPremium {
		return true
	}

	switch feature {
	case FeatureReminders,
		FeatureExport,
		FeatureWorkspaces,
		FeatureTeams,
		FeatureUnlimitedTasks,
		FeatureMultipleProjects:
		return false
	}

	return true
}

// CheckLimit decides whether a plan permits creating one more of the given
// resource, given the current pre-insert count. It has no side effects;
// callers must re-check after concurrent creations.
func CheckLimit(plan Plan, resource Resource, currentCount int64) LimitResult {
	if plan == PlanPremium {
		return LimitResult{OK: true}
	}

	if resource == ResourceTasks && currentCount >= FreeTaskLimit {
		return LimitResult{OK: false, Reason: "Free plan: max 20 active tasks."}
	}
	if resource == ResourceProjects && currentCount >= FreeProjectLimit {
		return LimitResult{OK: false, Reason: "Free plan: max 1 project."}
	}

	return LimitResult{OK: true}
}
