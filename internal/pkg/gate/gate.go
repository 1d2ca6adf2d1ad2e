package gate

import (
	"errors"
	"fmt"

	"github.com/MoritzHellmann/TaskPeak/internal/pkg/entitlements"
	"github.com/MoritzHellmann/TaskPeak/internal/pkg/metrics"
)

// ErrLimitReached marks a creation denied by a free tier cap. It is a
// business error, not a system fault; controllers map it to a distinguishable
// response so the UI can render an upgrade prompt instead of a failure.
var ErrLimitReached = errors.New("plan limit reached")

// PlanSource resolves a user's current plan.
type PlanSource interface {
	PlanByUserID(userID uint) (entitlements.Plan, error)
}

// TaskCounter counts a user's non-archived tasks.
type TaskCounter interface {
	CountActiveByUserID(userID uint) (int64, error)
}

// ProjectCounter counts a user's projects.
type ProjectCounter interface {
	CountByUserID(userID uint) (int64, error)
}

// Gate enforces free tier caps before task/project creation. Counts are read
// live at check time, never cached. The check-then-insert sequence is not
// atomic against concurrent creations from the same user; a race can exceed
// the cap by a small margin, which is accepted.
type Gate struct {
	plans    PlanSource
	tasks    TaskCounter
	projects ProjectCounter
}

func New(plans PlanSource, tasks TaskCounter, projects ProjectCounter) *Gate {
	return &Gate{plans: plans, tasks: tasks, projects: projects}
}

// CheckCreate decides whether the user may create one more of the resource.
// Denials are ErrLimitReached wrapped with the user-facing reason.
func (g *Gate) CheckCreate(userID uint, resource entitlements.Resource) error {
	plan, err := g.plans.PlanByUserID(userID)
	if err != nil {
		return fmt.Errorf("resolve plan: %w", err)
	}

	var count int64
	switch resource {
	case entitlements.ResourceTasks:
		count, err = g.tasks.CountActiveByUserID(userID)
	case entitlements.ResourceProjects:
		count, err = g.projects.CountByUserID(userID)
	default:
		return fmt.Errorf("unknown resource %q", resource)
	}
	if err != nil {
		return fmt.Errorf("count %s: %w", resource, err)
	}

	res := entitlements.CheckLimit(plan, resource, count)
	if !res.OK {
		metrics.LimitDenials.WithLabelValues(string(resource)).Inc()
		return fmt.Errorf("%w: %s", ErrLimitReached, res.Reason)
	}
	return nil
}
