package budget

import (
	"context"
	"fmt"

	"github.com/klokku/budgetwise/pkg/money"
	"github.com/klokku/budgetwise/pkg/period"
	"github.com/klokku/budgetwise/pkg/priority"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// SystemBudgetSync keeps the three system budgets of a month in line with the income and goals.
// Concurrent calls for the same user and month share a single run.
type SystemBudgetSync struct {
	repo      Repository
	tolerance decimal.Decimal
	group     singleflight.Group
}

// NewSystemBudgetSync creates the sync. A non-positive tolerance falls back to money.Tolerance.
func NewSystemBudgetSync(repo Repository, tolerance decimal.Decimal) *SystemBudgetSync {
	if !tolerance.IsPositive() {
		tolerance = money.Tolerance
	}
	return &SystemBudgetSync{repo: repo, tolerance: tolerance}
}

// Sync creates the missing system budgets of the month and corrects the amounts of the existing
// ones that drifted from their target. Persistence errors are logged and never returned: the
// result holds whatever budgets could be loaded or written, ordered needs, wants, savings.
func (s *SystemBudgetSync) Sync(
	ctx context.Context,
	userId int,
	month period.Month,
	income decimal.Decimal,
	goals []Goal,
	policy AllocationPolicy,
) []SystemBudget {
	key := fmt.Sprintf("%d:%s", userId, month)
	// Joined callers share this run, so it must outlive the cancellation of the first caller.
	sharedCtx := context.WithoutCancel(ctx)
	result, _, shared := s.group.Do(key, func() (interface{}, error) {
		return s.sync(sharedCtx, userId, month, income, goals, policy), nil
	})
	if shared {
		log.Tracef("system budget sync for %s shared with a concurrent call", key)
	}
	budgets := result.([]SystemBudget)
	return append([]SystemBudget(nil), budgets...)
}

func (s *SystemBudgetSync) sync(
	ctx context.Context,
	userId int,
	month period.Month,
	income decimal.Decimal,
	goals []Goal,
	policy AllocationPolicy,
) []SystemBudget {
	existing, err := s.repo.GetSystemBudgetsForPeriod(ctx, userId, month.Start(), month.End())
	if err != nil {
		log.Errorf("failed to load system budgets of %s for user %d: %v", month, userId, err)
		return []SystemBudget{}
	}

	targets := policy.Targets(income, goals)
	budgets := make([]SystemBudget, 0, len(priority.All))
	for _, p := range priority.All {
		target := targets[p]
		current, found := findSystemBudgetOfMonth(existing, p, month)
		if !found {
			created, err := s.repo.UpsertSystemBudget(ctx, userId, SystemBudget{
				Name:             SystemBudgetName(p, month.Label()),
				BudgetAmount:     target,
				StartDate:        month.Start(),
				EndDate:          month.End(),
				SystemBudgetType: p,
			})
			if err != nil {
				log.Errorf("failed to create %s system budget of %s for user %d: %v", p, month, userId, err)
				continue
			}
			log.Debugf("created %s system budget of %s for user %d: %s", p, month, userId, target.StringFixed(2))
			budgets = append(budgets, created)
			continue
		}

		if money.Differs(current.BudgetAmount, target, s.tolerance) {
			err := s.repo.UpdateSystemBudgetAmount(ctx, userId, current.Id, target)
			if err != nil {
				log.Errorf("failed to update %s system budget %d for user %d: %v", p, current.Id, userId, err)
				budgets = append(budgets, current)
				continue
			}
			log.Debugf("corrected %s system budget %d from %s to %s", p, current.Id,
				current.BudgetAmount.StringFixed(2), target.StringFixed(2))
			current.BudgetAmount = target
		}
		budgets = append(budgets, current)
	}
	return budgets
}

func findSystemBudgetOfMonth(budgets []SystemBudget, p priority.Priority, month period.Month) (SystemBudget, bool) {
	for _, b := range budgets {
		if b.SystemBudgetType == p && period.MonthOf(b.StartDate) == month {
			return b, true
		}
	}
	return SystemBudget{}, false
}
