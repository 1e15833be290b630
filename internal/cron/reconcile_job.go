package cron

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/pantryshare-backend/internal/mealplans"
	"github.com/angelmondragon/pantryshare-backend/pkg/logger"
)

const defaultBatchSize = 100

type userLister interface {
	ListUIDs(ctx context.Context, limit int, after string) ([]string, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, uid string) (*mealplans.ReconcileReport, error)
}

// ReconcileJob rebuilds meal-plan back-references for every user, repairing
// cascades that failed part way through a request.
type ReconcileJob struct {
	users     userLister
	mealPlans reconciler
	logg      *logger.Logger
	batchSize int
}

func NewReconcileJob(users userLister, mealPlans reconciler, logg *logger.Logger, batchSize int) (*ReconcileJob, error) {
	if users == nil {
		return nil, errors.New("user lister required")
	}
	if mealPlans == nil {
		return nil, errors.New("meal plan service required")
	}
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &ReconcileJob{users: users, mealPlans: mealPlans, logg: logg, batchSize: batchSize}, nil
}

func (j *ReconcileJob) Name() string { return "reconcile_meal_plans" }

// Run visits every user even when some fail; the failures come back
// aggregated.
func (j *ReconcileJob) Run(ctx context.Context) error {
	var (
		errs     error
		after    string
		users    int
		repaired int
	)
	for {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		uids, err := j.users.ListUIDs(ctx, j.batchSize, after)
		if err != nil {
			return multierr.Append(errs, fmt.Errorf("list users after %q: %w", after, err))
		}
		for _, uid := range uids {
			report, err := j.mealPlans.Reconcile(ctx, uid)
			users++
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("reconcile %s: %w", uid, err))
				continue
			}
			repaired += report.PantryRepaired + report.ShoppingListRepaired + report.FavoritesRepaired + report.MealPlansRepaired
		}
		if len(uids) < j.batchSize {
			break
		}
		after = uids[len(uids)-1]
	}

	if j.logg != nil {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"users":    users,
			"repaired": repaired,
			"failed":   len(multierr.Errors(errs)),
		}), "maintenance.reconcile.summary")
	}
	return errs
}
