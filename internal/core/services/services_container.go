package services

import (
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/fund_reconciliation/internal/core/ports/services"
	"github.com/SscSPs/fund_reconciliation/internal/platform/config"
	"github.com/SscSPs/fund_reconciliation/internal/platform/locker"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// events may be nil when analytics is disabled.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, events RunEventSink) *portssvc.ServiceContainer {
	policy := cfg.MatchingPolicy()

	// Shared so that both runners of this process see each other's goals.
	goalLocks := locker.New()

	container := &portssvc.ServiceContainer{}
	container.Matching = NewMatchingService(
		repos.ReconciliationRepo,
		repos.BatchRepo,
		policy,
		WithMatchWorkers(cfg.MatchWorkers),
		WithBatchSizes(cfg.DefaultBatchSize, cfg.MaxBatchSize),
		WithGoalLocker(goalLocks),
		WithRunEvents(events),
	)
	container.Review = NewReviewService(repos.ReconciliationRepo, nil)
	container.ManualMatch = NewManualMatchService(repos.ReconciliationRepo, policy.Tolerance, nil)
	container.Reversal = NewReversalService(repos.ReconciliationRepo, policy.WindowDays, nil)
	container.Batch = NewBatchService(repos.BatchRepo, repos.ReconciliationRepo)

	return container
}
