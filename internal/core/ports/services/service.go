package services

// ServiceContainer holds all service interfaces used by the HTTP layer.
type ServiceContainer struct {
	Matching    MatchingSvcFacade
	Review      ReviewSvcFacade
	ManualMatch ManualMatchSvcFacade
	Reversal    ReversalSvcFacade
	Batch       BatchSvcFacade
}

// Service interfaces are split by concern:
//   - matching_services.go: batch runners and the per-goal matching view
//   - review_services.go: tagging, bulk review, approve/reject and manual matching
//   - reversal_services.go: reversal candidate search and pair linking
//   - batch_services.go: batch history and the status audit trail
