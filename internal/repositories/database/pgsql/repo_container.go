package pgsql

import (
	portsrepo "github.com/SscSPs/fund_reconciliation/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ReconciliationRepo: newPgxReconciliationRepository(dbPool),
		BatchRepo:          newPgxBatchRepository(dbPool),
	}
}
