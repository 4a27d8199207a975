package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/stocklot/stocklot_erp_app/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	accountHeadRepo := newPgxAccountHeadRepository(dbPool)
	journalRepo := newPgxJournalRepository(dbPool, accountHeadRepo)

	return portsrepo.RepositoryProvider{
		AccountHeadRepo: accountHeadRepo,
		JournalRepo:     journalRepo,
	}
}
