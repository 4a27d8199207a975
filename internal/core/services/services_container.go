package services

import (
	portsrepo "github.com/stocklot/stocklot_erp_app/internal/core/ports/repositories"
	portssvc "github.com/stocklot/stocklot_erp_app/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Account head service first since the ledger resolves accounts through it
	container.AccountHead = NewAccountHeadService(repos.AccountHeadRepo)

	container.Ledger = NewLedgerService(repos.JournalRepo, container.AccountHead)

	// Auto journal sits on top of the ledger posting engine
	container.AutoJournal = NewAutoJournalService(container.Ledger)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountHeadSvcFacade = (*accountHeadService)(nil)
	_ portssvc.LedgerSvcFacade      = (*ledgerService)(nil)
)
