package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/creamline/milkbooks_backend/internal/core/ports/repositories"
)

// NewRepositoryProvider wires all pgx-backed repositories over one pool.
func NewRepositoryProvider(pool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(pool)
	return &portsrepo.RepositoryProvider{
		Account: accountRepo,
		Journal: newPgxJournalRepository(pool, accountRepo),
		Invoice: newPgxInvoiceRepository(pool, accountRepo),
	}
}
