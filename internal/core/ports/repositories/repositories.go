package repositories

// RepositoryProvider bundles the repositories the service container needs.
type RepositoryProvider struct {
	Account AccountRepository
	Journal JournalRepository
	Invoice InvoiceRepository
}
