package domain

// LedgerMetrics is a cumulative snapshot of ledger activity, served by
// GET /api/metrics/ledger.
type LedgerMetrics struct {
	TransactionsCreated int64 `json:"transactions_created"`
	TransactionsUpdated int64 `json:"transactions_updated"`
	TransactionsDeleted int64 `json:"transactions_deleted"`
	Transfers           int64 `json:"transfers"`
	StorageErrors       int64 `json:"storage_errors"`
}
