package domain

import (
	"context"
	"encoding/json"
)

// AccountStore reads billing accounts and writes credit debits back.
type AccountStore interface {
	FindByAPIKey(ctx context.Context, key string) ([]Account, error)
	UpdateCredits(ctx context.Context, accountID, remaining int) error
}

// TariffStore reads the per-source credit tariff set.
type TariffStore interface {
	Tariffs(ctx context.Context) ([]SourceTariff, error)
}

// HistoryStore appends and reads the credit-consumption audit trail.
type HistoryStore interface {
	Append(ctx context.Context, rec HistoryRecord) error
	ByEmail(ctx context.Context, email string) ([]HistoryEntry, error)
}

// SearchProvider drives an asynchronous batch search on the partner system.
type SearchProvider interface {
	CreateSearch(ctx context.Context, subjects []string, source string) (string, error)
	Status(ctx context.Context, queryID string) (SearchStatus, error)
	FullData(ctx context.Context, queryID string) (json.RawMessage, error)
}
