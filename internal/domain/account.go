package domain

import "time"

// Account is the billing/credential entity owned by the external account
// store. This service only reads it and writes targeted credit debits back.
type Account struct {
	ID       int
	Email    string
	UserName string
	APIKey   string
	Credits  int
	PlanID   int
	Expiry   time.Time
}

// Expired reports whether the account's plan lapsed strictly before now.
func (a *Account) Expired(now time.Time) bool {
	return a.Expiry.Before(now)
}

// SourceTariff maps a named data source to its per-subject credit cost.
type SourceTariff struct {
	Source string
	Credit int
}

// FindTariff returns the tariff whose source name matches exactly.
// Matching is case-sensitive; there is no fallback entry.
func FindTariff(tariffs []SourceTariff, source string) (SourceTariff, bool) {
	for _, t := range tariffs {
		if t.Source == source {
			return t, true
		}
	}
	return SourceTariff{}, false
}

// SearchStatus is the partner-owned lifecycle state of a search job,
// observed via polling and never mutated here.
type SearchStatus string

const (
	StatusInProgress SearchStatus = "IN PROGRESS"
	StatusReady      SearchStatus = "READY"
	StatusFailed     SearchStatus = "FAILED"
)

// HistoryEntry is one audit-trail row as read back from the store.
type HistoryEntry struct {
	Date    time.Time
	Credits int
	Query   string
	QueryID string
}

// HistoryRecord is the write shape for a new audit-trail row. Credits is
// negative for consumption.
type HistoryRecord struct {
	AccountID int
	PlanID    int
	Credits   int
	Date      time.Time
	Query     string
	Status    SearchStatus
	QueryID   string
	Source    string
}

// ConsumptionOnly keeps entries that debited credits, preserving store order.
func ConsumptionOnly(entries []HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.Credits < 0 {
			out = append(out, e)
		}
	}
	return out
}
