// Package search implements the accounted-search workflow: resolve the
// caller's account, guard entitlement, account credits, and drive the partner
// search lifecycle with an audit trail.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"gateway/internal/domain"
	"gateway/internal/infra"
	"gateway/internal/keymask"
)

// Options wires the orchestrator's collaborators. Passphrase enables
// transport-level key unmasking when non-empty.
type Options struct {
	Accounts   domain.AccountStore
	Tariffs    domain.TariffStore
	History    domain.HistoryStore
	Partner    domain.SearchProvider
	Logger     *infra.Logger
	Passphrase string
	Now        func() time.Time
}

// Orchestrator runs the per-request workflow. It holds no per-request state;
// every call resolves account and tariff data fresh from the store.
type Orchestrator struct {
	accounts   domain.AccountStore
	tariffs    domain.TariffStore
	history    domain.HistoryStore
	partner    domain.SearchProvider
	logger     *infra.Logger
	passphrase string
	now        func() time.Time
	locks      accountLocks
}

// New constructs an orchestrator with sane defaults.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		accounts:   opts.Accounts,
		tariffs:    opts.Tariffs,
		history:    opts.History,
		partner:    opts.Partner,
		logger:     logger,
		passphrase: opts.Passphrase,
		now:        now,
	}
}

// Authorize resolves the account behind a presented key and decides
// admission. Expiry is checked before the credential comparison on every
// route. An empty credential fails before any store call.
func (o *Orchestrator) Authorize(ctx context.Context, presentedKey string) (*domain.Account, error) {
	if presentedKey == "" {
		return nil, domain.ErrInvalidParams
	}
	key := presentedKey
	if o.passphrase != "" {
		plain, err := keymask.Unmask(presentedKey, o.passphrase)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrWrongAPIKey, err)
		}
		key = plain
	}
	accounts, err := o.accounts.FindByAPIKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, domain.ErrAccountNotFound
	}
	if len(accounts) > 1 {
		// Ambiguous data; the first record wins, as the store returned it.
		o.logger.Warn().Int("matches", len(accounts)).Msg("multiple accounts matched one apikey")
	}
	account := accounts[0]
	if account.Expired(o.now()) {
		return nil, domain.ErrAccountExpired
	}
	if account.APIKey != key {
		return nil, domain.ErrWrongAPIKey
	}
	return &account, nil
}

// SubmitResult reports an accepted search submission.
type SubmitResult struct {
	QueryID   string
	Consumed  int
	Remaining int
}

// Submit prices a batch search, checks sufficiency, creates the partner job,
// and commits the debit and audit entry. Debits for one account are
// serialized in-process; the balance is re-read under the lock so concurrent
// submissions observe each other's debits.
func (o *Orchestrator) Submit(ctx context.Context, account *domain.Account, subjects []string, source string) (*SubmitResult, error) {
	unlock := o.locks.lock(account.ID)
	defer unlock()

	fresh, err := o.accounts.FindByAPIKey(ctx, account.APIKey)
	if err != nil {
		return nil, err
	}
	current := *account
	if len(fresh) > 0 {
		current = fresh[0]
	}

	tariffs, err := o.tariffs.Tariffs(ctx)
	if err != nil {
		return nil, err
	}
	tariff, ok := domain.FindTariff(tariffs, source)
	if !ok {
		return nil, domain.ErrInvalidSource
	}

	// Zero subjects price at zero and still submit; legacy behavior kept.
	consumed := tariff.Credit * len(subjects)
	remaining := current.Credits - consumed
	if remaining < 0 {
		return nil, domain.ErrInsufficientCredits
	}

	queryID, err := o.partner.CreateSearch(ctx, subjects, source)
	if err != nil {
		return nil, err
	}

	// Both writes are awaited before the caller sees the response. A failure
	// here leaves the partner job alive with the account un-debited, so it is
	// logged loudly but does not void the job id the caller already owns.
	if err := o.accounts.UpdateCredits(ctx, current.ID, remaining); err != nil {
		o.logger.Error().Err(err).Int("account_id", current.ID).Str("query_id", queryID).Msg("credit debit failed after job creation")
	}
	record := domain.HistoryRecord{
		AccountID: current.ID,
		PlanID:    current.PlanID,
		Credits:   -consumed,
		Date:      o.now(),
		Query:     "Búsqueda por lote " + source,
		Status:    domain.StatusInProgress,
		QueryID:   queryID,
		Source:    source,
	}
	if err := o.history.Append(ctx, record); err != nil {
		o.logger.Error().Err(err).Int("account_id", current.ID).Str("query_id", queryID).Msg("history append failed after job creation")
	}

	o.logger.Info().Int("account_id", current.ID).Str("query_id", queryID).Str("source", source).
		Int("consumed", consumed).Int("remaining", remaining).Msg("search submitted")
	return &SubmitResult{QueryID: queryID, Consumed: consumed, Remaining: remaining}, nil
}

// PollResult is one observation of a job's lifecycle. Data is set only when
// the job is ready.
type PollResult struct {
	Status domain.SearchStatus
	Data   json.RawMessage
}

// Poll observes a job's status with one partner round trip and fetches the
// full result when the job is ready. FAILED and IN PROGRESS are valid
// terminal outcomes for the call; no data fetch is attempted for either.
func (o *Orchestrator) Poll(ctx context.Context, queryID string) (*PollResult, error) {
	status, err := o.partner.Status(ctx, queryID)
	if err != nil {
		return nil, err
	}
	if status != domain.StatusReady {
		return &PollResult{Status: status}, nil
	}
	data, err := o.partner.FullData(ctx, queryID)
	if err != nil {
		return nil, err
	}
	return &PollResult{Status: domain.StatusReady, Data: data}, nil
}

// History returns the account's credit-consuming audit entries in store
// order.
func (o *Orchestrator) History(ctx context.Context, email string) ([]domain.HistoryEntry, error) {
	entries, err := o.history.ByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return domain.ConsumptionOnly(entries), nil
}
