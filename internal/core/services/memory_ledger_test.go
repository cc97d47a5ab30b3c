package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/apperrors"
	"github.com/tatenda10/alamait-sub008/internal/core/domain"
	portsrepo "github.com/tatenda10/alamait-sub008/internal/core/ports/repositories"
	"github.com/tatenda10/alamait-sub008/internal/utils/accounting"
)

// memoryStore is an in-memory implementation of every ledger repository
// port, mirroring the Postgres repositories' semantics (lazy balance rows,
// period bridging and re-chaining, soft deletes). It backs the end-to-end
// scenario tests that exercise real balance and period state instead of
// mock wiring.
type memoryStore struct {
	mu sync.Mutex

	accounts     map[string]domain.Account
	codeIndex    map[string]string // account code -> ID
	transactions map[string]*domain.Transaction
	entries      []domain.JournalEntry // insertion order
	balances     map[string]decimal.Decimal
	periods      map[string][]domain.PeriodBalance // sorted by period key
	students     map[string]domain.StudentBalance  // studentID|enrollmentID
	reports      map[string]domain.ReconciliationReport
	reportOrder  []string
}

var (
	_ portsrepo.AccountRepository        = (*memoryStore)(nil)
	_ portsrepo.LedgerRepository         = (*memoryStore)(nil)
	_ portsrepo.BalanceRepository        = (*memoryStore)(nil)
	_ portsrepo.PeriodRepository         = (*memoryStore)(nil)
	_ portsrepo.StudentBalanceRepository = (*memoryStore)(nil)
	_ portsrepo.ReconciliationRepository = (*memoryStore)(nil)
)

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:     make(map[string]domain.Account),
		codeIndex:    make(map[string]string),
		transactions: make(map[string]*domain.Transaction),
		balances:     make(map[string]decimal.Decimal),
		periods:      make(map[string][]domain.PeriodBalance),
		students:     make(map[string]domain.StudentBalance),
		reports:      make(map[string]domain.ReconciliationReport),
	}
}

func studentKey(studentID, enrollmentID string) string {
	return studentID + "|" + enrollmentID
}

// --- AccountRepository ---

func (s *memoryStore) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.codeIndex[account.Code]; taken {
		return apperrors.ErrDuplicate
	}
	s.accounts[account.AccountID] = account
	s.codeIndex[account.Code] = account.AccountID
	return nil
}

func (s *memoryStore) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *memoryStore) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.codeIndex[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	acc := s.accounts[id]
	return &acc, nil
}

func (s *memoryStore) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			found[id] = acc
		}
	}
	return found, nil
}

func (s *memoryStore) ListAccounts(_ context.Context, limit, offset int) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		all = append(all, acc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	if offset >= len(all) {
		return []domain.Account{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (s *memoryStore) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	old, ok := s.accounts[account.AccountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if old.Code != account.Code {
		delete(s.codeIndex, old.Code)
		s.codeIndex[account.Code] = account.AccountID
	}
	s.accounts[account.AccountID] = account
	return nil
}

func (s *memoryStore) DeactivateAccount(_ context.Context, accountID, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.IsActive = false
	acc.LastUpdatedAt = now
	acc.LastUpdatedBy = userID
	s.accounts[accountID] = acc
	return nil
}

func (s *memoryStore) HasEntries(_ context.Context, accountID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

// --- LedgerRepository ---

func (s *memoryStore) SavePosting(_ context.Context, txn domain.Transaction, entries []domain.JournalEntry,
	balanceChanges map[string]decimal.Decimal, periodDeltas []portsrepo.PeriodDelta, studentDelta *portsrepo.StudentDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := txn
	stored.Entries = nil
	s.transactions[txn.TransactionID] = &stored

	running := make(map[string]decimal.Decimal)
	for accID := range balanceChanges {
		running[accID] = s.balances[accID]
	}
	for _, e := range entries {
		signed, err := accounting.SignedAmount(e.EntryType, s.accounts[e.AccountID].AccountType, e.Amount)
		if err != nil {
			return err
		}
		running[e.AccountID] = running[e.AccountID].Add(signed)
		e.RunningBalance = running[e.AccountID]
		e.TxnDate = txn.TxnDate
		e.TxnDescription = txn.Description
		s.entries = append(s.entries, e)
	}

	for accID, delta := range balanceChanges {
		s.balances[accID] = s.balances[accID].Add(delta)
	}

	for _, pd := range periodDeltas {
		s.applyPeriodDelta(pd)
	}

	if studentDelta != nil {
		key := studentKey(studentDelta.StudentID, studentDelta.EnrollmentID)
		sb, ok := s.students[key]
		if !ok {
			sb = domain.StudentBalance{StudentID: studentDelta.StudentID, EnrollmentID: studentDelta.EnrollmentID, Balance: decimal.Zero}
		}
		sb.Balance = sb.Balance.Add(studentDelta.Delta)
		s.students[key] = sb
	}
	return nil
}

// applyPeriodDelta mirrors the SQL upsert: accumulate into an existing row
// or open a new one bridged from the latest earlier period, then shift every
// later row's BD and CD by the signed delta.
func (s *memoryStore) applyPeriodDelta(pd portsrepo.PeriodDelta) {
	signed := pd.Debits.Sub(pd.Credits)
	if pd.Normal == domain.CreditNormal {
		signed = signed.Neg()
	}

	rows := s.periods[pd.AccountID]
	idx := -1
	for i := range rows {
		if rows[i].Period == pd.Period {
			idx = i
			break
		}
	}

	if idx >= 0 {
		rows[idx].TotalDebits = rows[idx].TotalDebits.Add(pd.Debits)
		rows[idx].TotalCredits = rows[idx].TotalCredits.Add(pd.Credits)
		rows[idx].BalanceCarriedDown = rows[idx].BalanceCarriedDown.Add(signed)
		rows[idx].TransactionCount += pd.TxnCount
	} else {
		broughtDown := decimal.Zero
		for i := range rows {
			if rows[i].Period < pd.Period {
				broughtDown = rows[i].BalanceCarriedDown
			}
		}
		rows = append(rows, domain.PeriodBalance{
			AccountID:          pd.AccountID,
			Period:             pd.Period,
			BalanceBroughtDown: broughtDown,
			TotalDebits:        pd.Debits,
			TotalCredits:       pd.Credits,
			BalanceCarriedDown: broughtDown.Add(signed),
			TransactionCount:   pd.TxnCount,
		})
		sort.Slice(rows, func(i, j int) bool { return rows[i].Period < rows[j].Period })
	}

	for i := range rows {
		if rows[i].Period > pd.Period {
			rows[i].BalanceBroughtDown = rows[i].BalanceBroughtDown.Add(signed)
			rows[i].BalanceCarriedDown = rows[i].BalanceCarriedDown.Add(signed)
		}
	}
	s.periods[pd.AccountID] = rows
}

func (s *memoryStore) FindTransactionByID(_ context.Context, transactionID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *txn
	return &cp, nil
}

func (s *memoryStore) FindEntriesByTransactionID(_ context.Context, transactionID string) ([]domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range s.entries {
		if e.TransactionID == transactionID && e.DeletedAt == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memoryStore) ReferenceExists(_ context.Context, txnType domain.TransactionType, reference string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, txn := range s.transactions {
		if txn.TxnType == txnType && txn.Reference == reference && txn.Status != domain.Voided && txn.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) MarkReversed(_ context.Context, originalID, reversingID, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[originalID]
	if !ok || txn.ReversedByTransactionID != nil {
		return apperrors.ErrConflict
	}
	txn.ReversedByTransactionID = &reversingID
	txn.LastUpdatedAt = at
	txn.LastUpdatedBy = userID
	return nil
}

func (s *memoryStore) ListEntriesByAccount(_ context.Context, accountID string, limit int, _ *string) ([]domain.JournalEntry, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range s.entries {
		txn := s.transactions[e.TransactionID]
		if e.AccountID == accountID && e.DeletedAt == nil && txn.Status == domain.Posted && txn.DeletedAt == nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TxnDate.After(out[j].TxnDate) })
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil, nil
}

// --- BalanceRepository ---

func (s *memoryStore) GetCachedBalance(_ context.Context, accountID string) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balance, ok := s.balances[accountID]
	if !ok {
		return decimal.Zero, apperrors.ErrNotFound
	}
	return balance, nil
}

func (s *memoryStore) EntrySums(_ context.Context, accountID string, asOf *time.Time) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range s.entries {
		txn := s.transactions[e.TransactionID]
		if e.AccountID != accountID || e.DeletedAt != nil || txn.Status != domain.Posted || txn.DeletedAt != nil {
			continue
		}
		if asOf != nil && txn.TxnDate.After(*asOf) {
			continue
		}
		if e.EntryType == domain.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits, nil
}

func (s *memoryStore) OverwriteCachedBalance(_ context.Context, accountID string, balance decimal.Decimal, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.balances[accountID] = balance
	return nil
}

func (s *memoryStore) ListActiveAccountIDs(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, acc := range s.accounts {
		if acc.DeletedAt == nil {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- PeriodRepository ---

func (s *memoryStore) GetPeriodBalance(_ context.Context, accountID, period string) (*domain.PeriodBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.periods[accountID] {
		if r.Period == period {
			cp := r
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *memoryStore) ListPeriodBalances(_ context.Context, accountID string) ([]domain.PeriodBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.periods[accountID]
	out := make([]domain.PeriodBalance, len(rows))
	copy(out, rows)
	return out, nil
}

func (s *memoryStore) ReplacePeriodBalances(_ context.Context, accountID string, rows []domain.PeriodBalance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaced := make([]domain.PeriodBalance, len(rows))
	copy(replaced, rows)
	s.periods[accountID] = replaced
	return nil
}

func (s *memoryStore) PeriodEntrySums(_ context.Context, accountID string) ([]portsrepo.PeriodActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byPeriod := make(map[string]*portsrepo.PeriodActivity)
	counted := make(map[string]bool) // period|txnID
	for _, e := range s.entries {
		txn := s.transactions[e.TransactionID]
		if e.AccountID != accountID || e.DeletedAt != nil || txn.Status != domain.Posted || txn.DeletedAt != nil {
			continue
		}
		period := domain.PeriodOf(txn.TxnDate).Key()
		a, ok := byPeriod[period]
		if !ok {
			a = &portsrepo.PeriodActivity{Period: period, Debits: decimal.Zero, Credits: decimal.Zero}
			byPeriod[period] = a
		}
		if e.EntryType == domain.Debit {
			a.Debits = a.Debits.Add(e.Amount)
		} else {
			a.Credits = a.Credits.Add(e.Amount)
		}
		if tk := period + "|" + e.TransactionID; !counted[tk] {
			counted[tk] = true
			a.TxnCount++
		}
	}
	out := make([]portsrepo.PeriodActivity, 0, len(byPeriod))
	for _, a := range byPeriod {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

// --- StudentBalanceRepository ---

func (s *memoryStore) GetStudentBalance(_ context.Context, studentID, enrollmentID string) (*domain.StudentBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sb, ok := s.students[studentKey(studentID, enrollmentID)]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &sb, nil
}

func (s *memoryStore) ListStudentBalances(_ context.Context) ([]domain.StudentBalance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.students))
	for k := range s.students {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]domain.StudentBalance, 0, len(keys))
	for _, k := range keys {
		out = append(out, s.students[k])
	}
	return out, nil
}

func (s *memoryStore) StudentEntrySums(_ context.Context, studentID, enrollmentID, controlAccountID string) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	debits, credits := decimal.Zero, decimal.Zero
	for _, e := range s.entries {
		txn := s.transactions[e.TransactionID]
		if e.AccountID != controlAccountID || e.DeletedAt != nil || txn.Status != domain.Posted || txn.DeletedAt != nil {
			continue
		}
		if txn.StudentID != studentID || txn.EnrollmentID != enrollmentID {
			continue
		}
		if e.EntryType == domain.Debit {
			debits = debits.Add(e.Amount)
		} else {
			credits = credits.Add(e.Amount)
		}
	}
	return debits, credits, nil
}

func (s *memoryStore) OverwriteStudentBalance(_ context.Context, studentID, enrollmentID string, balance decimal.Decimal, _ string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := studentKey(studentID, enrollmentID)
	sb, ok := s.students[key]
	if !ok {
		sb = domain.StudentBalance{StudentID: studentID, EnrollmentID: enrollmentID}
	}
	sb.Balance = balance
	s.students[key] = sb
	return nil
}

// --- ReconciliationRepository ---

func (s *memoryStore) FindDuplicateTransactions(_ context.Context) ([]domain.DuplicateGroup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	groups := make(map[string]*domain.DuplicateGroup)
	for _, txn := range s.transactions {
		if txn.Status != domain.Posted || txn.DeletedAt != nil {
			continue
		}
		key := strings.Join([]string{txn.Reference, txn.Amount.String(), txn.TxnDate.Format("2006-01-02")}, "|")
		g, ok := groups[key]
		if !ok {
			g = &domain.DuplicateGroup{Reference: txn.Reference, Amount: txn.Amount, TxnDate: txn.TxnDate}
			groups[key] = g
		}
		g.TransactionIDs = append(g.TransactionIDs, txn.TransactionID)
	}
	var out []domain.DuplicateGroup
	for _, g := range groups {
		if len(g.TransactionIDs) > 1 {
			sort.Strings(g.TransactionIDs)
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Reference < out[j].Reference })
	return out, nil
}

func (s *memoryStore) QuarantineTransaction(_ context.Context, transactionID, userID string, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txn, ok := s.transactions[transactionID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	txn.DeletedAt = &now
	txn.LastUpdatedAt = now
	txn.LastUpdatedBy = userID

	seen := make(map[string]bool)
	var affected []string
	for i := range s.entries {
		if s.entries[i].TransactionID != transactionID {
			continue
		}
		s.entries[i].DeletedAt = &now
		if !seen[s.entries[i].AccountID] {
			seen[s.entries[i].AccountID] = true
			affected = append(affected, s.entries[i].AccountID)
		}
	}
	sort.Strings(affected)
	return affected, nil
}

func (s *memoryStore) SaveReport(_ context.Context, report domain.ReconciliationReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.RunID] = report
	s.reportOrder = append(s.reportOrder, report.RunID)
	return nil
}

func (s *memoryStore) ListReports(_ context.Context, limit int) ([]domain.ReconciliationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ReconciliationReport
	for i := len(s.reportOrder) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.reports[s.reportOrder[i]])
	}
	return out, nil
}

func (s *memoryStore) GetReport(_ context.Context, runID string) (*domain.ReconciliationReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, ok := s.reports[runID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &report, nil
}
