package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/tatenda10/alamait-sub008/internal/core/domain"
)

// EntryRequest is one debit/credit line of a posting request.
type EntryRequest struct {
	AccountID   string          `json:"accountID" binding:"required"`
	EntryType   string          `json:"entryType" binding:"required,oneof=DEBIT CREDIT"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Description string          `json:"description"`
}

// PostTransactionRequest defines the payload for posting a balanced
// transaction to the journal log.
type PostTransactionRequest struct {
	TxnType     string         `json:"txnType" binding:"required"`
	Reference   string         `json:"reference" binding:"required"`
	TxnDate     time.Time      `json:"txnDate" binding:"required"`
	Description string         `json:"description" binding:"required"`
	Entries     []EntryRequest `json:"entries" binding:"required,min=2,dive"`
}

// EntryResponse is the API shape of a journal entry line.
type EntryResponse struct {
	EntryID        string          `json:"entryID"`
	TransactionID  string          `json:"transactionID"`
	AccountID      string          `json:"accountID"`
	EntryType      string          `json:"entryType"`
	Amount         decimal.Decimal `json:"amount"`
	Description    string          `json:"description"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
	TxnDate        time.Time       `json:"txnDate"`
	TxnDescription string          `json:"txnDescription"`
}

// TransactionResponse is the API shape of a transaction with its entries.
type TransactionResponse struct {
	TransactionID string          `json:"transactionID"`
	TxnType       string          `json:"txnType"`
	Reference     string          `json:"reference"`
	TxnDate       time.Time       `json:"txnDate"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Reverses      *string         `json:"reversesTransactionID,omitempty"`
	ReversedBy    *string         `json:"reversedByTransactionID,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	Entries       []EntryResponse `json:"entries,omitempty"`
}

// ListEntriesParams carries cursor pagination for account statements.
type ListEntriesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse is one page of an account statement.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ToEntryResponse converts a domain JournalEntry to its API shape.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	return EntryResponse{
		EntryID:        e.EntryID,
		TransactionID:  e.TransactionID,
		AccountID:      e.AccountID,
		EntryType:      string(e.EntryType),
		Amount:         e.Amount,
		Description:    e.Description,
		RunningBalance: e.RunningBalance,
		TxnDate:        e.TxnDate,
		TxnDescription: e.TxnDescription,
	}
}

// ToEntryResponses converts a slice of domain entries.
func ToEntryResponses(entries []domain.JournalEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}

// ToTransactionResponse converts a domain Transaction to its API shape.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		TxnType:       string(t.TxnType),
		Reference:     t.Reference,
		TxnDate:       t.TxnDate,
		Description:   t.Description,
		Status:        string(t.Status),
		Amount:        t.Amount,
		Reverses:      t.ReversesTransactionID,
		ReversedBy:    t.ReversedByTransactionID,
		CreatedAt:     t.CreatedAt,
		CreatedBy:     t.CreatedBy,
		Entries:       ToEntryResponses(t.Entries),
	}
}
