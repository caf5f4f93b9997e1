// Package neo is the client for the Neo Financial GraphQL API. It fetches a
// full transaction sequence for an account via cursor pagination; the
// reconciliation core requires the sequence in full before it runs.
package neo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/neoledger/neo-export-backend/internal/domain/transaction"
)

const (
	// DefaultBaseURL is the production GraphQL endpoint.
	DefaultBaseURL = "https://api.production.neofinancial.com/graphql"

	// DefaultPageSize is the per-page limit for transaction fetches.
	DefaultPageSize = 1000
)

const transactionsListQuery = `query TransactionsList($input: CursorQueryInput!, $creditAccountId: ObjectID!) {
  user { creditAccount(id: $creditAccountId) {
    creditTransactionList(input: $input) { cursor hasNextPage results {
      description category amountCents authorizationProcessedAt status
    }}}}}`

// Config holds client settings.
type Config struct {
	BaseURL  string
	PageSize int
	// SessionCookie authenticates requests; Neo uses cookie-based sessions.
	SessionCookie string
}

// Client fetches transactions from the Neo API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Neo API client. Zero-value config fields fall back to
// defaults; a nil logger falls back to slog.Default().
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// CreditTransactions fetches every transaction for the account, newest
// first, following the cursor until the API reports no next page. The
// context cancels between pages and mid-request; partial results are
// discarded on error.
func (c *Client) CreditTransactions(ctx context.Context, accountID string) ([]transaction.Transaction, error) {
	c.logger.Debug("fetching credit transactions", "account_id", accountID)

	var (
		transactions []transaction.Transaction
		cursor       *string
		page         int
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		list, err := c.fetchPage(ctx, accountID, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch transactions page %d: %w", page+1, err)
		}

		transactions = append(transactions, list.Results...)
		page++

		c.logger.Debug("fetched transactions page",
			"page", page,
			"page_count", len(list.Results),
			"total", len(transactions),
			"has_next_page", list.HasNextPage,
		)

		if !list.HasNextPage {
			break
		}
		cursor = list.Cursor
	}

	c.logger.Debug("fetched all transactions", "account_id", accountID, "total", len(transactions))

	return transactions, nil
}

type transactionPage struct {
	Cursor      *string
	HasNextPage bool
	Results     []transaction.Transaction
}

func (c *Client) fetchPage(ctx context.Context, accountID string, cursor *string) (*transactionPage, error) {
	reqBody := graphQLRequest{
		OperationName: "TransactionsList",
		Query:         transactionsListQuery,
		Variables: variables{
			CreditAccountID: accountID,
			Input: cursorQueryInput{
				Cursor: cursor,
				Limit:  c.config.PageSize,
				Sort: sortInput{
					Direction: "DESC",
					Field:     "authorizationProcessedAt",
				},
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.SessionCookie != "" {
		req.Header.Set("Cookie", c.config.SessionCookie)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var decoded transactionsListResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("graphql error: %s", decoded.Errors[0].Message)
	}

	list := decoded.Data.User.CreditAccount.CreditTransactionList
	return &transactionPage{
		Cursor:      list.Cursor,
		HasNextPage: list.HasNextPage,
		Results:     list.Results,
	}, nil
}
