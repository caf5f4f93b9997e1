package neo

import "github.com/neoledger/neo-export-backend/internal/domain/transaction"

// graphQLRequest is the envelope for the TransactionsList operation.
type graphQLRequest struct {
	OperationName string    `json:"operationName"`
	Query         string    `json:"query"`
	Variables     variables `json:"variables"`
}

type variables struct {
	CreditAccountID string           `json:"creditAccountId"`
	Input           cursorQueryInput `json:"input"`
}

type cursorQueryInput struct {
	Cursor *string   `json:"cursor"`
	Limit  int       `json:"limit"`
	Sort   sortInput `json:"sort"`
}

type sortInput struct {
	Direction string `json:"direction"`
	Field     string `json:"field"`
}

// transactionsListResponse mirrors the nesting of the GraphQL response.
type transactionsListResponse struct {
	Data struct {
		User struct {
			CreditAccount struct {
				CreditTransactionList struct {
					Cursor      *string                   `json:"cursor"`
					HasNextPage bool                      `json:"hasNextPage"`
					Results     []transaction.Transaction `json:"results"`
				} `json:"creditTransactionList"`
			} `json:"creditAccount"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}
