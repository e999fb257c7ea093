// Package export defines the outbound ports for mirroring transactions to
// an external spreadsheet.
package export

import (
	"context"

	"shopledger/internal/core"
)

type (
	// RowAppender writes one transaction as a row and returns a row
	// reference.
	RowAppender interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	// RowDeleter removes a previously exported transaction row by the
	// transaction id recorded in the sheet.
	RowDeleter interface {
		DeleteTransactionRow(ctx context.Context, id string) error
	}
)
