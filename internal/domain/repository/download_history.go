// Package repository defines persistence interfaces for domain records.
package repository

import (
	"context"

	"github.com/bnema/pagekit/internal/domain/download"
)

// DownloadHistoryRepository persists finished transfers.
type DownloadHistoryRepository interface {
	// Save inserts or replaces the record for t.ID.
	Save(ctx context.Context, t *download.Transfer) error

	// Recent returns up to limit transfers, newest first.
	Recent(ctx context.Context, limit int) ([]*download.Transfer, error)

	// Delete removes one transfer by ID. Unknown IDs are not an error.
	Delete(ctx context.Context, id string) error

	// Clear removes every record and returns how many were deleted.
	Clear(ctx context.Context) (int64, error)
}
