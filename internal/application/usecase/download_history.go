package usecase

import (
	"context"
	"fmt"

	"github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/domain/repository"
	"github.com/bnema/pagekit/internal/logging"
)

// DownloadHistoryUseCase records finished transfers and lists past ones.
type DownloadHistoryUseCase struct {
	repo repository.DownloadHistoryRepository
}

// NewDownloadHistoryUseCase creates the use case. A nil repo disables
// recording; listing then returns nothing.
func NewDownloadHistoryUseCase(repo repository.DownloadHistoryRepository) *DownloadHistoryUseCase {
	return &DownloadHistoryUseCase{repo: repo}
}

// Enabled reports whether a repository is attached.
func (uc *DownloadHistoryUseCase) Enabled() bool {
	return uc.repo != nil
}

// Record stores t once it reached a terminal state. Unfinished transfers are
// ignored.
func (uc *DownloadHistoryUseCase) Record(ctx context.Context, t *download.Transfer) error {
	if uc.repo == nil || t == nil || !t.IsFinished() {
		return nil
	}
	if err := uc.repo.Save(ctx, t); err != nil {
		return fmt.Errorf("record download: %w", err)
	}
	logging.FromContext(ctx).Debug().
		Str("id", t.ID).
		Str("state", t.State.String()).
		Msg("download recorded")
	return nil
}

// Recent returns up to limit transfers, newest first.
func (uc *DownloadHistoryUseCase) Recent(ctx context.Context, limit int) ([]*download.Transfer, error) {
	if uc.repo == nil {
		return nil, nil
	}
	return uc.repo.Recent(ctx, limit)
}

// Forget removes one record.
func (uc *DownloadHistoryUseCase) Forget(ctx context.Context, id string) error {
	if uc.repo == nil {
		return nil
	}
	if id == "" {
		return fmt.Errorf("forget download: empty id")
	}
	return uc.repo.Delete(ctx, id)
}

// Clear removes every record.
func (uc *DownloadHistoryUseCase) Clear(ctx context.Context) (int64, error) {
	if uc.repo == nil {
		return 0, nil
	}
	n, err := uc.repo.Clear(ctx)
	if err != nil {
		return 0, err
	}
	logging.FromContext(ctx).Info().Int64("count", n).Msg("download history cleared")
	return n, nil
}
