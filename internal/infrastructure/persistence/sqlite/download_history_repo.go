package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/domain/repository"
	"github.com/bnema/pagekit/internal/logging"
)

const (
	upsertDownload = `
INSERT INTO downloads (id, url, path, mime_type, reason, state, interrupt_reason,
                       received_bytes, total_bytes, started_at, finished_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    url = excluded.url,
    path = excluded.path,
    mime_type = excluded.mime_type,
    reason = excluded.reason,
    state = excluded.state,
    interrupt_reason = excluded.interrupt_reason,
    received_bytes = excluded.received_bytes,
    total_bytes = excluded.total_bytes,
    started_at = excluded.started_at,
    finished_at = excluded.finished_at`

	listRecentDownloads = `
SELECT id, url, path, mime_type, reason, state, interrupt_reason,
       received_bytes, total_bytes, started_at, finished_at
FROM downloads
ORDER BY finished_at DESC, rowid DESC
LIMIT ?`

	deleteDownload   = `DELETE FROM downloads WHERE id = ?`
	deleteDownloads  = `DELETE FROM downloads`
	defaultListLimit = 50
)

type downloadHistoryRepo struct {
	provider port.DatabaseProvider
}

// NewDownloadHistoryRepository creates a SQLite-backed download history.
// The connection is requested from provider on each call.
func NewDownloadHistoryRepository(provider port.DatabaseProvider) repository.DownloadHistoryRepository {
	return &downloadHistoryRepo{provider: provider}
}

func (r *downloadHistoryRepo) Save(ctx context.Context, t *download.Transfer) error {
	if t == nil || t.ID == "" {
		return fmt.Errorf("save download: missing transfer id")
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Debug().
		Str("id", t.ID).
		Str("state", t.State.String()).
		Msg("saving download record")

	_, err = db.ExecContext(ctx, upsertDownload,
		t.ID, t.URL, t.Path, t.MimeType,
		int(t.Reason), int(t.State), int(t.InterruptReason),
		t.ReceivedBytes, t.TotalBytes,
		toUnixMilli(t.StartedAt), toUnixMilli(t.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save download %s: %w", t.ID, err)
	}
	return nil
}

func (r *downloadHistoryRepo) Recent(ctx context.Context, limit int) ([]*download.Transfer, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	db, err := r.provider.DB(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, listRecentDownloads, limit)
	if err != nil {
		return nil, fmt.Errorf("list downloads: %w", err)
	}
	defer rows.Close()

	var out []*download.Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *downloadHistoryRepo) Delete(ctx context.Context, id string) error {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, deleteDownload, id)
	return err
}

func (r *downloadHistoryRepo) Clear(ctx context.Context) (int64, error) {
	db, err := r.provider.DB(ctx)
	if err != nil {
		return 0, err
	}
	res, err := db.ExecContext(ctx, deleteDownloads)
	if err != nil {
		return 0, fmt.Errorf("clear downloads: %w", err)
	}
	return res.RowsAffected()
}

func scanTransfer(rows *sql.Rows) (*download.Transfer, error) {
	var (
		t                        download.Transfer
		reason, state, interrupt int
		startedAt, finishedAt    int64
	)
	err := rows.Scan(&t.ID, &t.URL, &t.Path, &t.MimeType,
		&reason, &state, &interrupt,
		&t.ReceivedBytes, &t.TotalBytes, &startedAt, &finishedAt)
	if err != nil {
		return nil, fmt.Errorf("scan download: %w", err)
	}
	t.Reason = download.Reason(reason)
	t.State = download.State(state)
	t.InterruptReason = download.InterruptReason(interrupt)
	t.StartedAt = fromUnixMilli(startedAt)
	t.FinishedAt = fromUnixMilli(finishedAt)
	return &t, nil
}

func toUnixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
