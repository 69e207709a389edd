package cli

import (
	"context"
	"fmt"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/application/usecase"
	domaindl "github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/infrastructure/download"
	"github.com/bnema/pagekit/internal/logging"
)

// Resolution is a probed response and what to do with it. The response stays
// open until Close.
type Resolution struct {
	Status   int
	Decision domaindl.Decision
	// Transfer is set when the response is saved.
	Transfer *domaindl.Transfer
	response *download.Response
}

// Close releases the probed response.
func (r *Resolution) Close() error {
	if r.response == nil {
		return nil
	}
	return r.response.Close()
}

// Decide probes the URL and classifies the response without touching the
// download directory.
func (a *App) Decide(ctx context.Context, pr download.ProbeRequest) (*Resolution, error) {
	resp, err := a.Downloads.Probe(ctx, pr)
	if err != nil {
		return nil, err
	}
	return &Resolution{
		Status:   resp.Descriptor.StatusCode,
		Decision: a.ResolveUC.Decide(resp.Descriptor),
		response: resp,
	}, nil
}

// Resolve probes the URL and, for downloads, reserves a destination in the
// configured download directory.
func (a *App) Resolve(ctx context.Context, pr download.ProbeRequest) (*Resolution, error) {
	resp, err := a.Downloads.Probe(ctx, pr)
	if err != nil {
		return nil, err
	}

	out, err := a.ResolveUC.Execute(ctx, usecase.ResolveDownloadInput{
		Response:    resp.Descriptor,
		DownloadDir: a.Config.Downloads.Path,
	})
	if err != nil {
		_ = resp.Close()
		return nil, fmt.Errorf("resolve download: %w", err)
	}

	return &Resolution{
		Status:   resp.Descriptor.StatusCode,
		Decision: out.Decision,
		Transfer: out.Transfer,
		response: resp,
	}, nil
}

// Save streams a resolved download to its destination, reporting to events.
// The finished transfer is recorded in the download history.
func (a *App) Save(ctx context.Context, res *Resolution, events port.DownloadEventHandler) error {
	if res.Transfer == nil {
		return fmt.Errorf("%s is displayed, not downloaded", res.Decision.SuggestedFilename)
	}
	a.Downloads.SetEventHandler(events)
	runErr := a.Downloads.Run(ctx, res.Transfer, res.response)

	// The run context may be canceled already; history is still written.
	recordCtx := context.WithoutCancel(ctx)
	if err := a.HistoryUC.Record(recordCtx, res.Transfer); err != nil {
		logging.FromContext(ctx).Warn().Err(err).Str("id", res.Transfer.ID).Msg("failed to record download")
	}
	return runErr
}

// History returns up to limit recorded downloads, newest first.
func (a *App) History(ctx context.Context, limit int) ([]*domaindl.Transfer, error) {
	return a.HistoryUC.Recent(ctx, limit)
}
