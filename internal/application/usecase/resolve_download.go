package usecase

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/logging"
)

// ResolveDownloadInput is a response waiting for a display/download decision.
type ResolveDownloadInput struct {
	Response    port.ResponseDescriptor
	DownloadDir string
}

// ResolveDownloadOutput holds the decision and, for downloads, the accepted
// transfer. Transfer is nil when the response is displayed.
type ResolveDownloadOutput struct {
	Decision download.Decision
	Transfer *download.Transfer
}

// ResolveDownloadUseCase decides whether a response is rendered or saved and
// prepares the transfer for saved responses.
type ResolveDownloadUseCase struct {
	prepare              *PrepareDownloadUseCase
	downloadUnrenderable atomic.Bool
}

// NewResolveDownloadUseCase creates the use case. prepare may be nil, in
// which case decisions are made but no transfer is created.
func NewResolveDownloadUseCase(prepare *PrepareDownloadUseCase, downloadUnrenderable bool) *ResolveDownloadUseCase {
	uc := &ResolveDownloadUseCase{prepare: prepare}
	uc.downloadUnrenderable.Store(downloadUnrenderable)
	return uc
}

// SetDownloadUnrenderable toggles saving of responses that cannot be shown inline.
func (uc *ResolveDownloadUseCase) SetDownloadUnrenderable(enabled bool) {
	uc.downloadUnrenderable.Store(enabled)
}

// Decide classifies a response without preparing anything.
func (uc *ResolveDownloadUseCase) Decide(resp port.ResponseDescriptor) download.Decision {
	return download.Resolve(download.Input{
		URL:                        resp.URL,
		UserAction:                 resp.UserAction,
		AnchorHasDownloadAttribute: resp.AnchorHasDownloadAttribute,
		AnchorDownloadName:         resp.AnchorDownloadName,
		ContentDisposition:         resp.ContentDisposition,
		ContentType:                resp.ContentType,
		Body:                       resp.Sniff,
		DownloadUnrenderable:       uc.downloadUnrenderable.Load(),
	})
}

// Execute decides the response and, when it is a download, resolves the
// destination and returns an accepted transfer.
func (uc *ResolveDownloadUseCase) Execute(ctx context.Context, input ResolveDownloadInput) (*ResolveDownloadOutput, error) {
	ctx = logging.WithURL(ctx, input.Response.URL)
	log := logging.FromContext(ctx)

	decision := uc.Decide(input.Response)
	log.Debug().
		Str("outcome", decision.Outcome.String()).
		Str("reason", decision.Reason.String()).
		Str("mime", decision.MimeType).
		Msg("resolved response disposition")

	out := &ResolveDownloadOutput{Decision: decision}
	if decision.Outcome != download.OutcomeDownload || uc.prepare == nil {
		return out, nil
	}

	dest, err := uc.prepare.Execute(ctx, PrepareDownloadInput{
		SuggestedFilename: decision.SuggestedFilename,
		Response:          decisionResponse{decision: decision, uri: input.Response.URL},
		DownloadDir:       input.DownloadDir,
	})
	if err != nil {
		return nil, err
	}

	transfer := download.NewTransfer(uuid.NewString(), input.Response.URL, decision)
	if err := transfer.Accept(dest.DestinationPath); err != nil {
		return nil, fmt.Errorf("accept transfer: %w", err)
	}
	if input.Response.ContentLength >= 0 {
		transfer.TotalBytes = input.Response.ContentLength
	}
	out.Transfer = transfer

	log.Info().
		Str("transfer", transfer.ID).
		Str("path", transfer.Path).
		Msg("download accepted")

	return out, nil
}

// decisionResponse adapts a decision to port.DownloadResponse.
type decisionResponse struct {
	decision download.Decision
	uri      string
}

func (r decisionResponse) GetMimeType() string          { return r.decision.MimeType }
func (r decisionResponse) GetSuggestedFilename() string { return r.decision.SuggestedFilename }
func (r decisionResponse) GetUri() string               { return r.uri }
