// Package download probes responses and streams accepted transfers to disk.
package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/pagekit/internal/application/port"
	domaindl "github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/logging"
)

const (
	// DefaultRequestTimeout bounds the wait for response headers.
	DefaultRequestTimeout = 30 * time.Second

	sniffLen   = 512
	copyBuffer = 32 * 1024
	userAgent  = "pagekit/1.0"
)

// ProbeRequest describes how the user reached a URL.
type ProbeRequest struct {
	URL                        string
	UserAction                 domaindl.UserAction
	AnchorHasDownloadAttribute bool
	AnchorDownloadName         string
}

// Response is an open response whose headers and first bytes were read.
// Its body still yields the sniffed prefix. Close must be called.
type Response struct {
	Descriptor port.ResponseDescriptor
	body       io.Reader
	closer     io.Closer
}

// Close releases the underlying connection.
func (r *Response) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// Handler issues requests and runs accepted transfers.
type Handler struct {
	client       *http.Client
	fs           port.FileSystem
	eventHandler port.DownloadEventHandler
	mu           sync.RWMutex
}

// NewHandler creates a handler. timeout bounds the wait for response headers
// only; body transfer is limited by the caller's context.
func NewHandler(timeout time.Duration, fs port.FileSystem, handler port.DownloadEventHandler) *Handler {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout

	return &Handler{
		client:       &http.Client{Transport: transport},
		fs:           fs,
		eventHandler: handler,
	}
}

// WithClient replaces the HTTP client.
func (h *Handler) WithClient(client *http.Client) *Handler {
	h.client = client
	return h
}

// SetEventHandler replaces the event handler.
func (h *Handler) SetEventHandler(handler port.DownloadEventHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.eventHandler = handler
}

// Probe sends the request and reads the headers and up to 512 body bytes.
func (h *Handler) Probe(ctx context.Context, pr ProbeRequest) (*Response, error) {
	log := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pr.URL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pr.URL, err)
	}

	sniff, readErr := readPrefix(resp.Body, sniffLen)
	var rest io.Reader = resp.Body
	switch {
	case errors.Is(readErr, io.EOF):
		rest = bytes.NewReader(nil)
	case readErr != nil:
		// Replayed to Run so the transfer is interrupted, not truncated.
		rest = errReader{err: readErr}
	}

	desc := port.ResponseDescriptor{
		URL:                        resp.Request.URL.String(),
		StatusCode:                 resp.StatusCode,
		UserAction:                 pr.UserAction,
		AnchorHasDownloadAttribute: pr.AnchorHasDownloadAttribute,
		AnchorDownloadName:         pr.AnchorDownloadName,
		ContentType:                resp.Header.Get("Content-Type"),
		ContentDisposition:         resp.Header.Get("Content-Disposition"),
		ContentLength:              resp.ContentLength,
		Sniff:                      sniff,
	}

	log.Debug().
		Str("url", desc.URL).
		Int("status", desc.StatusCode).
		Str("content_type", desc.ContentType).
		Str("disposition", desc.ContentDisposition).
		Int64("length", desc.ContentLength).
		Msg("probed response")

	return &Response{
		Descriptor: desc,
		body:       io.MultiReader(bytes.NewReader(sniff), rest),
		closer:     resp.Body,
	}, nil
}

// Run streams resp into the accepted transfer's path. The transfer ends
// Completed or Interrupted; on interruption the partial file is removed and
// the cause is returned. resp is closed.
func (h *Handler) Run(ctx context.Context, transfer *domaindl.Transfer, resp *Response) error {
	defer func() { _ = resp.Close() }()

	log := logging.FromContext(ctx)

	if err := transfer.Start(resp.Descriptor.ContentLength); err != nil {
		return err
	}
	h.emit(ctx, transfer, port.DownloadEventStarted, nil)
	log.Info().
		Str("transfer", transfer.ID).
		Str("destination", transfer.Path).
		Msg("download started")

	if code := resp.Descriptor.StatusCode; code >= http.StatusBadRequest {
		return h.fail(ctx, transfer, serverInterrupt(code), fmt.Errorf("server returned status %d", code), false)
	}

	w, err := h.fs.Create(ctx, transfer.Path)
	if err != nil {
		return h.fail(ctx, transfer, fileInterrupt(err), err, false)
	}

	buf := make([]byte, copyBuffer)
	for {
		if ctx.Err() != nil {
			_ = w.Close()
			return h.fail(ctx, transfer, contextInterrupt(ctx.Err()), ctx.Err(), true)
		}

		n, readErr := resp.body.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				_ = w.Close()
				return h.fail(ctx, transfer, fileInterrupt(err), err, true)
			}
			_ = transfer.Progress(int64(n))
			h.emit(ctx, transfer, port.DownloadEventProgress, nil)
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			_ = w.Close()
			return h.fail(ctx, transfer, networkInterrupt(ctx, readErr), readErr, true)
		}
	}

	if err := w.Close(); err != nil {
		return h.fail(ctx, transfer, fileInterrupt(err), err, true)
	}
	if transfer.TotalBytes != domaindl.UnknownTotal && transfer.ReceivedBytes < transfer.TotalBytes {
		return h.fail(ctx, transfer, domaindl.InterruptNetworkFailed, io.ErrUnexpectedEOF, true)
	}
	if err := transfer.Complete(); err != nil {
		return err
	}

	h.emit(ctx, transfer, port.DownloadEventFinished, nil)
	log.Info().
		Str("transfer", transfer.ID).
		Int64("bytes", transfer.ReceivedBytes).
		Msg("download finished")
	return nil
}

func (h *Handler) fail(ctx context.Context, transfer *domaindl.Transfer, reason domaindl.InterruptReason, cause error, removePartial bool) error {
	if err := transfer.Interrupt(reason); err != nil {
		return err
	}
	if removePartial {
		if err := h.fs.Remove(ctx, transfer.Path); err != nil {
			logging.FromContext(ctx).Debug().Err(err).Str("path", transfer.Path).Msg("failed to remove partial download")
		}
	}

	err := fmt.Errorf("download %s: %s: %w", transfer.ID, reason, cause)
	h.emit(ctx, transfer, port.DownloadEventFailed, err)
	logging.FromContext(ctx).Warn().
		Err(cause).
		Str("transfer", transfer.ID).
		Str("reason", reason.String()).
		Msg("download interrupted")
	return err
}

func (h *Handler) emit(ctx context.Context, transfer *domaindl.Transfer, typ port.DownloadEventType, err error) {
	h.mu.RLock()
	handler := h.eventHandler
	h.mu.RUnlock()
	if handler == nil {
		return
	}

	handler.OnDownloadEvent(ctx, port.DownloadEvent{
		Type:          typ,
		TransferID:    transfer.ID,
		Filename:      domaindl.ExtractFilenameFromDestination(transfer.Path),
		Destination:   transfer.Path,
		State:         transfer.State,
		ReceivedBytes: transfer.ReceivedBytes,
		TotalBytes:    transfer.TotalBytes,
		Interrupt:     transfer.InterruptReason,
		Error:         err,
	})
}

func serverInterrupt(status int) domaindl.InterruptReason {
	switch status {
	case http.StatusNotFound, http.StatusGone:
		return domaindl.InterruptServerBadContent
	default:
		return domaindl.InterruptServerFailed
	}
}

func fileInterrupt(err error) domaindl.InterruptReason {
	switch {
	case errors.Is(err, os.ErrPermission):
		return domaindl.InterruptFileAccessDenied
	case errors.Is(err, syscall.ENOSPC):
		return domaindl.InterruptFileNoSpace
	default:
		return domaindl.InterruptFileFailed
	}
}

func contextInterrupt(err error) domaindl.InterruptReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return domaindl.InterruptNetworkTimeout
	}
	return domaindl.InterruptUserCanceled
}

func networkInterrupt(ctx context.Context, err error) domaindl.InterruptReason {
	if ctx.Err() != nil {
		return contextInterrupt(ctx.Err())
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domaindl.InterruptNetworkTimeout
	}
	return domaindl.InterruptNetworkFailed
}

// readPrefix reads up to n bytes. It returns io.EOF when the body ended
// within the prefix.
func readPrefix(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	read := 0
	for read < n {
		m, err := r.Read(buf[read:])
		read += m
		if err != nil {
			return buf[:read], err
		}
	}
	return buf, nil
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
