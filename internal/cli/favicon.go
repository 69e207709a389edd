package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/domain/favicon"
	faviconinfra "github.com/bnema/pagekit/internal/infrastructure/favicon"
	"github.com/bnema/pagekit/internal/logging"
)

// PageIcons is the outcome of favicon discovery for one page.
type PageIcons struct {
	Page       string
	Candidates []favicon.Candidate
	// Best is the URL of the icon kept for the page, empty when none decoded.
	Best string
	Size favicon.Size
	// Path is where the exported PNG is written.
	Path string
	Err  error
}

// CollectFavicons discovers and fetches the icons of every page, at most
// Favicon.Concurrency pages at a time. Each entry is its own document, so a
// page listed twice is collected twice.
// Per-page failures are reported in the result; the returned error is only
// set when ctx ends.
func (a *App) CollectFavicons(ctx context.Context, pages []string) ([]PageIcons, error) {
	results := make([]PageIcons, len(pages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.Config.Favicon.Concurrency)

	for i, page := range pages {
		g.Go(func() error {
			results[i] = a.collectPage(gctx, page)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, ctx.Err()
}

func (a *App) collectPage(ctx context.Context, page string) PageIcons {
	docID := uuid.NewString()
	ctx = logging.WithURL(logging.WithDocumentID(ctx, docID), page)
	log := logging.FromContext(ctx)
	result := PageIcons{Page: page}

	candidates, err := a.FaviconService.Fetcher.Discover(ctx, page)
	if err != nil {
		result.Err = fmt.Errorf("discover icons: %w", err)
		return result
	}

	uc := a.FaviconsUC
	defer uc.CloseDocument(ctx, docID)

	uc.OnFaviconURLsUpdated(ctx, docID, candidates)

	// Each fallback candidate may cost one fetch timeout.
	waitCtx, cancel := context.WithTimeout(ctx, time.Duration(len(candidates)+1)*millis(a.Config.Favicon.FetchTimeoutMs))
	defer cancel()
	if err := uc.WaitIdle(waitCtx, docID); err != nil {
		log.Warn().Err(err).Msg("favicon fetches did not settle")
	}

	result.Candidates = uc.FaviconInfoList(docID, true)
	icon := uc.Icon(docID, "")
	if !icon.IsNull() {
		result.Best = icon.URL
		result.Size = icon.Size
		result.Path = a.FaviconService.Cache.DiskPath(icon.URL)
	}

	stats := uc.Stats(docID)
	log.Debug().
		Int("candidates", stats.Candidates).
		Int("failed", stats.Failed).
		Int("cached", stats.Cached).
		Str("best", result.Best).
		Msg("favicon page done")

	return result
}

// ExportIcons copies the kept icon of every successful page into dir as
// <host>.png, rescaled to size. Existing files are overwritten; pages
// sharing a host within one call get numbered names.
// The Path of each exported result is updated to the copy.
func (a *App) ExportIcons(ctx context.Context, results []PageIcons, dir string, size int) error {
	if size <= 0 {
		size = faviconinfra.DefaultExportSize
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	log := logging.FromContext(ctx)
	taken := make(map[string]bool)
	exists := func(path string) bool { return taken[path] }

	for i := range results {
		r := &results[i]
		if r.Err != nil || r.Best == "" {
			continue
		}
		data, ok := a.FaviconService.Cache.Get(r.Best)
		if !ok {
			log.Warn().Str("page", r.Page).Str("icon", r.Best).Msg("kept icon is no longer cached")
			continue
		}
		dst := filepath.Join(dir, download.MakeUniqueFilename(dir, exportName(r.Page), exists))
		taken[dst] = true
		if err := faviconinfra.ResizePNG(data, dst, size); err != nil {
			return fmt.Errorf("export icon of %s: %w", r.Page, err)
		}
		log.Debug().Str("page", r.Page).Str("path", dst).Int("size", size).Msg("icon exported")
		r.Path = dst
	}
	return nil
}

func exportName(page string) string {
	name := "page"
	if u, err := url.Parse(page); err == nil && u.Hostname() != "" {
		name = u.Hostname()
	}
	return download.SanitizeFilename(name) + ".png"
}
