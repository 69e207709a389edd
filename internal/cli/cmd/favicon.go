package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pagekit/internal/cli/styles"
)

var (
	faviconWatch bool
	faviconOut   string
	faviconSize  int
)

var faviconCmd = &cobra.Command{
	Use:   "favicon <url>...",
	Short: "Discover, fetch and export the icons of pages",
	Long: `Downloads each page, collects its <link rel="icon"> style candidates,
fetches the best one (falling back to the next on failure) and exports it as
a square PNG into the favicon cache directory.

Pages are processed concurrently, bounded by favicon.concurrency.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFavicon,
}

func init() {
	rootCmd.AddCommand(faviconCmd)
	faviconCmd.Flags().BoolVarP(&faviconWatch, "watch-config", "w", false, "apply config file changes while running")
	faviconCmd.Flags().StringVarP(&faviconOut, "out", "o", "", "also copy each kept icon into this directory as <host>.png")
	faviconCmd.Flags().IntVarP(&faviconSize, "size", "s", 0, "edge length of copies written with --out (default favicon.export_size)")
}

func runFavicon(cmd *cobra.Command, args []string) error {
	ctx, err := commandContext(cmd)
	if err != nil {
		return err
	}
	if faviconWatch {
		if err := app.Watch(); err != nil {
			return err
		}
	}

	results, err := app.CollectFavicons(ctx, args)
	if err == nil && faviconOut != "" {
		size := faviconSize
		if size <= 0 {
			size = app.Config.Favicon.ExportSize
		}
		if exportErr := app.ExportIcons(ctx, results, faviconOut, size); exportErr != nil {
			return exportErr
		}
	}

	renderer := styles.NewFaviconRenderer(app.Theme)
	failed := 0
	for _, r := range results {
		if r.Page == "" {
			continue
		}
		if r.Err != nil {
			failed++
			fmt.Println(renderer.RenderPageError(r.Page, r.Err))
			continue
		}
		fmt.Println(renderer.RenderPage(r.Page, r.Candidates, r.Best, r.Size, r.Path))
	}

	if err != nil {
		return err
	}
	if failed == len(args) {
		return fmt.Errorf("no page could be processed")
	}
	return nil
}
