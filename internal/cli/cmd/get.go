package cmd

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/bnema/pagekit/internal/application/port"
	"github.com/bnema/pagekit/internal/cli"
	"github.com/bnema/pagekit/internal/cli/model"
	"github.com/bnema/pagekit/internal/cli/styles"
)

var (
	getFlags      probeFlags
	getNavigate   bool
	getNoProgress bool
)

var getCmd = &cobra.Command{
	Use:   "get <url>",
	Short: "Download a URL into the download directory",
	Long: `Requests the URL as an explicit "save link as" and streams it into
downloads.path. The destination name comes from the download attribute,
Content-Disposition or the URL path, and never overwrites an existing file.

With --navigate the request is a plain link activation: the response is only
saved when the disposition rules say so.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
	getFlags.register(getCmd)
	getCmd.Flags().BoolVar(&getNavigate, "navigate", false, "resolve as a plain link activation instead of save-as")
	getCmd.Flags().BoolVar(&getNoProgress, "no-progress", false, "do not show the progress view")
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx, err := commandContext(cmd)
	if err != nil {
		return err
	}

	flags := getFlags
	if !getNavigate {
		flags.saveAs = true
	}

	res, err := app.Resolve(ctx, flags.request(args[0]))
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	renderer := styles.NewDownloadRenderer(app.Theme)
	fmt.Println(renderer.RenderDecision(args[0], res.Status, res.Decision))
	if res.Transfer == nil {
		return nil
	}

	if getNoProgress {
		err = app.Save(ctx, res, nil)
	} else {
		err = saveWithProgress(ctx, app, res)
	}

	fmt.Println(renderer.RenderTransfer(res.Transfer))
	return err
}

func saveWithProgress(ctx context.Context, a *cli.App, res *cli.Resolution) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(model.NewDownloadModel(a.Theme, res.Decision.SuggestedFilename, cancel))

	saved := make(chan error, 1)
	go func() {
		err := a.Save(runCtx, res, port.DownloadEventHandlerFunc(func(_ context.Context, e port.DownloadEvent) {
			p.Send(model.DownloadEventMsg{Event: e})
		}))
		saved <- err
		p.Send(model.DownloadDoneMsg{Err: err})
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-saved
		return fmt.Errorf("progress view: %w", err)
	}
	return <-saved
}
