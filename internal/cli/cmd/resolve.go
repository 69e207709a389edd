package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pagekit/internal/cli/styles"
	domaindl "github.com/bnema/pagekit/internal/domain/download"
	"github.com/bnema/pagekit/internal/infrastructure/download"
)

type probeFlags struct {
	saveAs       bool
	downloadAttr bool
	downloadName string
}

func (f *probeFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.saveAs, "save-as", false, "treat the request as an explicit \"save link as\"")
	cmd.Flags().BoolVar(&f.downloadAttr, "download-attr", false, "treat the link as an anchor carrying a download attribute")
	cmd.Flags().StringVar(&f.downloadName, "download-name", "", "value of the anchor download attribute (implies --download-attr)")
}

func (f *probeFlags) request(url string) download.ProbeRequest {
	pr := download.ProbeRequest{
		URL:                        url,
		UserAction:                 domaindl.ActionNavigate,
		AnchorHasDownloadAttribute: f.downloadAttr || f.downloadName != "",
		AnchorDownloadName:         f.downloadName,
	}
	if f.saveAs {
		pr.UserAction = domaindl.ActionExplicitSaveAs
	}
	return pr
}

var resolveFlags probeFlags

var resolveCmd = &cobra.Command{
	Use:   "resolve <url>",
	Short: "Show whether a response would be displayed or downloaded",
	Long: `Requests the URL, reads the headers and the first 512 bytes of the body
and prints the disposition decision: outcome, reason, MIME type and the
suggested filename. Nothing is written to disk.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveFlags.register(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	ctx, err := commandContext(cmd)
	if err != nil {
		return err
	}

	res, err := app.Decide(ctx, resolveFlags.request(args[0]))
	if err != nil {
		return err
	}
	defer func() { _ = res.Close() }()

	fmt.Println(styles.NewDownloadRenderer(app.Theme).RenderDecision(args[0], res.Status, res.Decision))
	return nil
}
