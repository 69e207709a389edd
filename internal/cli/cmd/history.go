package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pagekit/internal/cli/styles"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded downloads",
	Long: `Lists finished downloads, newest first. Recording is controlled by
downloads.history_enabled in config.toml.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, err := commandContext(cmd)
		if err != nil {
			return err
		}
		if !app.HistoryUC.Enabled() {
			return fmt.Errorf("download history is disabled (downloads.history_enabled = false)")
		}

		transfers, err := app.History(ctx, historyLimit)
		if err != nil {
			return err
		}
		fmt.Println(styles.NewDownloadRenderer(app.Theme).RenderHistory(transfers))
		return nil
	},
}

var historyForgetCmd = &cobra.Command{
	Use:   "forget <id>",
	Short: "Remove one recorded download",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, err := commandContext(cmd)
		if err != nil {
			return err
		}
		return app.HistoryUC.Forget(ctx, args[0])
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every recorded download",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, err := commandContext(cmd)
		if err != nil {
			return err
		}
		n, err := app.HistoryUC.Clear(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("  %s %d records removed\n", app.Theme.SuccessStyle.Render(styles.IconCheck), n)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyForgetCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of downloads to list")
}
