package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pagekit/internal/cli/styles"
	"github.com/bnema/pagekit/internal/domain/build"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		theme := styles.NewTheme()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s %s\n", theme.Title.Render("pagekit"), theme.AccentBadge(buildInfo.Short()))
		fmt.Fprintf(out, "  commit  %s\n", theme.Subtle.Render(buildInfo.Commit))
		fmt.Fprintf(out, "  built   %s\n", theme.Subtle.Render(buildInfo.BuildDate))
		fmt.Fprintf(out, "  go      %s\n", theme.Subtle.Render(buildInfo.GoVersion))
		fmt.Fprintf(out, "  %s\n", theme.Subtle.Render(build.RepoURL()))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
