package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/pagekit/internal/cli/styles"
	"github.com/bnema/pagekit/internal/infrastructure/config"
)

var schemaWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `Show the config file location, print its JSON schema or change a setting.`,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}
		fmt.Println(styles.NewConfigRenderer(app.Theme).RenderConfigPath(app.Manager.GetConfigFile()))
		return nil
	},
}

var configSchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of config.toml",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}
		if schemaWrite {
			path, err := app.Manager.WriteSchemaFile()
			if err != nil {
				return err
			}
			fmt.Println(styles.NewConfigRenderer(app.Theme).RenderSchemaWritten(path))
			return nil
		}

		data, err := config.Schema()
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting, e.g. favicon.touch_icons_enabled true",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("app not initialized")
		}
		renderer := styles.NewConfigRenderer(app.Theme)
		if err := app.Manager.Set(args[0], args[1]); err != nil {
			fmt.Println(renderer.RenderError(err))
			return err
		}
		fmt.Println(renderer.RenderSet(args[0], args[1]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSchemaCmd)
	configCmd.AddCommand(configSetCmd)
	configSchemaCmd.Flags().BoolVar(&schemaWrite, "write", false, "write config.schema.json next to config.toml")
}
