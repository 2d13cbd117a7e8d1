package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thurmanmarka/retroglide/internal/config"
)

var configInitForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the retroglide config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	Long: `init writes the effective configuration (defaults, environment and flags)
to --config, or to .retroglide.toml in the working directory.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{optionalConfig: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := globalFlags.Config
		if path == "" {
			path = config.FileName + "." + config.FileType
		}
		if err := config.WriteFile(path, cfg.File(), configInitForce); err != nil {
			return err
		}
		abs, _ := filepath.Abs(path)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", abs)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if f := v.ConfigFileUsed(); f != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "# loaded from %s\n", f)
		}
		data, err := config.Marshal(cfg.File())
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
