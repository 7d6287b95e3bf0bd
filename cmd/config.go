package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/marcus/lightface/internal/config"
	"github.com/marcus/lightface/pkg/lightface"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(getProject())
		if err != nil {
			return err
		}
		if err := cfg.Dialog.Apply(lightface.DefaultConfig()).Validate(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "WARNING %v\n", err)
		}
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		p := getProject()
		if err := config.Save(p, config.Default()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "WROTE %s\n", p.ConfigPath())
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
