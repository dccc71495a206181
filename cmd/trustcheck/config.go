package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"xrpl-trustcheck/internal/config"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or scaffold configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a YAML config file with every default filled in",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "trustcheck.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config written to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration and whether it is complete",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := resolveConfig(cmd, *flags)
			if err != nil {
				return err
			}
			printSummary(cmd, cfg)
			return cfg.Validate()
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func printSummary(cmd *cobra.Command, cfg *config.Config) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "--- Configuration Summary ---")
	fmt.Fprintf(out, "Ledger websocket: %s\n", orUnset(cfg.Ledger.WebsocketURL))
	fmt.Fprintf(out, "Token currency: %s\n", orUnset(cfg.Token.Currency))
	fmt.Fprintf(out, "Token issuer: %s\n", orUnset(cfg.Token.Issuer))
	fmt.Fprintf(out, "Input CSV: %s\n", cfg.Files.InputCSV)
	fmt.Fprintf(out, "Output CSV: %s\n", cfg.Files.OutputCSV)
	if cfg.Files.JournalPath != "" {
		fmt.Fprintf(out, "Journal: %s\n", cfg.Files.JournalPath)
	}
	fmt.Fprintf(out, "Request timeout: %s\n", cfg.Ledger.RequestTimeout())
}

func orUnset(v string) string {
	if v == "" {
		return "(unset)"
	}
	return v
}
