package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the curator configuration file",
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write a sample configuration file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = strings.TrimSpace(args[0])
			}
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			} else {
				expanded, err := config.ExpandPath(path)
				if err != nil {
					return err
				}
				path = expanded
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration written to %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			rows := [][]string{
				{"staging_dir", cfg.Paths.StagingDir},
				{"library_dir", cfg.Paths.LibraryDir},
				{"ledger_dir", cfg.Paths.LedgerDir},
				{"log_dir", cfg.Paths.LogDir},
				{"source_root", cfg.Source.Root},
				{"source_scope", cfg.Source.Scope},
				{"max_items_per_run", fmt.Sprintf("%d", cfg.Pipeline.MaxItemsPerRun)},
				{"download_batch_size", fmt.Sprintf("%d", cfg.Pipeline.DownloadBatchSize)},
				{"batch_pause_seconds", fmt.Sprintf("%d", cfg.Pipeline.BatchPauseSeconds)},
				{"bucket_strategy", cfg.Pipeline.BucketStrategy},
				{"retry_attempts", fmt.Sprintf("%d", cfg.Extraction.RetryAttempts)},
				{"retry_base_seconds", fmt.Sprintf("%d", cfg.Extraction.RetryBaseSeconds)},
				{"ntfy_configured", yesNo(cfg.Notifications.NtfyTopic != "")},
				{"log_format", cfg.Logging.Format},
				{"log_level", cfg.Logging.Level},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Setting", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft},
			))
			return nil
		},
	}
}
