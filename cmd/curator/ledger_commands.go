package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newLedgerCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Inspect and manage the processed-items ledger",
	}
	cmd.AddCommand(newLedgerBucketsCommand(ctx))
	cmd.AddCommand(newLedgerClearCommand(ctx))
	return cmd
}

func newLedgerBucketsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "buckets <project-id>",
		Short: "List a project's buckets and item counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			projectID := strings.TrimSpace(args[0])
			buckets, err := sess.ledger.Buckets(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if len(buckets) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No buckets recorded for project %s.\n", projectID)
				return nil
			}

			rows := make([][]string, 0, len(buckets))
			for _, bucket := range buckets {
				rows = append(rows, []string{
					bucket.Key,
					bucket.DisplayName,
					strconv.Itoa(bucket.ItemCount),
					strconv.Itoa(len(bucket.ContributingRunIDs)),
					bucket.LastUpdatedAt.Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Bucket", "Name", "Items", "Runs", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newLedgerClearCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "clear <project-id>",
		Short: "Remove a project from the ledger",
		Long: `Deletes a project together with all of its processed identities and
buckets. This is the only way to make previously committed items
eligible for processing again.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("refusing to clear without --force: cleared identities become eligible for re-processing")
			}
			sess, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			projectID := strings.TrimSpace(args[0])
			removed, err := sess.ledger.ClearProject(cmd.Context(), projectID)
			if err != nil {
				return err
			}
			if !removed {
				fmt.Fprintf(cmd.OutOrStdout(), "Project %s not found.\n", projectID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s cleared.\n", projectID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Confirm the removal")
	return cmd
}
