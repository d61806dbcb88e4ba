package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger projects and their totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			projects, err := sess.ledger.Projects(cmd.Context())
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No projects recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, project := range projects {
				updated := ""
				if !project.LastUpdatedAt.IsZero() {
					updated = project.LastUpdatedAt.Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{
					project.Name,
					project.ID,
					strconv.Itoa(project.TotalRunsCompleted),
					strconv.Itoa(project.TotalItemsProcessed),
					updated,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Project", "ID", "Runs", "Items", "Updated"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
	return cmd
}
