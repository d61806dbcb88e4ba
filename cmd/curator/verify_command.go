package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"curator/internal/verify"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Probe source items for trusted capture timestamps",
		Long: `Lists the configured source scope and extracts capture metadata for
every item. Items without an embedded original capture date are reported
as unverifiable; they are never given a fallback date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := sess.orchestrator.Verify(runCtx, verify.ModeFull); err != nil {
				return err
			}

			results := sess.orchestrator.VerificationResults()
			rows := make([][]string, 0, len(results))
			for _, res := range results {
				captured := ""
				if !res.CapturedAt.IsZero() {
					captured = res.CapturedAt.Format("2006-01-02 15:04:05")
				}
				detail := res.ErrorDetail
				rows = append(rows, []string{
					res.Item.Name,
					string(res.Status),
					captured,
					detail,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Item", "Status", "Captured", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))

			counts := sess.orchestrator.VerificationCounts()
			fmt.Fprintf(cmd.OutOrStdout(), "%d verified, %d unverifiable, %d errors\n",
				counts[verify.StatusVerified],
				counts[verify.StatusUnverifiable],
				counts[verify.StatusError],
			)
			return nil
		},
	}
	return cmd
}
