package main

import (
	"bufio"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/pipeline"
	"curator/internal/verify"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var autoCommit bool
	var discard bool
	var targeted bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Verify, organize, and preview one batch of media",
		Long: `Runs one full pipeline pass: verification, deduplication against the
ledger, batched download, organizing, renaming, and manifest generation.
The run then parks for review; confirm to move items into the library
and record them in the ledger, or discard to leave the source untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if autoCommit && discard {
				return errors.New("--yes and --discard are mutually exclusive")
			}

			sess, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			mode := verify.ModeFull
			if targeted {
				mode = verify.ModeTargeted
			}
			if err := sess.orchestrator.Verify(runCtx, mode); err != nil {
				return err
			}

			stopProgress := startProgressPrinter(cmd, sess.orchestrator)
			runID, err := sess.orchestrator.StartRun(runCtx)
			stopProgress()
			if err != nil {
				if errors.Is(err, pipeline.ErrNothingToCommit) {
					fmt.Fprintln(cmd.OutOrStdout(), "Nothing to do: every eligible item is already in the ledger.")
					return nil
				}
				return err
			}

			state := sess.orchestrator.State()
			printPreview(cmd, state)

			switch {
			case discard:
				if err := sess.orchestrator.DiscardPreview(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Preview discarded; source left untouched.")
				return nil
			case !autoCommit:
				confirmed, err := confirmCommit(cmd)
				if err != nil {
					return err
				}
				if !confirmed {
					if err := sess.orchestrator.DiscardPreview(); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Preview discarded; source left untouched.")
					return nil
				}
			}

			if err := sess.orchestrator.ConfirmCommit(runCtx); err != nil {
				return fmt.Errorf("commit run %s: %w (staged items are retained, re-run with --yes to retry)", runID, err)
			}

			final := sess.orchestrator.State()
			fmt.Fprintf(cmd.OutOrStdout(), "Run %s committed: %d items, %d excluded.\n",
				runID, final.Counters.Processed, len(final.Exclusions))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&autoCommit, "yes", "y", false, "Commit without prompting for review")
	cmd.Flags().BoolVar(&discard, "discard", false, "Generate the preview, then discard it")
	cmd.Flags().BoolVar(&targeted, "targeted", false, "Re-verify only previously failed items")
	return cmd
}

// startProgressPrinter polls orchestrator state and prints stage
// transitions and download progress until stopped.
func startProgressPrinter(cmd *cobra.Command, orch *pipeline.Orchestrator) func() {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		var lastStatus pipeline.Status
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
			}
			state := orch.State()
			if state.Status == lastStatus {
				continue
			}
			lastStatus = state.Status
			line := fmt.Sprintf("[%d/%d] %s (%.0f%%)", state.StepIndex, state.TotalSteps, state.Status, state.ProgressPercent)
			if state.ETA != nil {
				line += fmt.Sprintf(" eta %s", state.ETA.Round(time.Second))
			}
			fmt.Fprintln(cmd.OutOrStdout(), line)
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

func printPreview(cmd *cobra.Command, state pipeline.State) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\nRun %s ready for review\n", state.RunID)
	fmt.Fprintf(out, "  Project:   %s\n", state.ProjectName)
	fmt.Fprintf(out, "  Items:     %d organized, %d excluded\n", state.Counters.Processed, len(state.Exclusions))
	if state.RemainingBeyondCap > 0 {
		fmt.Fprintf(out, "  Remaining: %d eligible items deferred to a follow-up run\n", state.RemainingBeyondCap)
	}
	if state.ManifestPath != "" {
		fmt.Fprintf(out, "  Manifest:  %s\n", state.ManifestPath)
	}
	if len(state.Exclusions) > 0 {
		rows := make([][]string, 0, len(state.Exclusions))
		for _, excl := range state.Exclusions {
			rows = append(rows, []string{excl.Name, excl.Stage, excl.Reason})
		}
		fmt.Fprintln(out, renderTable(
			[]string{"Excluded", "Stage", "Reason"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft},
		))
	}
}

func confirmCommit(cmd *cobra.Command) (bool, error) {
	fmt.Fprint(cmd.OutOrStdout(), "Commit this run to the library? [y/N]: ")
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
