package main

import (
	"context"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"curator/internal/extraction"
	"curator/internal/media"
	"curator/internal/tasks"
	"curator/internal/verify"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run a bulk metadata extraction over the source scope",
		Long: `Submits a background extraction task covering every item in the
configured scope and reports the capture dates found. Useful for sizing
a run before starting the pipeline.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := ctx.openSession()
			if err != nil {
				return err
			}
			defer sess.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			items, err := sess.store.List(runCtx, sess.cfg.Source.Scope)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No media items found in scope.")
				return nil
			}

			client := extraction.NewClient(sess.store,
				extraction.WithMaxAttempts(sess.cfg.Extraction.RetryAttempts),
				extraction.WithBaseDelay(time.Duration(sess.cfg.Extraction.RetryBaseSeconds)*time.Second),
			)

			var mu sync.Mutex
			results := make(map[string]media.Metadata, len(items))

			registry := tasks.NewRegistry(sess.logger)
			defer registry.Shutdown()

			taskID := registry.Submit("bulk extraction", tasks.KindBulkExtraction, len(items),
				func(unitCtx context.Context, unit int) error {
					meta, err := client.Extract(unitCtx, items[unit].Identity)
					if err != nil {
						return fmt.Errorf("extract %s: %w", items[unit].Identity, err)
					}
					mu.Lock()
					results[items[unit].Identity] = meta
					mu.Unlock()
					return nil
				})

			if err := waitForTask(runCtx, registry, taskID, cmd); err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			rows := make([][]string, 0, len(items))
			withDate := 0
			for _, item := range items {
				meta, ok := results[item.Identity]
				captured := ""
				if ok && meta.HasCaptureTime() {
					captured = meta.CapturedAt.Format("2006-01-02 15:04:05")
					withDate++
				} else {
					captured = verify.ReasonNoCaptureDate
				}
				rows = append(rows, []string{item.Name, captured, meta.DeviceMake, meta.DeviceModel})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Item", "Captured", "Make", "Model"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d items carry an original capture date.\n", withDate, len(items))
			return nil
		},
	}
	return cmd
}

// waitForTask polls the registry until the task finishes, printing
// progress as it goes.
func waitForTask(ctx context.Context, registry *tasks.Registry, taskID string, cmd *cobra.Command) error {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	lastProcessed := -1
	for {
		select {
		case <-ctx.Done():
			_ = registry.Cancel(taskID)
			return ctx.Err()
		case <-ticker.C:
		}

		task, ok := registry.Get(taskID)
		if !ok {
			return fmt.Errorf("extraction task vanished")
		}
		if task.ProcessedUnits != lastProcessed {
			lastProcessed = task.ProcessedUnits
			fmt.Fprintf(cmd.OutOrStdout(), "extracted %d/%d\n", task.ProcessedUnits, task.TotalUnits)
		}
		switch task.Status {
		case tasks.StatusCompleted:
			return nil
		case tasks.StatusFailed:
			return fmt.Errorf("bulk extraction failed: %s", task.ErrorDetail)
		}
	}
}
