package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photosort/internal/cleanup"
	"photosort/internal/manifest"
)

func newCleanupCommand(ctx *commandContext) *cobra.Command {
	var batchID string
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete source files for sorted images after re-verifying each copy",
		Long: "Cleanup re-hashes every sorted image's destination and deletes the source\n" +
			"only on an exact match. Images that fail verification keep their source\n" +
			"and are marked for manual follow-up; the batch still completes.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			lock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			store, err := ctx.manifestStore()
			if err != nil {
				return err
			}
			m, err := resolveCleanupManifest(ctx, store, batchID)
			if err != nil {
				return err
			}
			if m.Status != manifest.StatusConfirming && m.Status != manifest.StatusCleaning {
				return fmt.Errorf("batch %s is %s; cleanup requires every image to be processed first", m.ID, m.Status)
			}

			out := cmd.OutOrStdout()
			sorted := m.CountByStatus(manifest.ImageSorted)
			if !assumeYes {
				fmt.Fprintf(out, "Delete source files for %d sorted image(s) in %s? [y/N] ", sorted, m.SourcePath)
				scanner := bufio.NewScanner(cmd.InOrStdin())
				if !scanner.Scan() || !isAffirmative(scanner.Text()) {
					fmt.Fprintln(out, "Cleanup cancelled")
					return nil
				}
			}

			engine := cleanup.NewEngine(store, logger)
			result, err := engine.Run(cmd.Context(), m)
			if err != nil {
				return err
			}

			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderStatusLine("Cleaned", statusOK, fmt.Sprintf("%d source file(s) deleted", result.CleanedCount), colorize))
			if result.FailedCount > 0 {
				fmt.Fprintln(out, renderStatusLine("Preserved", statusWarn, fmt.Sprintf("%d source file(s) kept", result.FailedCount), colorize))
				for _, warning := range result.Warnings {
					fmt.Fprintln(out, renderStatusLine("Warning", statusWarn, warning, colorize))
				}
			}
			fmt.Fprintln(out, renderStatusLine("Batch", statusOK, "completed", colorize))
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch id (defaults to the active batch)")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

// resolveCleanupManifest prefers the active batch but falls back to a batch
// stranded in cleaning, so an interrupted cleanup run can be resumed by
// simply re-running the command. The engine skips already-cleaned images.
func resolveCleanupManifest(ctx *commandContext, store *manifest.Store, batchID string) (*manifest.Manifest, error) {
	if strings.TrimSpace(batchID) != "" {
		return ctx.resolveManifest(store, batchID)
	}
	m, err := store.Active()
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}
	m, err = store.Cleaning()
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no active batch; run `photosort scan` first")
	}
	return m, nil
}

func isAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
