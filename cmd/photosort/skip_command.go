package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photosort/internal/manifest"
)

func newSkipCommand(ctx *commandContext) *cobra.Command {
	var batchID string
	var reason string

	cmd := &cobra.Command{
		Use:   "skip <filename>",
		Short: "Mark an image as skipped so the batch can complete without it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lock, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer func() { _ = lock.Release() }()

			store, err := ctx.manifestStore()
			if err != nil {
				return err
			}
			m, err := ctx.resolveManifest(store, batchID)
			if err != nil {
				return err
			}

			update := manifest.ImageUpdate{Status: manifest.ImageSkipped}
			if reason != "" {
				update.SkipReason = &reason
			}
			if err := store.UpdateImage(m, args[0], update); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Skipped %s\n", args[0])
			if m.Status == manifest.StatusConfirming {
				fmt.Fprintln(out, "All images processed; run `photosort cleanup` when ready")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch id (defaults to the active batch)")
	cmd.Flags().StringVar(&reason, "reason", "", "Why the image is being skipped")

	return cmd
}
