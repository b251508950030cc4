package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"photosort/internal/manifest"
)

func newUndoCommand(ctx *commandContext) *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "undo <filename>",
		Short: "Return an image to pending for another sort attempt",
		Long: "Undo resets one image to pending, clearing its sort outcome in the\n" +
			"manifest. Files already copied to the archive are left in place; a\n" +
			"subsequent sort to the same destination reports a conflict.",
		Args: cobra.ExactArgs(1),
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

			image := m.Image(args[0])
			if image == nil {
				return fmt.Errorf("%s is not part of batch %s", args[0], m.ID)
			}
			if image.Status == manifest.ImageCleaned {
				return fmt.Errorf("%s was cleaned; its source no longer exists", args[0])
			}

			if err := store.UpdateImage(m, args[0], manifest.ImageUpdate{Status: manifest.ImagePending}); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s to pending\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch id (defaults to the active batch)")

	return cmd
}
