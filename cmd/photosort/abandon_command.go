package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAbandonCommand(ctx *commandContext) *cobra.Command {
	var batchID string

	cmd := &cobra.Command{
		Use:   "abandon",
		Short: "Abandon the active batch without touching any files",
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

			if err := store.Abandon(m); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Abandoned batch %s; source files were not modified\n", m.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch id (defaults to the active batch)")

	return cmd
}
