package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"photosort/internal/config"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan [source-dir]",
		Short: "Scan a source folder and start a new sort batch",
		Long: "Scan reads every image in the source folder, records a content hash for\n" +
			"each, and persists a new batch manifest with all images pending. The\n" +
			"hashes anchor integrity verification for every later sort and cleanup.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			source := cfg.Paths.SourceRoot
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				source, err = config.ExpandPath(args[0])
				if err != nil {
					return err
				}
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
			m, err := store.Create(cmd.Context(), source)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Created batch %s\n", m.ID)
			fmt.Fprintf(out, "Source: %s\n", m.SourcePath)
			fmt.Fprintf(out, "Images: %d\n", m.TotalImages)

			rows := make([][]string, 0, len(m.Images))
			for _, image := range m.Images {
				rows = append(rows, []string{image.Filename, shortHash(image.SourceHash)})
			}
			fmt.Fprintln(out, renderTable([]string{"Filename", "Hash"}, rows))
			return nil
		},
	}
}

func shortHash(digest string) string {
	if len(digest) > 12 {
		return digest[:12]
	}
	return digest
}
