package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"photosort/internal/manifest"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var batchID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the state of the active batch",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.manifestStore()
			if err != nil {
				return err
			}
			m, err := ctx.resolveManifest(store, batchID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				data, err := json.MarshalIndent(m, "", "  ")
				if err != nil {
					return fmt.Errorf("encode batch: %w", err)
				}
				fmt.Fprintln(out, string(data))
				return nil
			}

			colorize := shouldColorize(out)
			fmt.Fprintln(out, renderBatchHeader(m.ID, colorize))
			fmt.Fprintln(out, renderStatusLine("Source", statusInfo, m.SourcePath, colorize))
			fmt.Fprintln(out, renderStatusLine("Status", batchStatusKind(m.Status), string(m.Status), colorize))
			fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, progressSummary(m), colorize))

			rows := make([][]string, 0, len(m.Images))
			for _, image := range m.Images {
				detail := ""
				switch {
				case image.DestinationPath != nil:
					detail = *image.DestinationPath
				case image.SkipReason != "":
					detail = image.SkipReason
				}
				rows = append(rows, []string{image.Filename, string(image.Status), detail})
			}
			fmt.Fprintln(out, renderTable([]string{"Filename", "Status", "Detail"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&batchID, "batch", "", "Batch id (defaults to the active batch)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the raw batch manifest as JSON")

	return cmd
}

func progressSummary(m *manifest.Manifest) string {
	processed := 0
	for i := range m.Images {
		if m.Images[i].Status.Terminal() {
			processed++
		}
	}
	return fmt.Sprintf("%d/%d processed (%d sorted, %d skipped, %d cleaned, %d failed)",
		processed, m.TotalImages,
		m.CountByStatus(manifest.ImageSorted),
		m.CountByStatus(manifest.ImageSkipped),
		m.CountByStatus(manifest.ImageCleaned),
		m.CountByStatus(manifest.ImageError)+m.CountByStatus(manifest.ImageCleanFailed))
}

func batchStatusKind(status manifest.Status) statusKind {
	switch status {
	case manifest.StatusCompleted:
		return statusOK
	case manifest.StatusAbandoned:
		return statusWarn
	default:
		return statusInfo
	}
}
