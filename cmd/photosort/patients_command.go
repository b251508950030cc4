package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"photosort/internal/config"
	"photosort/internal/records"
)

func newPatientsCommand(ctx *commandContext) *cobra.Command {
	patientsCmd := &cobra.Command{
		Use:   "patients",
		Short: "Inspect and maintain patient records",
	}

	patientsCmd.AddCommand(newPatientsListCommand(ctx))
	patientsCmd.AddCommand(newPatientsSearchCommand(ctx))
	patientsCmd.AddCommand(newPatientsImportCommand(ctx))
	patientsCmd.AddCommand(newPatientsExportCommand(ctx))

	return patientsCmd
}

func newPatientsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all patient records",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patients, err := store.ListPatients(cmd.Context())
			if err != nil {
				return err
			}
			printPatients(cmd, patients)
			return nil
		},
	}
}

func newPatientsSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search patients by case number or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			patients, err := store.SearchPatients(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printPatients(cmd, patients)
			return nil
		},
	}
}

func newPatientsImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Import patient records from a CSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open csv file: %w", err)
			}
			defer file.Close()

			store, err := ctx.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			result, err := store.ImportPatientsCSV(cmd.Context(), file)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d patient(s)\n", result.Imported)
			for _, note := range result.Skipped {
				fmt.Fprintf(out, "Skipped %s\n", note)
			}
			return nil
		},
	}
}

func newPatientsExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all patient records as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openRecords()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if outputPath == "" || outputPath == "-" {
				return store.ExportPatientsCSV(cmd.Context(), cmd.OutOrStdout())
			}

			path, err := config.ExpandPath(outputPath)
			if err != nil {
				return err
			}
			if err := store.ExportPatientsCSVFile(cmd.Context(), path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default stdout)")

	return cmd
}

func printPatients(cmd *cobra.Command, patients []records.Patient) {
	out := cmd.OutOrStdout()
	if len(patients) == 0 {
		fmt.Fprintln(out, "No patient records")
		return
	}
	rows := make([][]string, 0, len(patients))
	for _, p := range patients {
		rows = append(rows, []string{p.CaseNumber, p.LastName, p.FirstName, p.SurgeryDate, p.PrimaryProcedure, p.Surgeon})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Case", "Last Name", "First Name", "Surgery", "Procedure", "Surgeon"},
		rows,
	))
}
