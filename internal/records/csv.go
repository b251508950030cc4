package records

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"photosort/internal/fileutil"
)

// csvHeader matches the practice's existing spreadsheet export format.
var csvHeader = []string{
	"case_number", "first_name", "last_name", "dob", "surgery_date",
	"primary_procedure", "surgeon", "created_at", "updated_at",
}

// ImportResult summarizes a CSV import pass.
type ImportResult struct {
	Imported int
	Skipped  []string
}

// ImportPatientsCSV reads patient rows from r and inserts them. Rows whose
// case number already exists are skipped with a note rather than failing the
// whole import. The header row is required and validated by column count.
func (s *Store) ImportPatientsCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 7 {
		return ImportResult{}, fmt.Errorf("csv header has %d columns, expected at least 7", len(header))
	}

	result := ImportResult{}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return result, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(row) < 3 {
			result.Skipped = append(result.Skipped, fmt.Sprintf("line %d: too few columns", line))
			continue
		}

		field := func(i int) string {
			if i < len(row) {
				return row[i]
			}
			return ""
		}
		input := PatientInput{
			CaseNumber:       field(0),
			FirstName:        field(1),
			LastName:         field(2),
			DOB:              field(3),
			SurgeryDate:      field(4),
			PrimaryProcedure: field(5),
			Surgeon:          field(6),
		}

		if _, err := s.CreatePatient(ctx, input); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("line %d (%s): %v", line, input.CaseNumber, err))
			continue
		}
		result.Imported++
	}
	return result, nil
}

// ExportPatientsCSV writes all patients to w in the import-compatible format.
func (s *Store) ExportPatientsCSV(ctx context.Context, w io.Writer) error {
	patients, err := s.ListPatients(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, p := range patients {
		row := []string{
			p.CaseNumber, p.FirstName, p.LastName, p.DOB, p.SurgeryDate,
			p.PrimaryProcedure, p.Surgeon,
			p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write patient %s: %w", p.CaseNumber, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportPatientsCSVFile writes the export to path atomically: the full CSV is
// rendered in memory, written to a sibling temp file, and renamed into place,
// so a failure mid-export never leaves a truncated file at the final name.
func (s *Store) ExportPatientsCSVFile(ctx context.Context, path string) error {
	var buf bytes.Buffer
	if err := s.ExportPatientsCSV(ctx, &buf); err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}
