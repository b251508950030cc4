package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"photosort/internal/faults"
)

// Patient is one patient record keyed by case number.
type Patient struct {
	CaseNumber       string
	FirstName        string
	LastName         string
	DOB              string
	SurgeryDate      string
	PrimaryProcedure string
	Surgeon          string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PatientInput carries the caller-supplied fields for a new patient.
type PatientInput struct {
	CaseNumber       string
	FirstName        string
	LastName         string
	DOB              string
	SurgeryDate      string
	PrimaryProcedure string
	Surgeon          string
}

// PatientUpdate carries optional field changes; nil fields are untouched.
// The case number is immutable.
type PatientUpdate struct {
	FirstName        *string
	LastName         *string
	DOB              *string
	SurgeryDate      *string
	PrimaryProcedure *string
	Surgeon          *string
}

const patientColumns = "case_number, first_name, last_name, dob, surgery_date, primary_procedure, surgeon, created_at, updated_at"

func scanPatient(row interface{ Scan(...any) error }) (*Patient, error) {
	var p Patient
	var createdAt, updatedAt string
	if err := row.Scan(&p.CaseNumber, &p.FirstName, &p.LastName, &p.DOB, &p.SurgeryDate, &p.PrimaryProcedure, &p.Surgeon, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// FindByCaseNumber returns the patient with the given case number, or nil
// when no such record exists. Absence is a normal outcome, not an error.
func (s *Store) FindByCaseNumber(ctx context.Context, caseNumber string) (*Patient, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+patientColumns+" FROM patients WHERE case_number = ?", caseNumber)
	p, err := scanPatient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find patient %s: %w", caseNumber, err)
	}
	return p, nil
}

// CreatePatient inserts a new patient. A duplicate case number fails with
// faults.ErrAlreadyExists.
func (s *Store) CreatePatient(ctx context.Context, input PatientInput) (*Patient, error) {
	caseNumber := strings.TrimSpace(input.CaseNumber)
	if caseNumber == "" {
		return nil, faults.Wrap(faults.ErrValidation, "records", "create patient", "case number is required", nil)
	}

	existing, err := s.FindByCaseNumber(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, faults.Wrap(faults.ErrAlreadyExists, "records", "create patient", fmt.Sprintf("case number %s", caseNumber), nil)
	}

	now := time.Now().UTC()
	stamp := now.Format(time.RFC3339)
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO patients ("+patientColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		caseNumber, input.FirstName, input.LastName, input.DOB, input.SurgeryDate,
		input.PrimaryProcedure, input.Surgeon, stamp, stamp)
	if err != nil {
		return nil, fmt.Errorf("insert patient %s: %w", caseNumber, err)
	}

	return &Patient{
		CaseNumber:       caseNumber,
		FirstName:        input.FirstName,
		LastName:         input.LastName,
		DOB:              input.DOB,
		SurgeryDate:      input.SurgeryDate,
		PrimaryProcedure: input.PrimaryProcedure,
		Surgeon:          input.Surgeon,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ListPatients returns all patients ordered by case number.
func (s *Store) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+patientColumns+" FROM patients ORDER BY case_number")
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

// SearchPatients returns patients whose case number or name contains query,
// case-insensitively. An empty query returns everything.
func (s *Store) SearchPatients(ctx context.Context, query string) ([]Patient, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.ListPatients(ctx)
	}

	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+patientColumns+` FROM patients
		 WHERE lower(case_number) LIKE ? OR lower(first_name) LIKE ? OR lower(last_name) LIKE ?
		 ORDER BY case_number`,
		pattern, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, *p)
	}
	return patients, rows.Err()
}

// UpdatePatient applies a partial update to an existing patient and bumps
// updated_at. A missing case number fails with faults.ErrNotFound.
func (s *Store) UpdatePatient(ctx context.Context, caseNumber string, update PatientUpdate) (*Patient, error) {
	existing, err := s.FindByCaseNumber(ctx, caseNumber)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, faults.Wrap(faults.ErrNotFound, "records", "update patient", fmt.Sprintf("case number %s", caseNumber), nil)
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&existing.FirstName, update.FirstName)
	apply(&existing.LastName, update.LastName)
	apply(&existing.DOB, update.DOB)
	apply(&existing.SurgeryDate, update.SurgeryDate)
	apply(&existing.PrimaryProcedure, update.PrimaryProcedure)
	apply(&existing.Surgeon, update.Surgeon)
	existing.UpdatedAt = time.Now().UTC()

	_, err = s.db.ExecContext(ctx,
		`UPDATE patients SET first_name = ?, last_name = ?, dob = ?, surgery_date = ?,
		 primary_procedure = ?, surgeon = ?, updated_at = ? WHERE case_number = ?`,
		existing.FirstName, existing.LastName, existing.DOB, existing.SurgeryDate,
		existing.PrimaryProcedure, existing.Surgeon, existing.UpdatedAt.Format(time.RFC3339), caseNumber)
	if err != nil {
		return nil, fmt.Errorf("update patient %s: %w", caseNumber, err)
	}
	return existing, nil
}

// DeletePatient removes a patient by case number. A missing case number fails
// with faults.ErrNotFound.
func (s *Store) DeletePatient(ctx context.Context, caseNumber string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM patients WHERE case_number = ?", caseNumber)
	if err != nil {
		return fmt.Errorf("delete patient %s: %w", caseNumber, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete patient %s: %w", caseNumber, err)
	}
	if affected == 0 {
		return faults.Wrap(faults.ErrNotFound, "records", "delete patient", fmt.Sprintf("case number %s", caseNumber), nil)
	}
	return nil
}
