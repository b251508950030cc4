package records

import (
	"context"
	"fmt"
	"strings"

	"photosort/internal/faults"
)

// Lookup is one id+name reference record (surgeons, procedures).
type Lookup struct {
	ID   string
	Name string
}

// Seeded into new databases; matches the practice's standard procedure list.
var defaultProcedures = []Lookup{
	{ID: "rhinoplasty", Name: "Rhinoplasty"},
	{ID: "facelift", Name: "Facelift"},
	{ID: "blepharoplasty", Name: "Blepharoplasty"},
	{ID: "breast_augmentation", Name: "Breast Augmentation"},
	{ID: "liposuction", Name: "Liposuction"},
}

func (s *Store) listLookups(ctx context.Context, table string) ([]Lookup, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM "+table+" ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []Lookup
	for rows.Next() {
		var l Lookup
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) createLookup(ctx context.Context, table string, l Lookup) error {
	l.ID = strings.TrimSpace(l.ID)
	l.Name = strings.TrimSpace(l.Name)
	if l.ID == "" || l.Name == "" {
		return faults.Wrap(faults.ErrValidation, "records", "create "+table, "id and name are required", nil)
	}

	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM "+table+" WHERE id = ?", l.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check %s %s: %w", table, l.ID, err)
	}
	if exists > 0 {
		return faults.Wrap(faults.ErrAlreadyExists, "records", "create "+table, l.ID, nil)
	}

	if _, err := s.db.ExecContext(ctx, "INSERT INTO "+table+" (id, name) VALUES (?, ?)", l.ID, l.Name); err != nil {
		return fmt.Errorf("insert %s %s: %w", table, l.ID, err)
	}
	return nil
}

func (s *Store) deleteLookup(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	if affected == 0 {
		return faults.Wrap(faults.ErrNotFound, "records", "delete "+table, id, nil)
	}
	return nil
}

// ListSurgeons returns all surgeons ordered by name.
func (s *Store) ListSurgeons(ctx context.Context) ([]Lookup, error) {
	return s.listLookups(ctx, "surgeons")
}

// CreateSurgeon inserts a surgeon; duplicates fail with faults.ErrAlreadyExists.
func (s *Store) CreateSurgeon(ctx context.Context, l Lookup) error {
	return s.createLookup(ctx, "surgeons", l)
}

// DeleteSurgeon removes a surgeon by id.
func (s *Store) DeleteSurgeon(ctx context.Context, id string) error {
	return s.deleteLookup(ctx, "surgeons", id)
}

// ListProcedures returns all procedures ordered by name.
func (s *Store) ListProcedures(ctx context.Context) ([]Lookup, error) {
	return s.listLookups(ctx, "procedures")
}

// CreateProcedure inserts a procedure; duplicates fail with faults.ErrAlreadyExists.
func (s *Store) CreateProcedure(ctx context.Context, l Lookup) error {
	return s.createLookup(ctx, "procedures", l)
}

// DeleteProcedure removes a procedure by id.
func (s *Store) DeleteProcedure(ctx context.Context, id string) error {
	return s.deleteLookup(ctx, "procedures", id)
}
