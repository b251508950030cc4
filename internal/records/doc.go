// Package records persists patient, surgeon, and procedure records in SQLite.
//
// Patients are keyed by case number (the natural key the sort pipeline checks
// before creating a record). The sort engine consumes this package only
// through the narrow find/create contract; the rest of the CRUD surface backs
// the CLI. CSV import/export keeps compatibility with the practice's existing
// spreadsheet exports.
//
// Schema changes bump the version in schema.go; the database is small enough
// that users re-import from CSV after a schema change.
package records
