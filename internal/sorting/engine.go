package sorting

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"photosort/internal/faults"
	"photosort/internal/fileutil"
	"photosort/internal/hashing"
	"photosort/internal/logging"
	"photosort/internal/manifest"
	"photosort/internal/records"
)

// PatientStore is the narrow record-store contract the engine consumes.
type PatientStore interface {
	FindByCaseNumber(ctx context.Context, caseNumber string) (*records.Patient, error)
	CreatePatient(ctx context.Context, input records.PatientInput) (*records.Patient, error)
}

// Engine orchestrates single-image sorts.
type Engine struct {
	manifests *manifest.Store
	patients  PatientStore
	logger    *slog.Logger
}

// NewEngine constructs a sort engine. manifests and patients may be nil for
// flows that sort loose files without batch tracking or patient records.
func NewEngine(manifests *manifest.Store, patients PatientStore, logger *slog.Logger) *Engine {
	return &Engine{
		manifests: manifests,
		patients:  patients,
		logger:    logging.NewComponentLogger(logger, "sorting"),
	}
}

// Options carries everything needed to sort one image.
type Options struct {
	Request         Request
	SourcePath      string
	DestinationRoot string
	// SourceHash, when set, is trusted and the source is never re-hashed.
	// Otherwise the manifest's recorded hash is used, and only as a last
	// resort is the source read again.
	SourceHash string
	Manifest   *manifest.Manifest
	Patient    *PatientDetails
}

// Result reports the outcome of one sort. Conflict and IntegrityMismatch are
// distinguishable outcomes because callers react differently to them (skip
// vs. retry); when either is set the accompanying error wraps the matching
// sentinel.
type Result struct {
	Conflict           bool
	IntegrityMismatch  bool
	DestinationPath    string
	Filename           string
	SourceHash         string
	DestinationHash    string
	PatientRecordSaved bool
}

// SortImage runs the full verified-copy flow for one image. On unexpected
// failure the matching manifest image is best-effort marked error before the
// original error is returned; conflict and integrity mismatch leave the
// manifest image untouched so the operator can decide how to proceed.
func (e *Engine) SortImage(ctx context.Context, opts Options) (Result, error) {
	req := opts.Request
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	logger := e.logger.With(logging.Args(
		logging.String(logging.FieldCaseNumber, req.CaseNumber),
		logging.String(logging.FieldFilename, req.OriginalFilename),
	)...)

	if _, err := os.Stat(opts.SourcePath); err != nil {
		wrapped := faults.Wrap(faults.ErrNotFound, "sorting", "read source", opts.SourcePath, err)
		e.annotateError(opts, logger)
		return Result{}, wrapped
	}

	dest := BuildDestinationPath(req, opts.DestinationRoot)
	destPath := dest.Path()
	result := Result{DestinationPath: destPath, Filename: dest.Filename}

	if _, err := os.Stat(destPath); err == nil {
		result.Conflict = true
		return result, faults.Wrap(faults.ErrConflict, "sorting", "copy", fmt.Sprintf("destination %s already exists", destPath), nil)
	} else if !errors.Is(err, fs.ErrNotExist) {
		wrapped := fmt.Errorf("stat destination %s: %w", destPath, err)
		e.annotateError(opts, logger)
		return Result{}, wrapped
	}

	sourceHash, err := e.resolveSourceHash(opts)
	if err != nil {
		e.annotateError(opts, logger)
		return Result{}, err
	}
	result.SourceHash = sourceHash

	if err := os.MkdirAll(dest.Dir, 0o755); err != nil {
		wrapped := fmt.Errorf("create destination directory %s: %w", dest.Dir, err)
		e.annotateError(opts, logger)
		return Result{}, wrapped
	}

	tmpPath := destPath + ".tmp"
	if err := fileutil.CopyFile(opts.SourcePath, tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		wrapped := fmt.Errorf("copy to %s: %w", tmpPath, err)
		e.annotateError(opts, logger)
		return Result{}, wrapped
	}

	destHash, err := hashing.HashFile(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		wrapped := fmt.Errorf("hash copied file: %w", err)
		e.annotateError(opts, logger)
		return Result{}, wrapped
	}
	result.DestinationHash = destHash

	if destHash != sourceHash {
		// Best effort: a failed remove must not mask the mismatch.
		_ = os.Remove(tmpPath)
		result.IntegrityMismatch = true
		logger.Warn("copy verification failed",
			logging.Args(
				logging.String("source_hash", sourceHash),
				logging.String("destination_hash", destHash),
			)...)
		return result, faults.Wrap(faults.ErrIntegrity, "sorting", "verify copy",
			fmt.Sprintf("source %s destination %s", sourceHash, destHash), nil)
	}

	// The rename is the durability point: after this the image is sorted.
	if err := os.Rename(tmpPath, destPath); err != nil {
		_ = os.Remove(tmpPath)
		wrapped := fmt.Errorf("rename %s: %w", tmpPath, err)
		e.annotateError(opts, logger)
		return Result{}, wrapped
	}

	saved, err := e.savePatientRecord(ctx, opts)
	if err != nil {
		e.annotateError(opts, logger)
		return result, err
	}
	result.PatientRecordSaved = saved

	if opts.Manifest != nil && e.manifests != nil {
		update := manifest.ImageUpdate{
			Status:             manifest.ImageSorted,
			DestinationPath:    &destPath,
			DestinationHash:    &destHash,
			PatientRecordSaved: &saved,
		}
		if err := e.manifests.UpdateImage(opts.Manifest, req.OriginalFilename, update); err != nil {
			return result, err
		}
	}

	logger.Info("image sorted", logging.Args(logging.String("destination", destPath))...)
	return result, nil
}

// resolveSourceHash picks the verification anchor: explicit hash first, then
// the manifest's scan-time hash, then a fresh read of the source.
func (e *Engine) resolveSourceHash(opts Options) (string, error) {
	if opts.SourceHash != "" {
		return opts.SourceHash, nil
	}
	if opts.Manifest != nil {
		if image := opts.Manifest.Image(opts.Request.OriginalFilename); image != nil && image.SourceHash != "" {
			return image.SourceHash, nil
		}
	}
	digest, err := hashing.HashFile(opts.SourcePath)
	if err != nil {
		return "", fmt.Errorf("hash source: %w", err)
	}
	return digest, nil
}

// savePatientRecord creates a patient record when identification details are
// present and no record exists yet. Existing records are never overwritten.
func (e *Engine) savePatientRecord(ctx context.Context, opts Options) (bool, error) {
	details := opts.Patient
	if details == nil || e.patients == nil {
		return false, nil
	}
	if strings.TrimSpace(details.FirstName) == "" || strings.TrimSpace(details.LastName) == "" {
		return false, nil
	}

	existing, err := e.patients.FindByCaseNumber(ctx, opts.Request.CaseNumber)
	if err != nil {
		return false, fmt.Errorf("find patient: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	_, err = e.patients.CreatePatient(ctx, records.PatientInput{
		CaseNumber:       opts.Request.CaseNumber,
		FirstName:        details.FirstName,
		LastName:         details.LastName,
		DOB:              details.DOB,
		SurgeryDate:      opts.Request.SurgeryDate,
		PrimaryProcedure: opts.Request.ProcedureType,
		Surgeon:          details.Surgeon,
	})
	if err != nil {
		return false, fmt.Errorf("create patient: %w", err)
	}
	return true, nil
}

// annotateError best-effort marks the manifest image as errored. Failures
// here are logged and swallowed so they never mask the original error.
func (e *Engine) annotateError(opts Options, logger *slog.Logger) {
	if opts.Manifest == nil || e.manifests == nil {
		return
	}
	update := manifest.ImageUpdate{Status: manifest.ImageError}
	if err := e.manifests.UpdateImage(opts.Manifest, opts.Request.OriginalFilename, update); err != nil {
		logger.Warn("could not mark manifest image as errored", logging.Args(logging.Error(err))...)
	}
}
