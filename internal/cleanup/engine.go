package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"photosort/internal/hashing"
	"photosort/internal/logging"
	"photosort/internal/manifest"
)

// Engine drives the batch cleanup pass.
type Engine struct {
	manifests *manifest.Store
	logger    *slog.Logger
}

// NewEngine constructs a cleanup engine.
func NewEngine(manifests *manifest.Store, logger *slog.Logger) *Engine {
	return &Engine{
		manifests: manifests,
		logger:    logging.NewComponentLogger(logger, "cleanup"),
	}
}

// Result summarizes a cleanup pass over one manifest.
type Result struct {
	CleanedCount int
	FailedCount  int
	Warnings     []string
}

// Run processes every sorted image in the manifest: re-hash the destination,
// and only on a verified match delete the source file. Images in any other
// status are deliberately preserved. The manifest transitions to cleaning
// before any file is touched (so an interrupted run is observable) and to
// completed after the pass regardless of per-image outcomes; clean_failed
// images stay visible in the persisted manifest for manual follow-up.
//
// Run is resumable: re-running over a manifest already in cleaning picks up
// the remaining sorted images and skips those cleaned by the earlier pass.
//
// Errors returned from Run are manifest persistence failures only; per-image
// file problems are recorded as warnings and never abort the batch.
func (e *Engine) Run(ctx context.Context, m *manifest.Manifest) (Result, error) {
	logger := e.logger.With(logging.Args(logging.String(logging.FieldManifestID, m.ID))...)

	m.Status = manifest.StatusCleaning
	if err := e.manifests.Save(m); err != nil {
		return Result{}, err
	}
	logger.Info("cleanup started", logging.Args(logging.Int("sorted_images", m.CountByStatus(manifest.ImageSorted)))...)

	result := Result{}
	for i := range m.Images {
		image := &m.Images[i]
		if image.Status != manifest.ImageSorted {
			continue
		}

		warning, err := e.cleanImage(m, image)
		if err != nil {
			return result, err
		}
		if warning != "" {
			result.FailedCount++
			result.Warnings = append(result.Warnings, warning)
			logger.Warn("image not cleaned", logging.Args(
				logging.String(logging.FieldFilename, image.Filename),
				logging.String("reason", warning),
			)...)
			continue
		}
		result.CleanedCount++
	}

	m.Status = manifest.StatusCompleted
	if err := e.manifests.Save(m); err != nil {
		return result, err
	}

	logger.Info("cleanup finished", logging.Args(
		logging.Int("cleaned", result.CleanedCount),
		logging.Int("failed", result.FailedCount),
	)...)
	return result, nil
}

// cleanImage verifies and deletes one source file. A non-empty warning means
// the image was marked clean_failed and its source preserved; a non-nil error
// means the manifest itself could not be persisted.
func (e *Engine) cleanImage(m *manifest.Manifest, image *manifest.Image) (string, error) {
	fail := func(reason string) (string, error) {
		if err := e.markCleanFailed(m, image.Filename); err != nil {
			return "", err
		}
		return fmt.Sprintf("%s: %s", image.Filename, reason), nil
	}

	// Should not happen for a sorted image, handled defensively.
	if image.DestinationPath == nil || image.DestinationHash == nil {
		return fail("missing destination path or hash")
	}

	verification, err := hashing.VerifyCopy(*image.DestinationHash, *image.DestinationPath)
	if err != nil {
		return fail(fmt.Sprintf("destination unreadable: %v", err))
	}
	if !verification.Verified {
		return fail("destination hash mismatch, source preserved")
	}

	sourcePath := filepath.Join(m.SourcePath, image.Filename)
	if err := os.Remove(sourcePath); err != nil {
		return fail(fmt.Sprintf("delete source: %v", err))
	}

	deleted := true
	update := manifest.ImageUpdate{
		Status:        manifest.ImageCleaned,
		SourceDeleted: &deleted,
	}
	if err := e.manifests.UpdateImage(m, image.Filename, update); err != nil {
		return "", err
	}
	return "", nil
}

func (e *Engine) markCleanFailed(m *manifest.Manifest, filename string) error {
	notDeleted := false
	update := manifest.ImageUpdate{
		Status:        manifest.ImageCleanFailed,
		SourceDeleted: &notDeleted,
	}
	return e.manifests.UpdateImage(m, filename, update)
}
