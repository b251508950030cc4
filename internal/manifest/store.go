package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"photosort/internal/config"
	"photosort/internal/faults"
	"photosort/internal/fileutil"
	"photosort/internal/hashing"
	"photosort/internal/logging"
)

// Allowed image extensions, lowercase. Dotfiles are always excluded.
var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".heic": {},
	".heif": {},
	".webp": {},
	".tiff": {},
	".tif":  {},
	".bmp":  {},
}

// IsImageFile reports whether a directory entry name qualifies for a scan.
func IsImageFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Store manages manifest persistence in a single directory.
type Store struct {
	dir         string
	hashWorkers int
	logger      *slog.Logger
	now         func() time.Time
}

// NewStore constructs a Store writing manifests under dir. hashWorkers bounds
// concurrent hashing during Create; values below one fall back to serial.
func NewStore(dir string, hashWorkers int, logger *slog.Logger) *Store {
	if hashWorkers < 1 {
		hashWorkers = 1
	}
	return &Store{
		dir:         dir,
		hashWorkers: hashWorkers,
		logger:      logging.NewComponentLogger(logger, "manifest"),
		now:         time.Now,
	}
}

// NewStoreFromConfig constructs a Store using application config.
func NewStoreFromConfig(cfg *config.Config, logger *slog.Logger) *Store {
	return NewStore(cfg.ManifestDir(), cfg.Sorting.HashWorkers, logger)
}

// Dir returns the directory manifests are persisted in.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Create scans sourcePath, hashes every qualifying image, and persists a new
// manifest with all images pending. Hashing runs with bounded parallelism;
// image order is the lexicographic filename order regardless of which hash
// finishes first.
func (s *Store) Create(ctx context.Context, sourcePath string) (*Manifest, error) {
	entries, err := os.ReadDir(sourcePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrNotFound, "manifest", "scan", fmt.Sprintf("read source directory %s", sourcePath), err)
		}
		return nil, fmt.Errorf("read source directory %s: %w", sourcePath, err)
	}

	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if IsImageFile(entry.Name()) {
			filenames = append(filenames, entry.Name())
		}
	}
	sort.Strings(filenames)

	if len(filenames) == 0 {
		return nil, faults.Wrap(faults.ErrEmptySource, "manifest", "scan", fmt.Sprintf("no image files in %s", sourcePath), nil)
	}

	images := make([]Image, len(filenames))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.hashWorkers)
	for i, filename := range filenames {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			digest, err := hashing.HashFile(filepath.Join(sourcePath, filename))
			if err != nil {
				return fmt.Errorf("hash %s: %w", filename, err)
			}
			images[i] = Image{
				Filename:   filename,
				SourceHash: digest,
				Status:     ImagePending,
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		// A file deleted between listing and hashing is NotFound; any other
		// read failure stays a plain IO error.
		if errors.Is(err, fs.ErrNotExist) {
			return nil, faults.Wrap(faults.ErrNotFound, "manifest", "scan", "hash source images", err)
		}
		return nil, fmt.Errorf("hash source images: %w", err)
	}

	now := s.now()
	m := &Manifest{
		ID:          NewID(sourcePath, now),
		SourcePath:  sourcePath,
		CreatedAt:   now.UTC(),
		Status:      StatusInProgress,
		TotalImages: len(images),
		Images:      images,
	}

	if err := s.Save(m); err != nil {
		return nil, err
	}

	s.logger.Info("manifest created",
		logging.Args(
			logging.String(logging.FieldManifestID, m.ID),
			logging.String("source_path", sourcePath),
			logging.Int("images", len(images)),
		)...)
	return m, nil
}

// Save persists the manifest atomically: full JSON to a sibling temp file,
// then rename over {id}.json.
func (s *Store) Save(m *Manifest) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest %s: %w", m.ID, err)
	}
	if err := fileutil.WriteFileAtomic(s.path(m.ID), data, 0o644); err != nil {
		return fmt.Errorf("persist manifest %s: %w", m.ID, err)
	}
	return nil
}

// Load returns the manifest with the given id, or nil when it does not exist.
// Callers routinely probe for absent ids, so absence is not an error.
func (s *Store) Load(id string) (*Manifest, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest %s: %w", id, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", id, err)
	}
	return &m, nil
}

// Active returns the most recent manifest still accepting work (in_progress
// or confirming), or nil when none exists.
func (s *Store) Active() (*Manifest, error) {
	ids, err := s.listIDs()
	if err != nil {
		return nil, err
	}
	// Most recent first; ids begin with a millisecond timestamp.
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	for _, id := range ids {
		m, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		if m != nil && m.Status.Active() {
			return m, nil
		}
	}
	return nil, nil
}

// Cleaning returns the most recent manifest left in the cleaning status, or
// nil when none exists. An interrupted cleanup pass leaves its manifest in
// cleaning; re-running cleanup resumes it from here.
func (s *Store) Cleaning() (*Manifest, error) {
	ids, err := s.listIDs()
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	for _, id := range ids {
		m, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		if m != nil && m.Status == StatusCleaning {
			return m, nil
		}
	}
	return nil, nil
}

// Pending returns all manifests still accepting work, across source folders.
func (s *Store) Pending() ([]*Manifest, error) {
	ids, err := s.listIDs()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	var pending []*Manifest
	for _, id := range ids {
		m, err := s.Load(id)
		if err != nil {
			return nil, err
		}
		if m != nil && m.Status.Active() {
			pending = append(pending, m)
		}
	}
	return pending, nil
}

func (s *Store) listIDs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read manifest directory: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	return ids, nil
}

// UpdateImage applies a partial update to one image, stamps or clears
// sort-specific fields based on the new status, re-derives the batch status,
// and persists the manifest. The batch derivation is idempotent and runs on
// every call:
//
//	in_progress -> confirming  when every image is terminal
//	confirming  -> in_progress when an undo reintroduced a pending image
func (s *Store) UpdateImage(m *Manifest, filename string, update ImageUpdate) error {
	image := m.Image(filename)
	if image == nil {
		return faults.Wrap(faults.ErrNotFound, "manifest", "update image", fmt.Sprintf("image %q not in manifest %s", filename, m.ID), nil)
	}

	image.Status = update.Status
	if update.DestinationPath != nil {
		image.DestinationPath = update.DestinationPath
	}
	if update.DestinationHash != nil {
		image.DestinationHash = update.DestinationHash
	}
	if update.PatientRecordSaved != nil {
		image.PatientRecordSaved = *update.PatientRecordSaved
	}
	if update.SourceDeleted != nil {
		image.SourceDeleted = *update.SourceDeleted
	}
	if update.SkipReason != nil {
		image.SkipReason = *update.SkipReason
	}

	switch update.Status {
	case ImageSorted:
		sortedAt := s.now().UTC()
		image.SortedAt = &sortedAt
	case ImagePending:
		// Explicit undo: clear everything the sort stamped.
		image.SortedAt = nil
		image.SkipReason = ""
	}

	if m.AllProcessed() && m.Status == StatusInProgress {
		m.Status = StatusConfirming
	} else if !m.AllProcessed() && m.Status == StatusConfirming {
		m.Status = StatusInProgress
	}

	return s.Save(m)
}

// Abandon moves the manifest to its abandoned terminal status and persists it.
// Abandoned manifests no longer appear in Active or Pending results.
func (s *Store) Abandon(m *Manifest) error {
	m.Status = StatusAbandoned
	if err := s.Save(m); err != nil {
		return err
	}
	s.logger.Info("manifest abandoned", logging.Args(logging.String(logging.FieldManifestID, m.ID))...)
	return nil
}
