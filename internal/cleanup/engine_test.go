package cleanup_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"photosort/internal/cleanup"
	"photosort/internal/manifest"
	"photosort/internal/sorting"
	"photosort/internal/testsupport"
)

type fixture struct {
	manifests *manifest.Store
	sorter    *sorting.Engine
	cleaner   *cleanup.Engine
	source    string
	destRoot  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()
	manifests := manifest.NewStore(filepath.Join(base, "manifests"), 2, nil)
	source := filepath.Join(base, "incoming")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatal(err)
	}
	return &fixture{
		manifests: manifests,
		sorter:    sorting.NewEngine(manifests, nil, nil),
		cleaner:   cleanup.NewEngine(manifests, nil),
		source:    source,
		destRoot:  filepath.Join(base, "sorted"),
	}
}

func (f *fixture) sortImage(t *testing.T, m *manifest.Manifest, filename, angle string) sorting.Result {
	t.Helper()
	result, err := f.sorter.SortImage(context.Background(), sorting.Options{
		Request: sorting.Request{
			CaseNumber:       "C001",
			ConsentStatus:    sorting.ConsentNone,
			ProcedureType:    "Rhinoplasty",
			SurgeryDate:      "2026-02-12",
			ImageType:        "pre_op",
			Angle:            angle,
			OriginalFilename: filename,
		},
		SourcePath:      filepath.Join(f.source, filename),
		DestinationRoot: f.destRoot,
		Manifest:        m,
	})
	if err != nil {
		t.Fatalf("sort %s: %v", filename, err)
	}
	return result
}

func TestRunFullSortAndCleanup(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("photo bytes"))

	m, err := f.manifests.Create(context.Background(), f.source)
	if err != nil {
		t.Fatal(err)
	}
	f.sortImage(t, m, "IMG_1.jpg", "front")
	if m.Status != manifest.StatusConfirming {
		t.Fatalf("expected confirming before cleanup: %s", m.Status)
	}

	result, err := f.cleaner.Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if result.CleanedCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	if m.Status != manifest.StatusCompleted {
		t.Fatalf("manifest not completed: %s", m.Status)
	}
	img := m.Image("IMG_1.jpg")
	if img.Status != manifest.ImageCleaned || !img.SourceDeleted {
		t.Fatalf("image not cleaned: %+v", img)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source file still exists: %v", err)
	}

	// Persisted state matches in-memory state.
	loaded, err := f.manifests.Load(m.ID)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Status != manifest.StatusCompleted || loaded.Image("IMG_1.jpg").Status != manifest.ImageCleaned {
		t.Fatalf("persisted manifest diverged: %+v", loaded)
	}
}

func TestRunPreservesSourceOnCorruptedDestination(t *testing.T) {
	f := newFixture(t)
	corrupt := filepath.Join(f.source, "IMG_1.jpg")
	intact := filepath.Join(f.source, "IMG_2.jpg")
	testsupport.WriteFile(t, corrupt, []byte("first photo"))
	testsupport.WriteFile(t, intact, []byte("second photo"))

	m, err := f.manifests.Create(context.Background(), f.source)
	if err != nil {
		t.Fatal(err)
	}
	first := f.sortImage(t, m, "IMG_1.jpg", "front")
	f.sortImage(t, m, "IMG_2.jpg", "side")

	// Corrupt the first destination after the sort succeeded.
	testsupport.WriteFile(t, first.DestinationPath, []byte("bit rot"))

	result, err := f.cleaner.Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if result.CleanedCount != 1 || result.FailedCount != 1 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "IMG_1.jpg") {
		t.Fatalf("expected one warning naming IMG_1.jpg: %v", result.Warnings)
	}

	// Corrupted image: source preserved, marked clean_failed.
	if _, err := os.Stat(corrupt); err != nil {
		t.Fatalf("source of corrupted copy was deleted: %v", err)
	}
	img := m.Image("IMG_1.jpg")
	if img.Status != manifest.ImageCleanFailed || img.SourceDeleted {
		t.Fatalf("corrupted image state wrong: %+v", img)
	}

	// Intact sibling cleaned up anyway.
	if _, err := os.Stat(intact); !os.IsNotExist(err) {
		t.Fatalf("intact source should be gone: %v", err)
	}
	if m.Image("IMG_2.jpg").Status != manifest.ImageCleaned {
		t.Fatalf("sibling not cleaned: %+v", m.Image("IMG_2.jpg"))
	}

	// A failed image never blocks batch completion.
	if m.Status != manifest.StatusCompleted {
		t.Fatalf("manifest not completed: %s", m.Status)
	}
}

func TestRunResumesInterruptedPass(t *testing.T) {
	f := newFixture(t)
	first := filepath.Join(f.source, "IMG_1.jpg")
	second := filepath.Join(f.source, "IMG_2.jpg")
	testsupport.WriteFile(t, first, []byte("already handled"))
	testsupport.WriteFile(t, second, []byte("still waiting"))

	m, err := f.manifests.Create(context.Background(), f.source)
	if err != nil {
		t.Fatal(err)
	}
	f.sortImage(t, m, "IMG_1.jpg", "front")
	f.sortImage(t, m, "IMG_2.jpg", "side")

	// Simulate a crash mid-pass: the batch reached cleaning, the first image
	// was cleaned and its source deleted, the second was never processed.
	m.Status = manifest.StatusCleaning
	if err := f.manifests.Save(m); err != nil {
		t.Fatal(err)
	}
	deleted := true
	if err := f.manifests.UpdateImage(m, "IMG_1.jpg", manifest.ImageUpdate{Status: manifest.ImageCleaned, SourceDeleted: &deleted}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(first); err != nil {
		t.Fatal(err)
	}

	result, err := f.cleaner.Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if result.CleanedCount != 1 || result.FailedCount != 0 {
		t.Fatalf("resume should clean only the remaining image: %+v", result)
	}
	if m.Status != manifest.StatusCompleted {
		t.Fatalf("manifest not completed after resume: %s", m.Status)
	}
	if m.Image("IMG_1.jpg").Status != manifest.ImageCleaned {
		t.Fatalf("previously cleaned image disturbed: %+v", m.Image("IMG_1.jpg"))
	}
	if m.Image("IMG_2.jpg").Status != manifest.ImageCleaned || !m.Image("IMG_2.jpg").SourceDeleted {
		t.Fatalf("remaining image not cleaned on resume: %+v", m.Image("IMG_2.jpg"))
	}
	if _, err := os.Stat(second); !os.IsNotExist(err) {
		t.Fatalf("remaining source should be gone: %v", err)
	}
}

func TestRunHandlesMissingDestination(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("photo"))

	m, err := f.manifests.Create(context.Background(), f.source)
	if err != nil {
		t.Fatal(err)
	}
	result := f.sortImage(t, m, "IMG_1.jpg", "front")
	if err := os.Remove(result.DestinationPath); err != nil {
		t.Fatal(err)
	}

	cleanupResult, err := f.cleaner.Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if cleanupResult.FailedCount != 1 || cleanupResult.CleanedCount != 0 {
		t.Fatalf("unexpected counts: %+v", cleanupResult)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source deleted despite missing destination: %v", err)
	}
}

func TestRunSkipsNonSortedImages(t *testing.T) {
	f := newFixture(t)
	sorted := filepath.Join(f.source, "IMG_1.jpg")
	skipped := filepath.Join(f.source, "IMG_2.jpg")
	testsupport.WriteFile(t, sorted, []byte("keep me sorted"))
	testsupport.WriteFile(t, skipped, []byte("operator skipped me"))

	m, err := f.manifests.Create(context.Background(), f.source)
	if err != nil {
		t.Fatal(err)
	}
	f.sortImage(t, m, "IMG_1.jpg", "front")
	reason := "duplicate shot"
	if err := f.manifests.UpdateImage(m, "IMG_2.jpg", manifest.ImageUpdate{Status: manifest.ImageSkipped, SkipReason: &reason}); err != nil {
		t.Fatal(err)
	}

	result, err := f.cleaner.Run(context.Background(), m)
	if err != nil {
		t.Fatal(err)
	}
	if result.CleanedCount != 1 || result.FailedCount != 0 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	// Skipped sources are deliberately preserved.
	if _, err := os.Stat(skipped); err != nil {
		t.Fatalf("skipped source deleted: %v", err)
	}
	if m.Image("IMG_2.jpg").Status != manifest.ImageSkipped {
		t.Fatalf("skipped image status changed: %+v", m.Image("IMG_2.jpg"))
	}
}
