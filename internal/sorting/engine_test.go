package sorting_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"photosort/internal/faults"
	"photosort/internal/hashing"
	"photosort/internal/manifest"
	"photosort/internal/records"
	"photosort/internal/sorting"
	"photosort/internal/testsupport"
)

type fixture struct {
	engine    *sorting.Engine
	manifests *manifest.Store
	patients  *records.Store
	source    string
	destRoot  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	base := t.TempDir()

	manifests := manifest.NewStore(filepath.Join(base, "manifests"), 2, nil)
	patients, err := records.Open(filepath.Join(base, "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = patients.Close() })

	source := filepath.Join(base, "incoming")
	if err := os.MkdirAll(source, 0o755); err != nil {
		t.Fatal(err)
	}

	return &fixture{
		engine:    sorting.NewEngine(manifests, patients, nil),
		manifests: manifests,
		patients:  patients,
		source:    source,
		destRoot:  filepath.Join(base, "sorted"),
	}
}

func request(filename string) sorting.Request {
	return sorting.Request{
		CaseNumber:       "C001",
		ConsentStatus:    sorting.ConsentNone,
		ProcedureType:    "Rhinoplasty",
		SurgeryDate:      "2026-02-12",
		ImageType:        "pre_op",
		Angle:            "front",
		OriginalFilename: filename,
	}
}

func TestSortImageHappyPath(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("photo bytes"))

	result, err := f.engine.SortImage(context.Background(), sorting.Options{
		Request:         request("IMG_1.jpg"),
		SourcePath:      src,
		DestinationRoot: f.destRoot,
	})
	if err != nil {
		t.Fatal(err)
	}

	wantPath := filepath.Join(f.destRoot, "no_consent", "Rhinoplasty", "2026-02-12", "C001", "C001_pre_op_front.jpg")
	if result.DestinationPath != wantPath {
		t.Fatalf("destination: got %s want %s", result.DestinationPath, wantPath)
	}
	got, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "photo bytes" {
		t.Fatalf("destination content mismatch: %q", got)
	}
	if result.SourceHash != result.DestinationHash {
		t.Fatalf("hashes should match: %+v", result)
	}
	// Source must be untouched.
	if _, err := os.Stat(src); err != nil {
		t.Fatalf("source was modified: %v", err)
	}
	// No temp artifacts beside the destination.
	if _, err := os.Stat(wantPath + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSortImageConflictOnSecondAttempt(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("photo bytes"))

	opts := sorting.Options{
		Request:         request("IMG_1.jpg"),
		SourcePath:      src,
		DestinationRoot: f.destRoot,
	}
	first, err := f.engine.SortImage(context.Background(), opts)
	if err != nil {
		t.Fatal(err)
	}

	second, err := f.engine.SortImage(context.Background(), opts)
	if !errors.Is(err, faults.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !second.Conflict {
		t.Fatalf("conflict flag not set: %+v", second)
	}

	// First destination file untouched.
	got, err := os.ReadFile(first.DestinationPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "photo bytes" {
		t.Fatalf("first copy modified: %q", got)
	}
}

func TestSortImagePrecomputedHashSkipsSourceRead(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("scan-time bytes"))

	precomputed, err := hashing.HashFile(src)
	if err != nil {
		t.Fatal(err)
	}

	result, err := f.engine.SortImage(context.Background(), sorting.Options{
		Request:         request("IMG_1.jpg"),
		SourcePath:      src,
		DestinationRoot: f.destRoot,
		SourceHash:      precomputed,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.SourceHash != precomputed {
		t.Fatalf("explicit hash not used: %+v", result)
	}
}

func TestSortImageDetectsMismatchWithStaleHash(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("original bytes"))

	stale, err := hashing.HashFile(src)
	if err != nil {
		t.Fatal(err)
	}
	// Source changed after the hash was captured; the copy can no longer verify.
	testsupport.WriteFile(t, src, []byte("tampered bytes"))

	result, err := f.engine.SortImage(context.Background(), sorting.Options{
		Request:         request("IMG_1.jpg"),
		SourcePath:      src,
		DestinationRoot: f.destRoot,
		SourceHash:      stale,
	})
	if !errors.Is(err, faults.ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
	if !result.IntegrityMismatch {
		t.Fatalf("mismatch flag not set: %+v", result)
	}
	if result.SourceHash == result.DestinationHash {
		t.Fatalf("result should carry both differing hashes: %+v", result)
	}

	// Neither the final file nor the temp file may exist.
	dest := filepath.Join(f.destRoot, "no_consent", "Rhinoplasty", "2026-02-12", "C001", "C001_pre_op_front.jpg")
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("final destination created despite mismatch: %v", err)
	}
	if _, err := os.Stat(dest + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestSortImageMissingSourceAnnotatesManifest(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("a"))
	m, err := f.manifests.Create(context.Background(), f.source)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(src); err != nil {
		t.Fatal(err)
	}

	_, err = f.engine.SortImage(context.Background(), sorting.Options{
		Request:         request("IMG_1.jpg"),
		SourcePath:      src,
		DestinationRoot: f.destRoot,
		Manifest:        m,
	})
	if !errors.Is(err, faults.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if m.Image("IMG_1.jpg").Status != manifest.ImageError {
		t.Fatalf("manifest image not marked error: %+v", m.Image("IMG_1.jpg"))
	}
}

func TestSortImageUpdatesManifestAndReusesScanHash(t *testing.T) {
	f := newFixture(t)
	src := filepath.Join(f.source, "IMG_1.jpg")
	testsupport.WriteFile(t, src, []byte("manifest-tracked bytes"))
	m, err := f.manifests.Create(context.Background(), f.source)
	if err != nil {
		t.Fatal(err)
	}
	scanHash := m.Image("IMG_1.jpg").SourceHash

	result, err := f.engine.SortImage(context.Background(), sorting.Options{
		Request:         request("IMG_1.jpg"),
		SourcePath:      src,
		DestinationRoot: f.destRoot,
		Manifest:        m,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.SourceHash != scanHash {
		t.Fatalf("scan-time hash not reused: got %s want %s", result.SourceHash, scanHash)
	}

	img := m.Image("IMG_1.jpg")
	if img.Status != manifest.ImageSorted {
		t.Fatalf("manifest image not sorted: %s", img.Status)
	}
	if img.DestinationPath == nil || *img.DestinationPath != result.DestinationPath {
		t.Fatalf("destination path not recorded: %+v", img)
	}
	if img.DestinationHash == nil || *img.DestinationHash != result.DestinationHash {
		t.Fatalf("destination hash not recorded: %+v", img)
	}
	if img.SortedAt == nil {
		t.Fatal("sortedAt not stamped")
	}
	// Single image, now terminal: batch advances to confirming.
	if m.Status != manifest.StatusConfirming {
		t.Fatalf("manifest status: %s", m.Status)
	}
}

func TestSortImageCreatesPatientRecordOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first := filepath.Join(f.source, "IMG_1.jpg")
	second := filepath.Join(f.source, "IMG_2.jpg")
	testsupport.WriteFile(t, first, []byte("front view"))
	testsupport.WriteFile(t, second, []byte("side view"))

	details := &sorting.PatientDetails{FirstName: "Ada", LastName: "Lovelace", Surgeon: "dr_smith"}

	result, err := f.engine.SortImage(ctx, sorting.Options{
		Request:         request("IMG_1.jpg"),
		SourcePath:      first,
		DestinationRoot: f.destRoot,
		Patient:         details,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !result.PatientRecordSaved {
		t.Fatalf("expected patient record save: %+v", result)
	}

	req2 := request("IMG_2.jpg")
	req2.Angle = "side"
	result, err = f.engine.SortImage(ctx, sorting.Options{
		Request:         req2,
		SourcePath:      second,
		DestinationRoot: f.destRoot,
		Patient:         details,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.PatientRecordSaved {
		t.Fatalf("existing record must not be rewritten: %+v", result)
	}

	patient, err := f.patients.FindByCaseNumber(ctx, "C001")
	if err != nil {
		t.Fatal(err)
	}
	if patient == nil || patient.FirstName != "Ada" {
		t.Fatalf("patient record wrong: %+v", patient)
	}
}
