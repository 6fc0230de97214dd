package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/malramsay64/decimator/internal/catalog"
)

func openTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Open(filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestImport_DuplicateScenario(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()

	writeFile(t, dir, "a.jpg", []byte("shared content"))
	writeFile(t, dir, "b.jpg", []byte("shared content")) // byte-identical to a.jpg
	writeFile(t, dir, "c.jpg", []byte("distinct content"))

	im := New(c, WithWorkers(1))
	report, err := im.Import([]string{dir})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if report.Imported != 2 {
		t.Errorf("imported = %d, want 2", report.Imported)
	}
	if report.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", report.Skipped)
	}
	if report.Failed != 0 {
		t.Errorf("failed = %d, want 0: %v", report.Failed, report.Failures)
	}

	pics, err := c.Query(catalog.Filter{}, catalog.SortFilenameAsc)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(pics) != 2 {
		t.Errorf("catalog holds %d records, want 2", len(pics))
	}
}

func TestImport_SameContentTwice(t *testing.T) {
	c := openTestCatalog(t)
	first := t.TempDir()
	second := t.TempDir()

	writeFile(t, first, "original.jpg", []byte("the very same bytes"))
	writeFile(t, second, "copy.jpg", []byte("the very same bytes"))

	im := New(c, WithWorkers(2))
	if _, err := im.Import([]string{first}); err != nil {
		t.Fatalf("first Import failed: %v", err)
	}
	report, err := im.Import([]string{second})
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}

	if report.Skipped != 1 || report.Imported != 0 {
		t.Errorf("report = %+v, want 1 skipped, 0 imported", report)
	}

	pics, _ := c.Query(catalog.Filter{}, catalog.SortFilenameAsc)
	if len(pics) != 1 {
		t.Errorf("catalog holds %d records, want 1", len(pics))
	}
}

func TestImport_PairsRawSiblings(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()

	writeFile(t, dir, "dsc0001.jpg", []byte("jpeg bytes"))
	writeFile(t, dir, "dsc0001.arw", []byte("raw bytes"))
	writeFile(t, dir, "dsc0002.arw", []byte("lone raw"))

	im := New(c, WithWorkers(1))
	report, err := im.Import([]string{dir})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	// The paired RAW travels with its JPEG; the lone RAW imports on its own.
	if report.Imported != 2 {
		t.Errorf("imported = %d, want 2", report.Imported)
	}

	pics, _ := c.Query(catalog.Filter{}, catalog.SortFilenameAsc)
	if len(pics) != 2 {
		t.Fatalf("catalog holds %d records, want 2", len(pics))
	}
	if pics[0].Filename != "dsc0001.jpg" || pics[0].RawFilename != "dsc0001.arw" {
		t.Errorf("pair = %s + %q, want dsc0001.jpg + dsc0001.arw", pics[0].Filename, pics[0].RawFilename)
	}
	if pics[1].Filename != "dsc0002.arw" || pics[1].RawFilename != "" {
		t.Errorf("lone raw = %s + %q, want dsc0002.arw with no sibling", pics[1].Filename, pics[1].RawFilename)
	}
}

func TestImport_IgnoresUnsupportedFiles(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()

	writeFile(t, dir, "photo.jpg", []byte("image"))
	writeFile(t, dir, "notes.txt", []byte("not an image"))
	writeFile(t, dir, "clip.mp4", []byte("not an image either"))

	im := New(c, WithWorkers(1))
	report, err := im.Import([]string{dir})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if report.Imported != 1 || report.Failed != 0 {
		t.Errorf("report = %+v, want exactly the jpg imported", report)
	}
}

func TestImport_Recursive(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()
	nested := filepath.Join(dir, "2024", "06")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatalf("failed to create nested dir: %v", err)
	}

	writeFile(t, dir, "top.jpg", []byte("top level"))
	writeFile(t, nested, "deep.jpg", []byte("nested"))

	im := New(c, WithWorkers(1))
	report, err := im.Import([]string{dir})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if report.Imported != 2 {
		t.Errorf("imported = %d, want 2", report.Imported)
	}
}

func TestImport_PartialFailureTolerant(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()

	writeFile(t, dir, "good.jpg", []byte("fine"))
	// A dangling symlink walks like a file but cannot be opened.
	if err := os.Symlink(filepath.Join(dir, "gone"), filepath.Join(dir, "broken.jpg")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	im := New(c, WithWorkers(2))
	report, err := im.Import([]string{dir})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if report.Imported != 1 {
		t.Errorf("imported = %d, want 1", report.Imported)
	}
	if report.Failed != 1 {
		t.Errorf("failed = %d, want 1", report.Failed)
	}
	if len(report.Failures) != 1 || filepath.Base(report.Failures[0].Path) != "broken.jpg" {
		t.Errorf("failures = %v, want broken.jpg recorded", report.Failures)
	}
}

func TestImport_MissingDirectory(t *testing.T) {
	c := openTestCatalog(t)
	im := New(c)

	if _, err := im.Import([]string{filepath.Join(t.TempDir(), "absent")}); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestImport_EmptyDirectory(t *testing.T) {
	c := openTestCatalog(t)
	im := New(c)

	report, err := im.Import([]string{t.TempDir()})
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if report.Imported != 0 || report.Skipped != 0 || report.Failed != 0 {
		t.Errorf("report = %+v, want all zero", report)
	}
}

func TestImport_ProgressReported(t *testing.T) {
	c := openTestCatalog(t)
	dir := t.TempDir()
	writeFile(t, dir, "a.jpg", []byte("one"))
	writeFile(t, dir, "b.jpg", []byte("two"))

	var calls int
	var lastTotal int
	im := New(c, WithWorkers(1), WithProgress(func(done, total int, current string) {
		calls++
		lastTotal = total
	}))

	if _, err := im.Import([]string{dir}); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if calls != 2 {
		t.Errorf("progress called %d times, want 2", calls)
	}
	if lastTotal != 2 {
		t.Errorf("total = %d, want 2", lastTotal)
	}
}

func TestIsJPEG(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPG", true},
		{"photo.jpeg", true},
		{"photo.arw", false},
		{"photo.png", false},
		{"noextension", false},
	}
	for _, tt := range tests {
		if got := IsJPEG(tt.path); got != tt.want {
			t.Errorf("IsJPEG(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsRaw(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.arw", true},
		{"photo.RAF", true},
		{"photo.nef", true},
		{"photo.cr2", true},
		{"photo.dng", true},
		{"photo.jpg", false},
		{"photo.txt", false},
	}
	for _, tt := range tests {
		if got := IsRaw(tt.path); got != tt.want {
			t.Errorf("IsRaw(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
