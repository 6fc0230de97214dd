package decode

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	defer f.Close()

	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return path
}

func TestFile_FullResolution(t *testing.T) {
	path := writePNG(t, 320, 200)

	img, err := File(path)
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if img.Bounds().Dx() != 320 || img.Bounds().Dy() != 200 {
		t.Errorf("bounds = %v, want 320x200", img.Bounds())
	}
}

func TestThumbnail_ScalesDown(t *testing.T) {
	path := writePNG(t, 4000, 2000)

	img, err := Thumbnail(path)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}
	if img.Bounds().Dx() != ThumbnailSize {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), ThumbnailSize)
	}
	if img.Bounds().Dy() != ThumbnailSize/2 {
		t.Errorf("height = %d, want %d", img.Bounds().Dy(), ThumbnailSize/2)
	}
}

func TestScaled_PortraitOrientation(t *testing.T) {
	path := writePNG(t, 100, 400)

	img, err := Scaled(path, 200)
	if err != nil {
		t.Fatalf("Scaled failed: %v", err)
	}
	if img.Bounds().Dy() != 200 {
		t.Errorf("height = %d, want 200", img.Bounds().Dy())
	}
	if img.Bounds().Dx() != 50 {
		t.Errorf("width = %d, want 50", img.Bounds().Dx())
	}
}

func TestScaled_SmallImageUntouched(t *testing.T) {
	path := writePNG(t, 60, 40)

	img, err := Scaled(path, ThumbnailSize)
	if err != nil {
		t.Fatalf("Scaled failed: %v", err)
	}
	if img.Bounds().Dx() != 60 || img.Bounds().Dy() != 40 {
		t.Errorf("bounds = %v, small images must not be upscaled", img.Bounds())
	}
}

func TestFile_CorruptImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.png")
	if err := os.WriteFile(path, []byte("definitely not a png"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	if _, err := File(path); err == nil {
		t.Error("expected error for corrupt image")
	}
}
